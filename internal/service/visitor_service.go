package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/filter"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/logger"
	"portfolio-api/pkg/redis"
)

// Redis keys for visitor accounting
const (
	KeyVisitorCount     = "visitor:count"
	KeyVisitorRateLimit = "visitor:ratelimit:%s" // visitor:ratelimit:ip_hash
)

// TTL and rate limiting constants
const (
	TTLVisitorCount     = 30 * time.Second // Aggregate cache
	TTLVisitorRateLimit = 1 * time.Hour    // Rate limiting window
	RateLimitRequests   = 60               // Max track requests per window per IP
)

// visitorService implements the visitor accounting rules over whichever
// repository the container selected at startup. The redis client is
// optional; without it there is no count cache and no rate limiting.
type visitorService struct {
	repo        repository.VisitorRepository
	redisClient *redis.Client
	logger      *logger.Logger
	exemptID    string
}

// NewVisitorService creates a new visitor service. redisClient may be nil.
func NewVisitorService(repo repository.VisitorRepository, redisClient *redis.Client, logger *logger.Logger, exemptID string) VisitorService {
	return &visitorService{
		repo:        repo,
		redisClient: redisClient,
		logger:      logger,
		exemptID:    exemptID,
	}
}

// Track records one visit. Admin requests and synthetic identifiers are
// silent no-ops; persistence failures are logged and swallowed because
// analytics must never block the page.
func (s *visitorService) Track(ctx context.Context, req *domain.TrackRequest, isAdmin bool) (*domain.RateLimitInfo, error) {
	if isAdmin {
		s.logger.Debug("Skipping track for admin request")
		return nil, nil
	}

	if req.VisitorID == "" || filter.IsSynthetic(req.VisitorID, s.exemptID) {
		s.logger.WithField("visitor_id", req.VisitorID).Debug("Skipping track for synthetic identifier")
		return nil, nil
	}

	rateLimitInfo := s.checkRateLimit(ctx, req.IPAddress)
	if rateLimitInfo != nil && !rateLimitInfo.IsAllowed {
		s.logger.WithFields(map[string]interface{}{
			"visitor_id":    req.VisitorID,
			"request_count": rateLimitInfo.RequestCount,
		}).Warn("Track rate limit exceeded")
		return rateLimitInfo, nil
	}

	now := time.Now().UTC()

	existing, err := s.repo.GetByID(ctx, req.VisitorID)
	if err != nil {
		// Best effort: treat as unseen and let the storage-level merge
		// rules protect the stored record.
		s.logger.WithError(err).Warn("Visitor lookup failed, treating as first visit")
		existing = nil
	}

	record := s.mergeVisit(existing, req, now)

	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.WithError(err).WithField("visitor_id", req.VisitorID).Error("Failed to persist visit")
	}

	return rateLimitInfo, nil
}

// mergeVisit applies the accounting rules: visit_count is the max of the
// stored and client-reported counts, first_visit is immutable once set,
// and the remaining telemetry is taken from the client verbatim.
func (s *visitorService) mergeVisit(existing *domain.VisitorRecord, req *domain.TrackRequest, now time.Time) *domain.VisitorRecord {
	visitCount := int64(1)
	if req.VisitCount != nil && *req.VisitCount > 1 {
		visitCount = *req.VisitCount
	}
	if existing != nil && existing.VisitCount > visitCount {
		visitCount = existing.VisitCount
	}

	firstVisit := now
	if existing != nil && !existing.FirstVisit.IsZero() {
		firstVisit = existing.FirstVisit
	} else if req.FirstVisit != nil && !req.FirstVisit.IsZero() {
		firstVisit = *req.FirstVisit
	}

	lastVisit := now
	if req.LastVisit != nil && !req.LastVisit.IsZero() {
		lastVisit = *req.LastVisit
	}

	var totalDuration int64
	if req.TotalDuration != nil {
		totalDuration = *req.TotalDuration
	}

	return &domain.VisitorRecord{
		VisitorID:     req.VisitorID,
		Referrer:      req.Referrer,
		UserAgent:     req.UserAgent,
		VisitCount:    visitCount,
		FirstVisit:    firstVisit,
		LastVisit:     lastVisit,
		TotalDuration: totalDuration,
		DeviceType:    req.DeviceType,
		Browser:       req.Browser,
	}
}

// GetCount returns the aggregate, serving from the short-lived redis
// cache when one is configured. Every failure degrades to a zero count.
func (s *visitorService) GetCount(ctx context.Context) *domain.VisitorCount {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, KeyVisitorCount); err == nil {
			var aggregate domain.VisitorCount
			if err := json.Unmarshal([]byte(cached), &aggregate); err == nil {
				return &aggregate
			}
		}
	}

	aggregate, err := s.repo.GetAggregate(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read visitor count aggregate")
		return &domain.VisitorCount{ID: domain.AggregateID}
	}
	if aggregate == nil {
		return &domain.VisitorCount{ID: domain.AggregateID}
	}

	if s.redisClient != nil {
		if raw, err := json.Marshal(aggregate); err == nil {
			if err := s.redisClient.Set(ctx, KeyVisitorCount, raw, TTLVisitorCount); err != nil {
				s.logger.WithError(err).Debug("Failed to cache visitor count")
			}
		}
	}

	return aggregate
}

// ListSince returns the admin listing. Query failures degrade to an
// empty list: the listing is display-only.
func (s *visitorService) ListSince(ctx context.Context, cutoff time.Time) []*domain.VisitorRecord {
	records, err := s.repo.ListSince(ctx, cutoff, s.exemptID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list visitor records")
		return []*domain.VisitorRecord{}
	}
	if records == nil {
		records = []*domain.VisitorRecord{}
	}
	return records
}

// RecomputeAndPersistCount is the only writer of the aggregate. It is a
// full recount, not an increment, so it heals any drift between records
// and the cached count.
func (s *visitorService) RecomputeAndPersistCount(ctx context.Context, purgeVisitorID string) (*domain.CleanupResult, error) {
	var removed int64

	if purgeVisitorID != "" {
		if err := s.repo.Delete(ctx, purgeVisitorID); err != nil {
			return nil, fmt.Errorf("failed to purge visitor %q: %w", purgeVisitorID, err)
		}
		removed++
	}

	syntheticRemoved, err := s.repo.DeleteSynthetic(ctx, s.exemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to purge synthetic visitors: %w", err)
	}
	removed += syntheticRemoved

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to recount visitors: %w", err)
	}

	now := time.Now().UTC()
	startDate := now
	if existing, err := s.repo.GetAggregate(ctx); err == nil && existing != nil && !existing.CreatedAt.IsZero() {
		startDate = existing.CreatedAt
	}

	if err := s.repo.UpsertAggregate(ctx, &domain.VisitorCount{
		ID:        domain.AggregateID,
		Count:     count,
		CreatedAt: startDate,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist visitor count: %w", err)
	}

	if s.redisClient != nil {
		if err := s.redisClient.Del(ctx, KeyVisitorCount); err != nil {
			s.logger.WithError(err).Debug("Failed to invalidate visitor count cache")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"count":   count,
		"removed": removed,
	}).Info("Visitor count recomputed")

	return &domain.CleanupResult{
		Count:     count,
		Removed:   removed,
		StartDate: startDate,
	}, nil
}

// checkRateLimit increments the per-IP counter. Without redis, or when
// the request carries no address, tracking is not rate limited.
func (s *visitorService) checkRateLimit(ctx context.Context, ipAddress string) *domain.RateLimitInfo {
	if s.redisClient == nil || ipAddress == "" {
		return nil
	}

	key := fmt.Sprintf(KeyVisitorRateLimit, s.createIPHash(ipAddress))

	count, err := s.redisClient.Incr(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Rate limit check failed, allowing request")
		return nil
	}

	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, TTLVisitorRateLimit); err != nil {
			s.logger.WithError(err).Warn("Failed to set rate limit key expiry")
		}
	}

	return &domain.RateLimitInfo{
		RequestCount: count,
		WindowStart:  time.Now().Truncate(TTLVisitorRateLimit),
		TTL:          TTLVisitorRateLimit,
		IsAllowed:    count <= RateLimitRequests,
	}
}

// createIPHash hashes the IP for rate limiting privacy
func (s *visitorService) createIPHash(ipAddress string) string {
	hash := sha256.Sum256([]byte(ipAddress))
	return fmt.Sprintf("%x", hash)[:16]
}
