package service

import (
	"context"
	"time"

	"portfolio-api/internal/domain"
)

// VisitorService is the visitor accounting business logic.
type VisitorService interface {
	// Track records a visit. It never fails the caller on persistence
	// errors: the returned error is reserved for rate limiting plumbing
	// and a nil RateLimitInfo means the request was a silent no-op.
	Track(ctx context.Context, req *domain.TrackRequest, isAdmin bool) (*domain.RateLimitInfo, error)

	// GetCount returns the current aggregate. It degrades to a zero
	// count on any failure
	GetCount(ctx context.Context) *domain.VisitorCount

	// ListSince returns non-synthetic records first seen at or after
	// cutoff, newest activity first. It degrades to an empty list
	ListSince(ctx context.Context, cutoff time.Time) []*domain.VisitorRecord

	// RecomputeAndPersistCount purges synthetic records (plus optionally
	// one explicit identifier) and rewrites the aggregate from a full
	// recount. Errors propagate: this is an operator-initiated action
	RecomputeAndPersistCount(ctx context.Context, purgeVisitorID string) (*domain.CleanupResult, error)
}
