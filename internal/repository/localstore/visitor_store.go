// Package localstore implements the repository interfaces over the local
// fallback store. It is selected once at startup when no remote database
// is configured or reachable.
package localstore

import (
	"context"
	"sort"
	"time"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/filter"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/localdb"
)

const (
	keyVisitors     = "portfolio-visitors"
	keyVisitorCount = "portfolio-visitor-count"

	// maxVisitLogEntries caps the local visit log at the most recent
	// entries, newest first, mirroring the browser storage limit.
	maxVisitLogEntries = 100
)

type visitorStore struct {
	store *localdb.Store
}

// NewVisitorStore creates a visitor repository over the local store
func NewVisitorStore(store *localdb.Store) repository.VisitorRepository {
	return &visitorStore{store: store}
}

func (s *visitorStore) load(ctx context.Context) []*domain.VisitorRecord {
	var records []*domain.VisitorRecord
	s.store.Get(ctx, keyVisitors, &records)
	return records
}

func (s *visitorStore) save(ctx context.Context, records []*domain.VisitorRecord) {
	// Newest activity first, like the remote listing order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastVisit.After(records[j].LastVisit)
	})
	if len(records) > maxVisitLogEntries {
		records = records[:maxVisitLogEntries]
	}
	s.store.Set(ctx, keyVisitors, records)
}

// GetByID retrieves a visitor record, (nil, nil) when absent
func (s *visitorStore) GetByID(ctx context.Context, visitorID string) (*domain.VisitorRecord, error) {
	for _, record := range s.load(ctx) {
		if record.VisitorID == visitorID {
			return record, nil
		}
	}
	return nil, nil
}

// Upsert creates or updates a record in the local visit log
func (s *visitorStore) Upsert(ctx context.Context, record *domain.VisitorRecord) error {
	records := s.load(ctx)

	updated := *record
	kept := records[:0]
	for _, existing := range records {
		if existing.VisitorID == record.VisitorID {
			// Same guarantees as the remote upsert: the first visit is
			// immutable and the count never moves down.
			updated.FirstVisit = existing.FirstVisit
			if existing.VisitCount > updated.VisitCount {
				updated.VisitCount = existing.VisitCount
			}
			continue
		}
		kept = append(kept, existing)
	}

	s.save(ctx, append(kept, &updated))
	return nil
}

// ListSince returns non-synthetic records first seen at or after cutoff
func (s *visitorStore) ListSince(ctx context.Context, cutoff time.Time, exemptID string) ([]*domain.VisitorRecord, error) {
	matched := []*domain.VisitorRecord{}
	for _, record := range s.load(ctx) {
		if record.FirstVisit.Before(cutoff) {
			continue
		}
		if filter.IsSynthetic(record.VisitorID, exemptID) {
			continue
		}
		matched = append(matched, record)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastVisit.After(matched[j].LastVisit)
	})

	return matched, nil
}

// Delete removes one record. The log is backed up first.
func (s *visitorStore) Delete(ctx context.Context, visitorID string) error {
	s.store.Backup(ctx, keyVisitors)

	records := s.load(ctx)
	kept := records[:0]
	for _, record := range records {
		if record.VisitorID != visitorID {
			kept = append(kept, record)
		}
	}

	s.save(ctx, kept)
	return nil
}

// DeleteSynthetic removes every record matching the synthetic filter.
// The log is backed up first.
func (s *visitorStore) DeleteSynthetic(ctx context.Context, exemptID string) (int64, error) {
	s.store.Backup(ctx, keyVisitors)

	records := s.load(ctx)
	kept := records[:0]
	var removed int64
	for _, record := range records {
		if filter.IsSynthetic(record.VisitorID, exemptID) {
			removed++
			continue
		}
		kept = append(kept, record)
	}

	s.save(ctx, kept)
	return removed, nil
}

// Count returns the number of records in the local visit log
func (s *visitorStore) Count(ctx context.Context) (int64, error) {
	return int64(len(s.load(ctx))), nil
}

// GetAggregate retrieves the local count row, (nil, nil) when absent
func (s *visitorStore) GetAggregate(ctx context.Context) (*domain.VisitorCount, error) {
	var aggregate domain.VisitorCount
	if !s.store.Get(ctx, keyVisitorCount, &aggregate) {
		return nil, nil
	}
	return &aggregate, nil
}

// UpsertAggregate writes the local count row, preserving created_at
func (s *visitorStore) UpsertAggregate(ctx context.Context, aggregate *domain.VisitorCount) error {
	updated := *aggregate

	var existing domain.VisitorCount
	if s.store.Get(ctx, keyVisitorCount, &existing) && !existing.CreatedAt.IsZero() {
		updated.CreatedAt = existing.CreatedAt
	}

	s.store.Set(ctx, keyVisitorCount, &updated)
	return nil
}
