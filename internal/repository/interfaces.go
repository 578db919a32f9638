package repository

import (
	"context"
	"time"

	"portfolio-api/internal/domain"
)

// VisitorRepository defines visitor record and aggregate operations.
// Both the remote Postgres adapter and the local fallback store
// implement it; the container picks one at startup and the choice is
// never revisited for the process lifetime.
type VisitorRepository interface {
	// GetByID retrieves a visitor record, (nil, nil) when absent
	GetByID(ctx context.Context, visitorID string) (*domain.VisitorRecord, error)

	// Upsert creates or updates a record keyed by visitor_id.
	// first_visit is never overwritten and visit_count never decreases.
	Upsert(ctx context.Context, record *domain.VisitorRecord) error

	// ListSince returns non-synthetic records with first_visit >= cutoff,
	// ordered by last_visit descending
	ListSince(ctx context.Context, cutoff time.Time, exemptID string) ([]*domain.VisitorRecord, error)

	// Delete removes one record by identifier
	Delete(ctx context.Context, visitorID string) error

	// DeleteSynthetic removes every record matching the synthetic filter
	// and returns how many were removed
	DeleteSynthetic(ctx context.Context, exemptID string) (int64, error)

	// Count returns the number of remaining visitor records
	Count(ctx context.Context) (int64, error)

	// GetAggregate retrieves the singleton count row, (nil, nil) when absent
	GetAggregate(ctx context.Context) (*domain.VisitorCount, error)

	// UpsertAggregate writes the singleton count row, preserving
	// created_at if the row already exists
	UpsertAggregate(ctx context.Context, aggregate *domain.VisitorCount) error
}

// ContentRepository defines content document and guestbook operations.
type ContentRepository interface {
	// LoadDocument unmarshals the document for contentType into "into".
	// Returns false when no document has been saved yet.
	LoadDocument(ctx context.Context, contentType domain.ContentType, into interface{}) (bool, error)

	// SaveDocument persists the document for contentType
	SaveDocument(ctx context.Context, contentType domain.ContentType, value interface{}) error

	// ListGuestbook returns guestbook entries, newest first
	ListGuestbook(ctx context.Context) ([]*domain.GuestbookEntry, error)

	// AddGuestbookEntry appends one guestbook entry
	AddGuestbookEntry(ctx context.Context, entry *domain.GuestbookEntry) error
}
