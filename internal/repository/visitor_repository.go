package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/filter"
	"portfolio-api/pkg/database"
)

// visitorRepository is the remote store adapter for visitor accounting,
// backed by PostgreSQL
type visitorRepository struct {
	db *database.PostgresDB
}

// NewVisitorRepository creates a new visitor repository over the remote store
func NewVisitorRepository(db *database.PostgresDB) VisitorRepository {
	return &visitorRepository{db: db}
}

// syntheticPatterns returns the deny-list as ILIKE patterns so the
// exclusion runs inside the query instead of in application code.
func syntheticPatterns() []string {
	markers := filter.Markers()
	patterns := make([]string, len(markers))
	for i, marker := range markers {
		patterns[i] = "%" + marker + "%"
	}
	return patterns
}

// GetByID retrieves a visitor record by its unique identifier
func (r *visitorRepository) GetByID(ctx context.Context, visitorID string) (*domain.VisitorRecord, error) {
	query := `
		SELECT visitor_id, referrer, user_agent, visit_count, first_visit,
		       last_visit, total_duration, device_type, browser
		FROM visitors
		WHERE visitor_id = $1
	`

	record := &domain.VisitorRecord{}
	err := r.db.GetReadPool().QueryRow(ctx, query, visitorID).Scan(
		&record.VisitorID,
		&record.Referrer,
		&record.UserAgent,
		&record.VisitCount,
		&record.FirstVisit,
		&record.LastVisit,
		&record.TotalDuration,
		&record.DeviceType,
		&record.Browser,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get visitor record: %w", err)
	}

	return record, nil
}

// Upsert creates or updates a visitor record. first_visit is written only
// on insert, and visit_count is merged with GREATEST so a concurrent
// stale write can never lower a count the server already observed.
func (r *visitorRepository) Upsert(ctx context.Context, record *domain.VisitorRecord) error {
	query := `
		INSERT INTO visitors (visitor_id, referrer, user_agent, visit_count,
		                      first_visit, last_visit, total_duration, device_type, browser)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (visitor_id) DO UPDATE SET
			referrer       = EXCLUDED.referrer,
			user_agent     = EXCLUDED.user_agent,
			visit_count    = GREATEST(visitors.visit_count, EXCLUDED.visit_count),
			last_visit     = EXCLUDED.last_visit,
			total_duration = EXCLUDED.total_duration,
			device_type    = EXCLUDED.device_type,
			browser        = EXCLUDED.browser
	`

	_, err := r.db.Pool.Exec(ctx, query,
		record.VisitorID,
		record.Referrer,
		record.UserAgent,
		record.VisitCount,
		record.FirstVisit,
		record.LastVisit,
		record.TotalDuration,
		record.DeviceType,
		record.Browser,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert visitor record: %w", err)
	}

	return nil
}

// ListSince returns non-synthetic records first seen at or after cutoff,
// newest activity first
func (r *visitorRepository) ListSince(ctx context.Context, cutoff time.Time, exemptID string) ([]*domain.VisitorRecord, error) {
	query := `
		SELECT visitor_id, referrer, user_agent, visit_count, first_visit,
		       last_visit, total_duration, device_type, browser
		FROM visitors
		WHERE first_visit >= $1
		  AND NOT (visitor_id ILIKE ANY($2))
		  AND ($3 = '' OR visitor_id <> $3)
		ORDER BY last_visit DESC
	`

	rows, err := r.db.GetReadPool().Query(ctx, query, cutoff, syntheticPatterns(), exemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visitor records: %w", err)
	}
	defer rows.Close()

	var records []*domain.VisitorRecord
	for rows.Next() {
		record := &domain.VisitorRecord{}
		err := rows.Scan(
			&record.VisitorID,
			&record.Referrer,
			&record.UserAgent,
			&record.VisitCount,
			&record.FirstVisit,
			&record.LastVisit,
			&record.TotalDuration,
			&record.DeviceType,
			&record.Browser,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visitor record row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading visitor record rows: %w", err)
	}

	return records, nil
}

// Delete removes one visitor record
func (r *visitorRepository) Delete(ctx context.Context, visitorID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM visitors WHERE visitor_id = $1`, visitorID)
	if err != nil {
		return fmt.Errorf("failed to delete visitor record: %w", err)
	}
	return nil
}

// DeleteSynthetic removes every record matching the synthetic filter
func (r *visitorRepository) DeleteSynthetic(ctx context.Context, exemptID string) (int64, error) {
	query := `
		DELETE FROM visitors
		WHERE visitor_id ILIKE ANY($1)
		   OR ($2 <> '' AND visitor_id = $2)
	`

	result, err := r.db.Pool.Exec(ctx, query, syntheticPatterns(), exemptID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete synthetic visitor records: %w", err)
	}

	return result.RowsAffected(), nil
}

// Count returns the number of visitor records currently stored
func (r *visitorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetReadPool().QueryRow(ctx, `SELECT COUNT(*) FROM visitors`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visitor records: %w", err)
	}
	return count, nil
}

// GetAggregate retrieves the singleton visitor count row
func (r *visitorRepository) GetAggregate(ctx context.Context) (*domain.VisitorCount, error) {
	query := `
		SELECT id, count, created_at, updated_at
		FROM visitor_count
		WHERE id = $1
	`

	aggregate := &domain.VisitorCount{}
	err := r.db.GetReadPool().QueryRow(ctx, query, domain.AggregateID).Scan(
		&aggregate.ID,
		&aggregate.Count,
		&aggregate.CreatedAt,
		&aggregate.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get visitor count aggregate: %w", err)
	}

	return aggregate, nil
}

// UpsertAggregate writes the singleton count row. created_at is written
// only on insert so the accounting epoch survives every recompute.
func (r *visitorRepository) UpsertAggregate(ctx context.Context, aggregate *domain.VisitorCount) error {
	query := `
		INSERT INTO visitor_count (id, count, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			count      = EXCLUDED.count,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Pool.Exec(ctx, query,
		aggregate.ID,
		aggregate.Count,
		aggregate.CreatedAt,
		aggregate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert visitor count aggregate: %w", err)
	}

	return nil
}
