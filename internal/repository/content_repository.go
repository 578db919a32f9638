package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/pkg/database"
)

// contentRepository stores each editable content document as one JSONB
// row keyed by its content type, plus the guestbook table.
type contentRepository struct {
	db *database.PostgresDB
}

// NewContentRepository creates a new content repository over the remote store
func NewContentRepository(db *database.PostgresDB) ContentRepository {
	return &contentRepository{db: db}
}

// LoadDocument unmarshals the stored document into "into"
func (r *contentRepository) LoadDocument(ctx context.Context, contentType domain.ContentType, into interface{}) (bool, error) {
	var data []byte
	err := r.db.GetReadPool().QueryRow(ctx,
		`SELECT data FROM content_documents WHERE content_type = $1`,
		string(contentType),
	).Scan(&data)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s document: %w", contentType, err)
	}

	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("failed to decode %s document: %w", contentType, err)
	}

	return true, nil
}

// SaveDocument persists the document, replacing any previous version
func (r *contentRepository) SaveDocument(ctx context.Context, contentType domain.ContentType, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", contentType, err)
	}

	query := `
		INSERT INTO content_documents (content_type, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (content_type) DO UPDATE SET
			data       = EXCLUDED.data,
			updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, string(contentType), data); err != nil {
		return fmt.Errorf("failed to save %s document: %w", contentType, err)
	}

	return nil
}

// ListGuestbook returns guestbook entries, newest first
func (r *contentRepository) ListGuestbook(ctx context.Context) ([]*domain.GuestbookEntry, error) {
	rows, err := r.db.GetReadPool().Query(ctx, `
		SELECT id, author, message, created_at
		FROM guestbook_entries
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query guestbook entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.GuestbookEntry
	for rows.Next() {
		entry := &domain.GuestbookEntry{}
		if err := rows.Scan(&entry.ID, &entry.Author, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guestbook row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading guestbook rows: %w", err)
	}

	return entries, nil
}

// AddGuestbookEntry appends one guestbook entry
func (r *contentRepository) AddGuestbookEntry(ctx context.Context, entry *domain.GuestbookEntry) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO guestbook_entries (id, author, message, created_at)
		VALUES ($1, $2, $3, $4)
	`, entry.ID, entry.Author, entry.Message, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert guestbook entry: %w", err)
	}
	return nil
}
