// Package localdb is the local fallback store: a sqlite-backed key-value
// table holding JSON documents. It mirrors the durability contract of
// browser local storage: reads never fail the caller (a missing or
// corrupt value yields the caller's default) and writes are
// fire-and-forget (failures are logged, never propagated).
package localdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"portfolio-api/pkg/logger"
)

// Store is a key-value store over a local sqlite file.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (and if needed creates) the store at path. Use ":memory:"
// in tests.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}

	// Single writer; the browser storage this replaces is single-threaded.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, log: log}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to migrate local store: %w", err)
	}
	return nil
}

// Get unmarshals the value stored under key into "into" and returns true.
// It returns false when the key is absent or the stored value is not
// valid JSON; in both cases the caller keeps whatever default "into"
// already holds. Failures are logged, never returned.
func (s *Store) Get(ctx context.Context, key string, into interface{}) bool {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Local store read failed, using default")
		return false
	}

	if err := json.Unmarshal([]byte(raw), into); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Local store value is corrupt, using default")
		return false
	}

	return true
}

// Set serializes value and persists it under key. Write failures are
// logged and swallowed: the caller proceeds as if the write succeeded.
func (s *Store) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("Local store value not serializable, dropping write")
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("Local store write failed, dropping write")
	}
}

// Backup copies the current value of key to a timestamped backup key.
// Called before destructive operations so an admin cleanup can be undone
// by hand. A missing source key is a no-op.
func (s *Store) Backup(ctx context.Context, key string) {
	backupKey := fmt.Sprintf("backup-%s-%d", key, time.Now().Unix())

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv_entries (key, value, updated_at)
		SELECT ?, value, CURRENT_TIMESTAMP FROM kv_entries WHERE key = ?
	`, backupKey, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Local store backup failed")
	}
}

// Delete removes a key. Missing keys are a no-op.
func (s *Store) Delete(ctx context.Context, key string) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Local store delete failed")
	}
}

// Health checks the underlying sqlite handle.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
