package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/localdb"
)

const keyGuestbook = "portfolio-guestbook"

type contentStore struct {
	store *localdb.Store
}

// NewContentStore creates a content repository over the local store
func NewContentStore(store *localdb.Store) repository.ContentRepository {
	return &contentStore{store: store}
}

func contentKey(contentType domain.ContentType) string {
	return "portfolio-" + string(contentType)
}

// LoadDocument reads a content document from the local store. A missing
// or corrupt value reports not-found; the caller keeps its default.
func (s *contentStore) LoadDocument(ctx context.Context, contentType domain.ContentType, into interface{}) (bool, error) {
	// The local store already swallows read failures, so this path can
	// only report found / not found.
	var raw json.RawMessage
	if !s.store.Get(ctx, contentKey(contentType), &raw) {
		return false, nil
	}

	if err := json.Unmarshal(raw, into); err != nil {
		return false, fmt.Errorf("failed to decode %s document: %w", contentType, err)
	}

	return true, nil
}

// SaveDocument persists a content document to the local store
func (s *contentStore) SaveDocument(ctx context.Context, contentType domain.ContentType, value interface{}) error {
	s.store.Set(ctx, contentKey(contentType), value)
	return nil
}

// ListGuestbook returns guestbook entries, newest first
func (s *contentStore) ListGuestbook(ctx context.Context) ([]*domain.GuestbookEntry, error) {
	entries := []*domain.GuestbookEntry{}
	s.store.Get(ctx, keyGuestbook, &entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}

// AddGuestbookEntry prepends one guestbook entry
func (s *contentStore) AddGuestbookEntry(ctx context.Context, entry *domain.GuestbookEntry) error {
	var entries []*domain.GuestbookEntry
	s.store.Get(ctx, keyGuestbook, &entries)

	s.store.Set(ctx, keyGuestbook, append([]*domain.GuestbookEntry{entry}, entries...))
	return nil
}
