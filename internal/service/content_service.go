package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/logger"
)

// ContentService is the hybrid data manager: it routes every content
// read and write to either the remote repository or the local fallback.
// The routing decision is made once, at construction, and never
// revisited: if connectivity changes later, calls keep going to the
// backend chosen at startup. Restarting the process is the only way to
// rebind.
type ContentService struct {
	remote          repository.ContentRepository
	local           repository.ContentRepository
	remoteAvailable bool
	logger          *logger.Logger
}

// NewContentService creates the hybrid manager. remote may be nil, which
// is the expected state when no remote store is configured or reachable.
func NewContentService(remote, local repository.ContentRepository, logger *logger.Logger) *ContentService {
	s := &ContentService{
		remote:          remote,
		local:           local,
		remoteAvailable: remote != nil,
		logger:          logger,
	}

	if s.remoteAvailable {
		logger.Info("Content service using remote store")
	} else {
		logger.Info("Content service using local fallback store")
	}

	return s
}

// IsRemoteAvailable reports the backend decision cached at construction.
func (s *ContentService) IsRemoteAvailable() bool {
	return s.remoteAvailable
}

func (s *ContentService) backend() repository.ContentRepository {
	if s.remoteAvailable {
		return s.remote
	}
	return s.local
}

// Load reads the document for contentType into "into". A document that
// was never saved leaves "into" untouched and reports false.
func (s *ContentService) Load(ctx context.Context, contentType domain.ContentType, into interface{}) (bool, error) {
	found, err := s.backend().LoadDocument(ctx, contentType, into)
	if err != nil {
		s.logger.WithError(err).WithField("content_type", contentType).Error("Failed to load content document")
		return false, err
	}
	return found, nil
}

// Save persists the document for contentType.
func (s *ContentService) Save(ctx context.Context, contentType domain.ContentType, value interface{}) error {
	if err := s.backend().SaveDocument(ctx, contentType, value); err != nil {
		s.logger.WithError(err).WithField("content_type", contentType).Error("Failed to save content document")
		return err
	}
	return nil
}

// ListGuestbook returns guestbook entries, newest first.
func (s *ContentService) ListGuestbook(ctx context.Context) ([]*domain.GuestbookEntry, error) {
	entries, err := s.backend().ListGuestbook(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list guestbook entries")
		return nil, err
	}
	if entries == nil {
		entries = []*domain.GuestbookEntry{}
	}
	return entries, nil
}

// AddGuestbookEntry stores a new guestbook message and returns it.
func (s *ContentService) AddGuestbookEntry(ctx context.Context, author, message string) (*domain.GuestbookEntry, error) {
	entry := &domain.GuestbookEntry{
		ID:        uuid.NewString(),
		Author:    author,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.backend().AddGuestbookEntry(ctx, entry); err != nil {
		s.logger.WithError(err).Error("Failed to add guestbook entry")
		return nil, err
	}

	return entry, nil
}
