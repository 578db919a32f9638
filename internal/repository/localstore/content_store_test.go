package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/localdb"
	"portfolio-api/pkg/logger"
)

func nopLogger() *logger.Logger {
	return logger.NewNop()
}

func setupContentStore(t *testing.T) repository.ContentRepository {
	t.Helper()

	store, err := localdb.Open(":memory:", nopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewContentStore(store)
}

func TestContentStoreRoundTrip(t *testing.T) {
	repo := setupContentStore(t)
	ctx := context.Background()

	projects := []domain.Project{
		{Title: "portfolio-api", Description: "this site", Tags: []string{"go"}, Featured: true},
		{Title: "side project", Description: "weekend hack"},
	}
	require.NoError(t, repo.SaveDocument(ctx, domain.ContentProjects, projects))

	var got []domain.Project
	found, err := repo.LoadDocument(ctx, domain.ContentProjects, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, projects, got)
}

func TestContentStoreLoadMissing(t *testing.T) {
	repo := setupContentStore(t)

	var got domain.Profile
	found, err := repo.LoadDocument(context.Background(), domain.ContentProfile, &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, domain.Profile{}, got)
}

func TestContentStoreGuestbookNewestFirst(t *testing.T) {
	repo := setupContentStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, repo.AddGuestbookEntry(ctx, &domain.GuestbookEntry{
			ID:        uuid.NewString(),
			Author:    "visitor",
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.ListGuestbook(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "first", entries[2].Message)
}
