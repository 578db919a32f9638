package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/internal/repository/localstore"
	"portfolio-api/pkg/localdb"
	"portfolio-api/pkg/logger"
)

func localContentRepo(t *testing.T) repository.ContentRepository {
	t.Helper()

	store, err := localdb.Open(":memory:", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return localstore.NewContentStore(store)
}

func TestContentServiceFallsBackWhenRemoteMissing(t *testing.T) {
	svc := NewContentService(nil, localContentRepo(t), logger.NewNop())

	assert.False(t, svc.IsRemoteAvailable())
}

func TestContentServiceDecisionIsCached(t *testing.T) {
	// Both backends are local stores here; the point is that the flag
	// fixed at construction decides routing, nothing else.
	remote := localContentRepo(t)
	local := localContentRepo(t)
	svc := NewContentService(remote, local, logger.NewNop())
	ctx := context.Background()

	require.True(t, svc.IsRemoteAvailable())
	require.NoError(t, svc.Save(ctx, domain.ContentProfile, domain.Profile{Name: "Ada"}))

	// The write landed on the "remote" backend only.
	var fromRemote domain.Profile
	found, err := remote.LoadDocument(ctx, domain.ContentProfile, &fromRemote)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ada", fromRemote.Name)

	var fromLocal domain.Profile
	found, err = local.LoadDocument(ctx, domain.ContentProfile, &fromLocal)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestContentServiceRoundTrip(t *testing.T) {
	svc := NewContentService(nil, localContentRepo(t), logger.NewNop())
	ctx := context.Background()

	experiences := []domain.Experience{
		{Company: "Acme", Role: "Engineer", StartDate: "2021-01", Description: "built things"},
	}
	require.NoError(t, svc.Save(ctx, domain.ContentExperiences, experiences))

	var got []domain.Experience
	found, err := svc.Load(ctx, domain.ContentExperiences, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, experiences, got)
}

func TestContentServiceLoadMissingKeepsDefault(t *testing.T) {
	svc := NewContentService(nil, localContentRepo(t), logger.NewNop())

	settings := domain.SiteSettings{ShowGuestbook: true, Language: "en"}
	found, err := svc.Load(context.Background(), domain.ContentSettings, &settings)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, settings.ShowGuestbook)
}

func TestGuestbookEntriesGetIDs(t *testing.T) {
	svc := NewContentService(nil, localContentRepo(t), logger.NewNop())
	ctx := context.Background()

	entry, err := svc.AddGuestbookEntry(ctx, "visitor", "nice site")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.ListGuestbook(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "nice site", entries[0].Message)
}
