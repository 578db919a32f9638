package localstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/localdb"
)

func setupVisitorStore(t *testing.T) repository.VisitorRepository {
	t.Helper()

	store, err := localdb.Open(":memory:", nopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewVisitorStore(store)
}

func record(id string, visitCount int64, first, last time.Time) *domain.VisitorRecord {
	return &domain.VisitorRecord{
		VisitorID:  id,
		UserAgent:  "test-agent",
		VisitCount: visitCount,
		FirstVisit: first,
		LastVisit:  last,
	}
}

func TestVisitorStoreUpsertCreates(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, record("user-abc123", 1, now, now)))

	got, err := repo.GetByID(ctx, "user-abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.VisitCount)
	assert.True(t, got.FirstVisit.Equal(got.LastVisit))
}

func TestVisitorStoreUpsertNeverDecreasesCount(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, record("user-abc123", 5, now, now)))
	// Stale client reports 2 visits; the stored 5 must win.
	require.NoError(t, repo.Upsert(ctx, record("user-abc123", 2, now, now.Add(time.Hour))))

	got, err := repo.GetByID(ctx, "user-abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.VisitCount)
	assert.True(t, got.LastVisit.After(got.FirstVisit))
}

func TestVisitorStoreFirstVisitImmutable(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, record("user-abc123", 1, first, first)))
	require.NoError(t, repo.Upsert(ctx, record("user-abc123", 2, first.Add(48*time.Hour), first.Add(48*time.Hour))))

	got, err := repo.GetByID(ctx, "user-abc123")
	require.NoError(t, err)
	assert.True(t, got.FirstVisit.Equal(first))
}

func TestVisitorStoreListSince(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, record("user-old", 1, base.Add(-72*time.Hour), base.Add(-72*time.Hour))))
	require.NoError(t, repo.Upsert(ctx, record("user-a", 1, base, base.Add(time.Hour))))
	require.NoError(t, repo.Upsert(ctx, record("user-b", 1, base, base.Add(2*time.Hour))))
	require.NoError(t, repo.Upsert(ctx, record("test-device-99", 1, base, base.Add(3*time.Hour))))

	got, err := repo.ListSince(ctx, base, "")
	require.NoError(t, err)

	require.Len(t, got, 2)
	// Ordered by last_visit descending, synthetic and pre-cutoff excluded.
	assert.Equal(t, "user-b", got[0].VisitorID)
	assert.Equal(t, "user-a", got[1].VisitorID)
}

func TestVisitorStoreListSinceExcludesExempt(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, record("owner-machine-1", 1, now, now)))
	require.NoError(t, repo.Upsert(ctx, record("user-a", 1, now, now)))

	got, err := repo.ListSince(ctx, now.Add(-time.Hour), "owner-machine-1")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "user-a", got[0].VisitorID)
}

func TestVisitorStoreDeleteSynthetic(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, record("user-a", 1, now, now)))
	require.NoError(t, repo.Upsert(ctx, record("test-device-99", 1, now, now)))
	require.NoError(t, repo.Upsert(ctx, record("developer-123", 1, now, now)))
	require.NoError(t, repo.Upsert(ctx, record("owner-machine-1", 1, now, now)))

	removed, err := repo.DeleteSynthetic(ctx, "owner-machine-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestVisitorStoreVisitLogCap(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < maxVisitLogEntries+20; i++ {
		visited := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Upsert(ctx, record(visitorID(i), 1, visited, visited)))
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(maxVisitLogEntries), count)

	// The newest entry survives the cap, the oldest does not.
	newest, err := repo.GetByID(ctx, visitorID(maxVisitLogEntries+19))
	require.NoError(t, err)
	assert.NotNil(t, newest)

	oldest, err := repo.GetByID(ctx, visitorID(0))
	require.NoError(t, err)
	assert.Nil(t, oldest)
}

func TestVisitorStoreAggregatePreservesCreatedAt(t *testing.T) {
	repo := setupVisitorStore(t)
	ctx := context.Background()
	epoch := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertAggregate(ctx, &domain.VisitorCount{
		ID:        domain.AggregateID,
		Count:     10,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}))

	later := epoch.AddDate(1, 0, 0)
	require.NoError(t, repo.UpsertAggregate(ctx, &domain.VisitorCount{
		ID:        domain.AggregateID,
		Count:     25,
		CreatedAt: later,
		UpdatedAt: later,
	}))

	got, err := repo.GetAggregate(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(25), got.Count)
	assert.True(t, got.CreatedAt.Equal(epoch))
	assert.True(t, got.UpdatedAt.Equal(later))
}

func TestVisitorStoreAggregateAbsent(t *testing.T) {
	repo := setupVisitorStore(t)

	got, err := repo.GetAggregate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func visitorID(i int) string {
	return fmt.Sprintf("user-%03d", i)
}
