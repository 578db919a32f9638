package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/internal/repository/localstore"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/localdb"
	"portfolio-api/pkg/logger"
)

func setupVisitorAPI(t *testing.T) (*chi.Mux, repository.VisitorRepository) {
	t.Helper()

	store, err := localdb.Open(":memory:", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	repo := localstore.NewVisitorStore(store)
	svc := service.NewVisitorService(repo, nil, logger.NewNop(), "")
	h := NewVisitorHandler(svc, logger.NewNop())

	// Admin gating is covered by the middleware tests; here it is a
	// pass-through so the handler behavior is what gets exercised.
	passthrough := func(next http.Handler) http.Handler { return next }

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r, passthrough)
	})

	return router, repo
}

func trackBody(t *testing.T, visitorID string, visitCount int64) *bytes.Buffer {
	t.Helper()

	payload, err := json.Marshal(map[string]interface{}{
		"visitor_id":  visitorID,
		"visit_count": visitCount,
		"user_agent":  "Mozilla/5.0",
		"browser":     "firefox",
		"device_type": "desktop",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(payload)
}

func TestTrackEndpointCreatesRecord(t *testing.T) {
	router, repo := setupVisitorAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/visitors/track", trackBody(t, "user-abc123", 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp TrackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	got, err := repo.GetByID(req.Context(), "user-abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.VisitCount)
}

func TestTrackEndpointSyntheticIsSilentNoop(t *testing.T) {
	router, repo := setupVisitorAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/visitors/track", trackBody(t, "test-device-99", 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Still HTTP 200 with success, but nothing stored.
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp TrackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	got, err := repo.GetByID(req.Context(), "test-device-99")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTrackEndpointAuthHeaderIsNoop(t *testing.T) {
	router, repo := setupVisitorAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/visitors/track", trackBody(t, "user-abc123", 1))
	req.Header.Set("Authorization", "Bearer some-admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := repo.GetByID(req.Context(), "user-abc123")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTrackEndpointBadBody(t *testing.T) {
	router, _ := setupVisitorAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/visitors/track", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCountEndpoint(t *testing.T) {
	router, repo := setupVisitorAPI(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	epoch := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertAggregate(ctx, &domain.VisitorCount{
		ID:        domain.AggregateID,
		Count:     42,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/visitors/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(42), resp.Count)
	assert.Equal(t, epoch.Format(time.RFC3339), resp.StartDate)
}

func TestGetCountEndpointEmpty(t *testing.T) {
	router, _ := setupVisitorAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/visitors/", nil))

	var resp CountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(0), resp.Count)
	assert.Empty(t, resp.StartDate)
}

func TestListEndpoint(t *testing.T) {
	router, repo := setupVisitorAPI(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	base := time.Now().UTC()

	for i, id := range []string{"user-a", "user-b", "test-device-99"} {
		require.NoError(t, repo.Upsert(ctx, &domain.VisitorRecord{
			VisitorID:  id,
			VisitCount: 1,
			FirstVisit: base.Add(time.Duration(i) * time.Minute),
			LastVisit:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/visitors/list", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "user-b", resp.Data[0].VisitorID)
}

func TestListEndpointSinceCutoff(t *testing.T) {
	router, repo := setupVisitorAPI(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &domain.VisitorRecord{
		VisitorID: "user-old", VisitCount: 1, FirstVisit: base.AddDate(0, -2, 0), LastVisit: base.AddDate(0, -2, 0),
	}))
	require.NoError(t, repo.Upsert(ctx, &domain.VisitorRecord{
		VisitorID: "user-new", VisitCount: 1, FirstVisit: base, LastVisit: base,
	}))

	url := "/api/visitors/list?since=" + base.Add(-time.Hour).Format(time.RFC3339)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "user-new", resp.Data[0].VisitorID)
}

func TestCleanupEndpoint(t *testing.T) {
	router, repo := setupVisitorAPI(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	now := time.Now().UTC()

	for _, id := range []string{"user-a", "test-device-99", "developer-123"} {
		require.NoError(t, repo.Upsert(ctx, &domain.VisitorRecord{
			VisitorID: id, VisitCount: 1, FirstVisit: now, LastVisit: now,
		}))
	}

	payload := bytes.NewBufferString(`{}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/visitors/cleanup", payload))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CleanupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.NewCount)
	assert.NotEmpty(t, resp.StartDate)
}
