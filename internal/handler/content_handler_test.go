package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/repository/localstore"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/localdb"
	"portfolio-api/pkg/logger"
)

func setupContentAPI(t *testing.T) *chi.Mux {
	t.Helper()

	store, err := localdb.Open(":memory:", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.NewContentService(nil, localstore.NewContentStore(store), logger.NewNop())
	h := NewContentHandler(svc, logger.NewNop())

	passthrough := func(next http.Handler) http.Handler { return next }

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r, passthrough)
	})

	return router
}

func TestContentGetUnknownType(t *testing.T) {
	router := setupContentAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/content/resume", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown content type", resp.Error)
}

func TestContentGetNeverSavedServesDefaults(t *testing.T) {
	router := setupContentAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/content/projects", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	// Collections default to [], not null.
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestContentPutThenGetRoundTrip(t *testing.T) {
	router := setupContentAPI(t)

	body := bytes.NewBufferString(`{"name":"Ada","headline":"engineer","bio":"","location":"","email":"ada@example.com"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/content/profile", body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/content/profile", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Ada", resp.Data.Name)
}

func TestContentPutBadBody(t *testing.T) {
	router := setupContentAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/content/settings", bytes.NewBufferString("{nope")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
