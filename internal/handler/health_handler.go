package handler

import (
	"net/http"
	"time"

	"portfolio-api/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	backend := "local"
	status := "healthy"

	if h.container.HasRemoteStore() {
		backend = "remote"
		if err := h.container.DB.Health(r.Context()); err != nil {
			h.container.Logger.WithError(err).Warn("Remote store health check failed")
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Backend:   backend,
		Timestamp: time.Now().UTC(),
		Service:   "portfolio-api",
	})
}
