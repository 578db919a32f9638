package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// defaultListWindow bounds the admin listing when no cutoff is supplied.
const defaultListWindow = 30 * 24 * time.Hour

// VisitorHandler handles visitor accounting HTTP requests
type VisitorHandler struct {
	visitorService service.VisitorService
	logger         *logger.Logger
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(visitorService service.VisitorService, logger *logger.Logger) *VisitorHandler {
	return &VisitorHandler{
		visitorService: visitorService,
		logger:         logger,
	}
}

// TrackResponse is the envelope for POST /api/visitors/track
type TrackResponse struct {
	Success bool `json:"success"`
}

// CountResponse is the envelope for GET /api/visitors
type CountResponse struct {
	Success   bool   `json:"success"`
	Count     int64  `json:"count"`
	StartDate string `json:"startDate,omitempty"`
}

// ListResponse is the envelope for GET /api/visitors/list
type ListResponse struct {
	Success bool                    `json:"success"`
	Data    []*domain.VisitorRecord `json:"data"`
}

// CleanupRequest is the body for POST /api/visitors/cleanup
type CleanupRequest struct {
	VisitorID string `json:"visitorId,omitempty"`
}

// CleanupResponse is the envelope for POST /api/visitors/cleanup
type CleanupResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	NewCount  int64  `json:"newCount"`
	StartDate string `json:"startDate,omitempty"`
}

// Track handles POST /api/visitors/track. It answers success for every
// no-op case: a failed analytics write must never surface to the page.
func (h *VisitorHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req domain.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Debug("Unreadable track payload")
		writeError(w, errors.NewValidationError("invalid request body", nil))
		return
	}

	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}
	req.IPAddress = getRealIPAddress(r)

	rateLimitInfo, err := h.visitorService.Track(r.Context(), &req, middleware.IsAdminRequest(r))
	if err != nil {
		h.logger.WithError(err).Error("Track failed unexpectedly")
	}

	if rateLimitInfo != nil && !rateLimitInfo.IsAllowed {
		writeError(w, errors.NewRateLimitError("rate limit exceeded"))
		return
	}

	writeJSON(w, http.StatusOK, TrackResponse{Success: true})
}

// GetCount handles GET /api/visitors
func (h *VisitorHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	aggregate := h.visitorService.GetCount(r.Context())

	response := CountResponse{
		Success: true,
		Count:   aggregate.Count,
	}
	if !aggregate.CreatedAt.IsZero() {
		response.StartDate = aggregate.CreatedAt.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, response)
}

// List handles GET /api/visitors/list. Query failures still answer
// success with an empty list; the listing is display-only.
func (h *VisitorHandler) List(w http.ResponseWriter, r *http.Request) {
	cutoff := time.Now().UTC().Add(-defaultListWindow)
	if raw := r.URL.Query().Get("since"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			cutoff = parsed
		} else {
			h.logger.WithField("since", raw).Debug("Ignoring unparseable cutoff")
		}
	}

	records := h.visitorService.ListSince(r.Context(), cutoff)

	writeJSON(w, http.StatusOK, ListResponse{Success: true, Data: records})
}

// Cleanup handles POST /api/visitors/cleanup. Unlike the public paths
// this is operator-initiated, so failures are reported.
func (h *VisitorHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if r.Body != nil {
		// The body is optional; decode errors mean "no explicit purge".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.visitorService.RecomputeAndPersistCount(r.Context(), req.VisitorID)
	if err != nil {
		h.logger.WithError(err).Error("Visitor cleanup failed")
		writeError(w, errors.NewInternalError(err.Error(), err))
		return
	}

	writeJSON(w, http.StatusOK, CleanupResponse{
		Success:   true,
		Message:   "visitor records cleaned up and count recomputed",
		NewCount:  result.Count,
		StartDate: result.StartDate.UTC().Format(time.RFC3339),
	})
}

// RegisterRoutes registers visitor routes with the router
func (h *VisitorHandler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/visitors", func(r chi.Router) {
		// Public endpoints
		r.Post("/track", h.Track)
		r.Get("/", h.GetCount)

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/list", h.List)
			r.Post("/cleanup", h.Cleanup)
		})
	})
}

// getRealIPAddress extracts the real IP address from the request
func getRealIPAddress(r *http.Request) string {
	headers := []string{
		"CF-Connecting-IP", // Cloudflare
		"X-Forwarded-For",  // Standard proxy header
		"X-Real-IP",        // Nginx proxy
	}

	for _, header := range headers {
		if ip := r.Header.Get(header); ip != "" {
			if header == "X-Forwarded-For" {
				// Can contain multiple IPs, take the first one
				if firstIP := getFirstIP(ip); firstIP != "" {
					return firstIP
				}
				continue
			}
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// getFirstIP extracts the first IP from a comma-separated list
func getFirstIP(ips string) string {
	for i, char := range ips {
		if char == ',' || char == ' ' {
			return ips[:i]
		}
	}
	return ips
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorEnvelope is the shared failure shape of every endpoint.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError maps an application error onto the response envelope.
func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	writeJSON(w, appErr.StatusCode, errorEnvelope{Success: false, Error: appErr.Message})
}
