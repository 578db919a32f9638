package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

const maxGuestbookMessageLen = 1000

// GuestbookHandler serves the public guestbook.
type GuestbookHandler struct {
	contentService *service.ContentService
	logger         *logger.Logger
}

// NewGuestbookHandler creates a new guestbook handler
func NewGuestbookHandler(contentService *service.ContentService, logger *logger.Logger) *GuestbookHandler {
	return &GuestbookHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// GuestbookResponse is the envelope for guestbook reads and writes
type GuestbookResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type guestbookRequest struct {
	Author  string `json:"author"`
	Message string `json:"message"`
}

// List handles GET /api/guestbook. Read failures degrade to an empty
// list.
func (h *GuestbookHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.contentService.ListGuestbook(r.Context())
	if err != nil {
		entries = []*domain.GuestbookEntry{}
	}

	writeJSON(w, http.StatusOK, GuestbookResponse{Success: true, Data: entries})
}

// Create handles POST /api/guestbook
func (h *GuestbookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req guestbookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("invalid request body", nil))
		return
	}

	req.Author = strings.TrimSpace(req.Author)
	req.Message = strings.TrimSpace(req.Message)

	if req.Message == "" || len(req.Message) > maxGuestbookMessageLen {
		writeError(w, errors.NewValidationError("message is required and must be under 1000 characters", nil))
		return
	}
	if req.Author == "" {
		req.Author = "anonymous"
	}

	entry, err := h.contentService.AddGuestbookEntry(r.Context(), req.Author, req.Message)
	if err != nil {
		writeError(w, errors.NewInternalError("failed to save entry", err))
		return
	}

	writeJSON(w, http.StatusCreated, GuestbookResponse{Success: true, Data: entry})
}

// RegisterRoutes registers guestbook routes with the router
func (h *GuestbookHandler) RegisterRoutes(r chi.Router) {
	r.Route("/guestbook", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}
