package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// ContentHandler serves the editable site content through the hybrid
// data manager.
type ContentHandler struct {
	contentService *service.ContentService
	logger         *logger.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *service.ContentService, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// ContentResponse is the envelope for content reads and writes
type ContentResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// newDocument returns the zero value to decode each document into.
// Collections default to empty slices so a never-saved document renders
// as [] rather than null. Callers reject invalid types before asking.
func newDocument(contentType domain.ContentType) interface{} {
	switch contentType {
	case domain.ContentProfile:
		return &domain.Profile{}
	case domain.ContentCompetencies:
		return &[]domain.Competency{}
	case domain.ContentProjects:
		return &[]domain.Project{}
	case domain.ContentExperiences:
		return &[]domain.Experience{}
	case domain.ContentSettings:
		return &domain.SiteSettings{}
	default:
		return nil
	}
}

// Get handles GET /api/content/{type}. Backend failures degrade to the
// zero document: the public site renders with defaults rather than a
// broken page.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	contentType := domain.ContentType(chi.URLParam(r, "type"))
	if !contentType.IsValid() {
		writeError(w, errors.NewNotFoundError("unknown content type"))
		return
	}

	document := newDocument(contentType)
	if _, err := h.contentService.Load(r.Context(), contentType, document); err != nil {
		h.logger.WithError(err).WithField("content_type", contentType).Warn("Serving default content after load failure")
	}

	writeJSON(w, http.StatusOK, ContentResponse{Success: true, Data: document})
}

// Put handles PUT /api/content/{type} (admin). Writes are validated just
// enough to guarantee the document decodes as its expected shape.
func (h *ContentHandler) Put(w http.ResponseWriter, r *http.Request) {
	contentType := domain.ContentType(chi.URLParam(r, "type"))
	if !contentType.IsValid() {
		writeError(w, errors.NewNotFoundError("unknown content type"))
		return
	}

	document := newDocument(contentType)
	if err := json.NewDecoder(r.Body).Decode(document); err != nil {
		writeError(w, errors.NewValidationError("invalid request body", nil))
		return
	}

	if err := h.contentService.Save(r.Context(), contentType, document); err != nil {
		writeError(w, errors.NewInternalError(err.Error(), err))
		return
	}

	writeJSON(w, http.StatusOK, ContentResponse{Success: true, Data: document})
}

// RegisterRoutes registers content routes with the router
func (h *ContentHandler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/content", func(r chi.Router) {
		r.Get("/{type}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Put("/{type}", h.Put)
		})
	})
}
