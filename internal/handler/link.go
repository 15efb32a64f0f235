package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webboss/bio/internal/handler/dto"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/service"
)

// LinkHandler handles HTTP requests for link operations.
type LinkHandler struct {
	svc    LinkManager
	logger *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc LinkManager, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:    svc,
		logger: logger.With("component", "handler.link"),
	}
}

// List handles GET /api/v1/links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	links, err := h.svc.ListLinks(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToLinkListResponse(links))
}

// Create handles POST /api/v1/links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateLinkRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	link, err := h.svc.CreateLink(r.Context(), userID, service.CreateLinkInput{
		Title:    req.Title,
		URL:      req.URL,
		Icon:     model.LinkIcon(req.Icon),
		IsActive: req.IsActive,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("link_created", "link_id", link.ID, "icon", string(link.Icon))
	writeJSON(w, http.StatusCreated, dto.ToLinkResponse(link))
}

// Update handles PATCH /api/v1/links/{id}.
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateLinkRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	input := service.UpdateLinkInput{
		Title:    req.Title,
		URL:      req.URL,
		IsActive: req.IsActive,
	}
	if req.Icon != nil {
		icon := model.LinkIcon(*req.Icon)
		input.Icon = &icon
	}

	link, err := h.svc.UpdateLink(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("link_updated", "link_id", link.ID)
	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link))
}

// Delete handles DELETE /api/v1/links/{id}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteLink(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("link_deleted", "link_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles PUT /api/v1/links/order.
func (h *LinkHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := h.svc.ReorderLinks(r.Context(), userID, req.Items); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clicks handles GET /api/v1/links/{id}/clicks.
func (h *LinkHandler) Clicks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	counts, err := h.svc.LinkClicks(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
