package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/webboss/bio/internal/analytics"
	"github.com/webboss/bio/internal/handler/dto"
	"github.com/webboss/bio/internal/middleware"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/service"
)

// PublicHandler serves public profile pages and their tracking endpoints.
type PublicHandler struct {
	pages    PageLoader
	events   EventTracker
	enricher *analytics.Enricher
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewPublicHandler creates a new PublicHandler. maxAge sets the browser
// cache lifetime of public pages.
func NewPublicHandler(pages PageLoader, events EventTracker, enricher *analytics.Enricher, maxAge time.Duration, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		pages:    pages,
		events:   events,
		enricher: enricher,
		maxAge:   maxAge,
		logger:   logger.With("component", "handler.public"),
	}
}

// Page handles GET /p/{username}.
func (h *PublicHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, hit, err := h.pages.PublicPage(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.maxAge.Seconds())))
	writeJSON(w, http.StatusOK, dto.ToPublicPageResponse(page))
}

// TrackView handles POST /p/{username}/views. The body is optional.
func (h *PublicHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackViewRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	profileID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	h.events.RecordViewAsync(profileID, h.metadata(r, req))
	writeJSON(w, http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
}

// TrackClick handles POST /p/{username}/clicks.
func (h *PublicHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackClickRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	profileID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	target := service.ClickTarget{LinkID: req.LinkID, ProductID: req.ProductID}
	if err := h.events.RecordClickAsync(profileID, target, h.metadata(r, req.TrackViewRequest)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, dto.AcceptedResponse{Status: "accepted"})
}

// resolve maps the username to a profile id through the page cache.
func (h *PublicHandler) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	page, _, err := h.pages.PublicPage(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return "", false
	}
	return page.Profile.ID, true
}

func (h *PublicHandler) metadata(r *http.Request, req dto.TrackViewRequest) model.EventMetadata {
	return h.enricher.Metadata(analytics.ClientInfo{
		IP:         middleware.ClientIP(r),
		UserAgent:  r.UserAgent(),
		Referer:    r.Referer(),
		CFCountry:  r.Header.Get("CF-IPCountry"),
		Referrer:   req.Referrer,
		DeviceType: req.DeviceType,
		Country:    req.Country,
		City:       req.City,
	})
}
