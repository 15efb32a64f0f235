package handler

import (
	"log/slog"
	"net/http"

	"github.com/webboss/bio/internal/service"
)

// AnalyticsHandler handles analytics API requests.
type AnalyticsHandler struct {
	svc    AnalyticsReporter
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc AnalyticsReporter, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:    svc,
		logger: logger.With("component", "handler.analytics"),
	}
}

// Report handles GET /api/v1/analytics?range=7d|30d|90d or ?from=&to=.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	report, err := h.svc.Report(r.Context(), userID, service.WindowRequest{
		Range: query.Get("range"),
		From:  query.Get("from"),
		To:    query.Get("to"),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "private, no-cache")
	writeJSON(w, http.StatusOK, report)
}
