// Package handler provides HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/webboss/bio/internal/analytics"
	"github.com/webboss/bio/internal/auth"
	"github.com/webboss/bio/internal/handler/dto"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/service"
)

// Services consumed by the handlers. The service package types satisfy them.
type (
	// PageLoader loads public pages.
	PageLoader interface {
		PublicPage(ctx context.Context, username string) (*model.PublicPage, bool, error)
	}

	// EventTracker records page views and clicks in the background.
	EventTracker interface {
		RecordViewAsync(profileID string, meta model.EventMetadata)
		RecordClickAsync(profileID string, target service.ClickTarget, meta model.EventMetadata) error
	}

	// ProfileManager manages the owner's profile.
	ProfileManager interface {
		CreateProfile(ctx context.Context, userID string, input service.CreateProfileInput) (*model.Profile, error)
		GetMyProfile(ctx context.Context, userID string) (*model.Profile, error)
		UpdateProfile(ctx context.Context, userID string, input service.UpdateProfileInput) (*model.Profile, error)
		DeleteProfile(ctx context.Context, userID string) error
		QRCode(ctx context.Context, userID string, opts service.QROptions) ([]byte, error)
		PublicURL(username string) string
	}

	// LinkManager manages the owner's links.
	LinkManager interface {
		CreateLink(ctx context.Context, userID string, input service.CreateLinkInput) (*model.Link, error)
		ListLinks(ctx context.Context, userID string) ([]model.Link, error)
		UpdateLink(ctx context.Context, userID, id string, input service.UpdateLinkInput) (*model.Link, error)
		DeleteLink(ctx context.Context, userID, id string) error
		ReorderLinks(ctx context.Context, userID string, updates []model.OrderUpdate) error
		LinkClicks(ctx context.Context, userID, id string) (*service.ClickCount, error)
	}

	// ProductManager manages the owner's products.
	ProductManager interface {
		CreateProduct(ctx context.Context, userID string, input service.CreateProductInput) (*model.Product, error)
		ListProducts(ctx context.Context, userID string) ([]model.Product, error)
		UpdateProduct(ctx context.Context, userID, id string, input service.UpdateProductInput) (*model.Product, error)
		DeleteProduct(ctx context.Context, userID, id string) error
		ReorderProducts(ctx context.Context, userID string, updates []model.OrderUpdate) error
	}

	// AnalyticsReporter builds analytics reports.
	AnalyticsReporter interface {
		Report(ctx context.Context, userID string, req service.WindowRequest) (*model.AnalyticsReport, error)
	}
)

// Handler serves the fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// decodeJSON decodes the request body into dst. An empty body is allowed
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
	return false
}

// requireUser returns the authenticated user id or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing session")
		return "", false
	}
	return userID, true
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: validation.Error(),
			Code:  "VALIDATION_ERROR",
			Field: validation.Field,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, service.ErrProfileExists):
		writeError(w, http.StatusConflict, "PROFILE_EXISTS", "profile already exists")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "USERNAME_TAKEN", "username is already taken")
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "link not found")
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
	case errors.Is(err, service.ErrClickTargetNotFound):
		writeError(w, http.StatusNotFound, "TARGET_NOT_FOUND", "click target not found")
	case errors.Is(err, service.ErrInvalidClickTarget):
		writeError(w, http.StatusBadRequest, "INVALID_CLICK_TARGET", "exactly one of link_id and product_id is required")
	case errors.Is(err, service.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, "INVALID_ORDER", "order must list unique ids with non-negative positions")
	case errors.Is(err, analytics.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
	case errors.Is(err, service.ErrSuperseded):
		writeError(w, http.StatusConflict, "SUPERSEDED", "a newer analytics request replaced this one")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}
