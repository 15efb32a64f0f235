package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/webboss/bio/internal/handler/dto"
	"github.com/webboss/bio/internal/service"
)

// ProfileHandler handles the owner's profile.
type ProfileHandler struct {
	svc    ProfileManager
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc ProfileManager, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc:    svc,
		logger: logger.With("component", "handler.profile"),
	}
}

// Get handles GET /api/v1/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	p, err := h.svc.GetMyProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToProfileResponse(p, h.svc.PublicURL(p.Username)))
}

// Create handles POST /api/v1/profile.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateProfileRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	p, err := h.svc.CreateProfile(r.Context(), userID, service.CreateProfileInput{
		Username:     req.Username,
		FullName:     req.FullName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
		Email:        req.Email,
		Phone:        req.Phone,
		WhatsApp:     req.WhatsApp,
		Location:     req.Location,
		ThemeID:      req.ThemeID,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("profile_created", "profile_id", p.ID, "username", p.Username)
	writeJSON(w, http.StatusCreated, dto.ToProfileResponse(p, h.svc.PublicURL(p.Username)))
}

// Update handles PATCH /api/v1/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Username:     req.Username,
		FullName:     req.FullName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
		Email:        req.Email,
		Phone:        req.Phone,
		WhatsApp:     req.WhatsApp,
		Location:     req.Location,
		ThemeID:      req.ThemeID,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("profile_updated", "profile_id", p.ID)
	writeJSON(w, http.StatusOK, dto.ToProfileResponse(p, h.svc.PublicURL(p.Username)))
}

// Delete handles DELETE /api/v1/profile.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteProfile(r.Context(), userID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("profile_deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// QRCode handles GET /api/v1/profile/qr?size=&fg=&bg=.
func (h *ProfileHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	opts := service.QROptions{
		FgColor: query.Get("fg"),
		BgColor: query.Get("bg"),
	}
	if s := query.Get("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SIZE", "size must be an integer")
			return
		}
		opts.Size = size
	}

	png, err := h.svc.QRCode(r.Context(), userID, opts)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
