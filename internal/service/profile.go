package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/webboss/bio/internal/cache"
	"github.com/webboss/bio/internal/metrics"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/repository"
)

// ProfileService handles profiles and the public page.
type ProfileService struct {
	owners   *Owners
	profiles ProfileStore
	links    LinkStore
	products ProductStore
	cache    PageCache
	pageTTL  time.Duration
	baseURL  string
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// ProfileServiceConfig wires a ProfileService.
type ProfileServiceConfig struct {
	Owners   *Owners
	Profiles ProfileStore
	Links    LinkStore
	Products ProductStore
	Cache    PageCache
	PageTTL  time.Duration
	BaseURL  string // Public site origin, e.g. https://webboss.link
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(cfg ProfileServiceConfig) *ProfileService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return &ProfileService{
		owners:   cfg.Owners,
		profiles: cfg.Profiles,
		links:    cfg.Links,
		products: cfg.Products,
		cache:    cfg.Cache,
		pageTTL:  cfg.PageTTL,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With("component", "profile_service"),
	}
}

// CreateProfileInput defines input for creating a profile.
type CreateProfileInput struct {
	Username     string
	FullName     string
	Bio          string
	ProfileImage string
	Email        string
	Phone        string
	WhatsApp     string
	Location     string
	ThemeID      string
}

// CreateProfile creates the profile of userID. A user owns at most one.
func (s *ProfileService) CreateProfile(ctx context.Context, userID string, input CreateProfileInput) (*model.Profile, error) {
	p := &model.Profile{
		UserID:       userID,
		Username:     NormalizeUsername(input.Username),
		FullName:     strings.TrimSpace(input.FullName),
		Bio:          input.Bio,
		ProfileImage: input.ProfileImage,
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		WhatsApp:     strings.TrimSpace(input.WhatsApp),
		Location:     input.Location,
		ThemeID:      input.ThemeID,
		Plan:         model.PlanFree,
	}
	if p.ThemeID == "" {
		p.ThemeID = model.DefaultThemeID
	}
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		return nil, mapProfileError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityProfile, metrics.ActionCreated)
	s.owners.remember(ctx, userID, cache.Owner{ProfileID: p.ID, Username: p.Username})
	// Clears a negative entry left by visitors of the username before it existed.
	s.owners.InvalidatePage(ctx, p.Username)

	s.logger.Info("profile created",
		slog.String("profile_id", p.ID),
		slog.String("username", p.Username),
	)
	return p, nil
}

// GetMyProfile returns the profile of userID.
func (s *ProfileService) GetMyProfile(ctx context.Context, userID string) (*model.Profile, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetProfileByID(ctx, owner.ProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			// Stale owner cache entry.
			s.owners.forget(ctx, userID)
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpdateProfileInput holds optional profile changes. Nil fields are left as is.
type UpdateProfileInput struct {
	Username     *string
	FullName     *string
	Bio          *string
	ProfileImage *string
	Email        *string
	Phone        *string
	WhatsApp     *string
	Location     *string
	ThemeID      *string
}

// UpdateProfile applies input to the profile of userID.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.Profile, error) {
	p, err := s.GetMyProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldUsername := p.Username

	if input.Username != nil {
		p.Username = NormalizeUsername(*input.Username)
	}
	setString(&p.FullName, input.FullName, true)
	setString(&p.Bio, input.Bio, false)
	setString(&p.ProfileImage, input.ProfileImage, false)
	setString(&p.Email, input.Email, true)
	setString(&p.Phone, input.Phone, true)
	setString(&p.WhatsApp, input.WhatsApp, true)
	setString(&p.Location, input.Location, false)
	setString(&p.ThemeID, input.ThemeID, true)
	if p.ThemeID == "" {
		p.ThemeID = model.DefaultThemeID
	}

	if err := validateProfile(p); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateProfile(ctx, p); err != nil {
		return nil, mapProfileError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityProfile, metrics.ActionUpdated)
	s.owners.InvalidatePage(ctx, oldUsername)
	if p.Username != oldUsername {
		s.owners.InvalidatePage(ctx, p.Username)
		s.owners.remember(ctx, userID, cache.Owner{ProfileID: p.ID, Username: p.Username})
	}
	return p, nil
}

// DeleteProfile removes the profile of userID with everything it owns.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID string) error {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.profiles.DeleteProfile(ctx, owner.ProfileID); err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			return fmt.Errorf("delete profile: %w", err)
		}
	}

	s.metrics.IncEntityChanged(metrics.EntityProfile, metrics.ActionDeleted)
	s.owners.forget(ctx, userID)
	s.owners.InvalidatePage(ctx, owner.Username)

	s.logger.Info("profile deleted", slog.String("profile_id", owner.ProfileID))
	return nil
}

// PublicPage returns what visitors see for username: the profile, its
// active links and its publicly available products. The boolean reports
// a cache hit.
func (s *ProfileService) PublicPage(ctx context.Context, username string) (*model.PublicPage, bool, error) {
	username = NormalizeUsername(username)
	if ValidateUsername(username) != nil {
		return nil, false, ErrProfileNotFound
	}

	page, err := s.cache.GetPage(ctx, username)
	if err == nil {
		s.metrics.IncPageCacheHit()
		return page, true, nil
	}
	s.metrics.IncPageCacheMiss()

	if errors.Is(err, cache.ErrCacheMiss) {
		if negative, _ := s.cache.IsNegativelyCached(ctx, username); negative {
			return nil, false, ErrProfileNotFound
		}
	} else {
		s.logger.Warn("page cache read failed", slog.String("error", err.Error()))
	}

	p, err := s.profiles.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			if err := s.cache.SetNegativeCache(ctx, username); err != nil {
				s.logger.Warn("negative cache write failed", slog.String("error", err.Error()))
			}
			return nil, false, ErrProfileNotFound
		}
		return nil, false, fmt.Errorf("load profile: %w", err)
	}

	page, err = s.loadPage(ctx, p)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.SetPage(ctx, page, s.pageTTL); err != nil {
		s.logger.Warn("page cache write failed", slog.String("error", err.Error()))
	}
	return page, false, nil
}

func (s *ProfileService) loadPage(ctx context.Context, p *model.Profile) (*model.PublicPage, error) {
	links, err := s.links.ListLinks(ctx, p.ID, true)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	products, err := s.products.ListProducts(ctx, p.ID, true)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	// Owner identity stays off the public page.
	p.UserID = ""
	return &model.PublicPage{Profile: *p, Links: links, Products: products}, nil
}

// PublicURL is the visitor-facing address of a profile.
func (s *ProfileService) PublicURL(username string) string {
	return s.baseURL + "/" + username
}

func validateProfile(p *model.Profile) error {
	if err := ValidateUsername(p.Username); err != nil {
		return err
	}
	if err := validateText("full_name", p.FullName, maxNameLength, true); err != nil {
		return err
	}
	if err := validateText("bio", p.Bio, maxBioLength, false); err != nil {
		return err
	}
	if err := validateURL("profile_image", p.ProfileImage, true); err != nil {
		return err
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return invalid("email", "is not a valid address")
		}
	}
	if err := validateText("location", p.Location, maxNameLength, false); err != nil {
		return err
	}
	return validateText("theme_id", p.ThemeID, 50, false)
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrProfileExists):
		return ErrProfileExists
	case errors.Is(err, repository.ErrProfileNotFound):
		return ErrProfileNotFound
	}
	return fmt.Errorf("save profile: %w", err)
}

func setString(dst *string, v *string, trim bool) {
	if v == nil {
		return
	}
	if trim {
		*dst = strings.TrimSpace(*v)
		return
	}
	*dst = *v
}
