package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/webboss/bio/internal/metrics"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/repository"
)

// LinkService handles link business logic for a profile owner.
type LinkService struct {
	owners  *Owners
	links   LinkStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewLinkService creates a new LinkService.
func NewLinkService(owners *Owners, links LinkStore, recorder metrics.Recorder, logger *slog.Logger) *LinkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LinkService{
		owners:  owners,
		links:   links,
		metrics: recorder,
		logger:  logger.With("component", "link_service"),
	}
}

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	Title    string
	URL      string
	Icon     model.LinkIcon
	IsActive *bool // Defaults to true
}

// CreateLink appends a link to the owner's page.
func (s *LinkService) CreateLink(ctx context.Context, userID string, input CreateLinkInput) (*model.Link, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		ProfileID: owner.ProfileID,
		Title:     strings.TrimSpace(input.Title),
		URL:       strings.TrimSpace(input.URL),
		Icon:      input.Icon,
		IsActive:  true,
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}
	if err := validateLink(link); err != nil {
		return nil, err
	}

	if err := s.links.CreateLink(ctx, link); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	s.metrics.IncEntityChanged(metrics.EntityLink, metrics.ActionCreated)
	s.owners.InvalidatePage(ctx, owner.Username)
	return link, nil
}

// ListLinks returns all of the owner's links in display order, hidden ones included.
func (s *LinkService) ListLinks(ctx context.Context, userID string) ([]model.Link, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.links.ListLinks(ctx, owner.ProfileID, false)
}

// UpdateLinkInput holds optional link changes.
type UpdateLinkInput struct {
	Title    *string
	URL      *string
	Icon     *model.LinkIcon
	IsActive *bool
}

// UpdateLink applies input to one of the owner's links.
func (s *LinkService) UpdateLink(ctx context.Context, userID, id string, input UpdateLinkInput) (*model.Link, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	link, err := s.getLink(ctx, owner.ProfileID, id)
	if err != nil {
		return nil, err
	}

	setString(&link.Title, input.Title, true)
	setString(&link.URL, input.URL, true)
	if input.Icon != nil {
		link.Icon = *input.Icon
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}
	if err := validateLink(link); err != nil {
		return nil, err
	}

	if err := s.links.UpdateLink(ctx, link); err != nil {
		return nil, mapLinkError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityLink, metrics.ActionUpdated)
	s.owners.InvalidatePage(ctx, owner.Username)
	return link, nil
}

// DeleteLink removes one of the owner's links. Its click events go with it.
func (s *LinkService) DeleteLink(ctx context.Context, userID, id string) error {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if !validID(id) {
		return ErrLinkNotFound
	}
	if err := s.links.DeleteLink(ctx, owner.ProfileID, id); err != nil {
		return mapLinkError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityLink, metrics.ActionDeleted)
	s.owners.InvalidatePage(ctx, owner.Username)
	return nil
}

// ReorderLinks assigns display positions. Either every update applies or none.
func (s *LinkService) ReorderLinks(ctx context.Context, userID string, updates []model.OrderUpdate) error {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := validateOrder(updates); err != nil {
		return err
	}
	if err := s.links.ReorderLinks(ctx, owner.ProfileID, updates); err != nil {
		return mapLinkError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityLink, metrics.ActionUpdated)
	s.owners.InvalidatePage(ctx, owner.Username)
	return nil
}

// ClickCount reports a link's denormalized counter next to its stored
// click events. They differ only while the reconciler has work to do.
type ClickCount struct {
	LinkID  string `json:"link_id"`
	Counter int64  `json:"counter"`
	Events  int64  `json:"events"`
	Drift   int64  `json:"drift"` // Events - Counter
}

// LinkClicks returns the click counts of one of the owner's links.
func (s *LinkService) LinkClicks(ctx context.Context, userID, id string) (*ClickCount, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrLinkNotFound
	}
	counter, events, err := s.links.LinkClickCounts(ctx, owner.ProfileID, id)
	if err != nil {
		return nil, mapLinkError(err)
	}
	return &ClickCount{LinkID: id, Counter: counter, Events: events, Drift: events - counter}, nil
}

func (s *LinkService) getLink(ctx context.Context, profileID, id string) (*model.Link, error) {
	if !validID(id) {
		return nil, ErrLinkNotFound
	}
	link, err := s.links.GetLink(ctx, profileID, id)
	if err != nil {
		return nil, mapLinkError(err)
	}
	return link, nil
}

func validateLink(link *model.Link) error {
	if err := validateText("title", link.Title, maxTitleLength, true); err != nil {
		return err
	}
	if err := validateLinkURL(link.URL); err != nil {
		return err
	}
	return validateIcon(link.Icon)
}

func mapLinkError(err error) error {
	if errors.Is(err, repository.ErrLinkNotFound) {
		return ErrLinkNotFound
	}
	return fmt.Errorf("link store: %w", err)
}
