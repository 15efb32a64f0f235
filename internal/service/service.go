// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/webboss/bio/internal/cache"
	"github.com/webboss/bio/internal/model"
)

// Service errors.
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileExists       = errors.New("user already has a profile")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrLinkNotFound        = errors.New("link not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrClickTargetNotFound = errors.New("click target not found")
	ErrInvalidClickTarget  = errors.New("click must reference exactly one of link_id and product_id")
	ErrInvalidOrder        = errors.New("invalid order")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ProfileStore persists profiles.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *model.Profile) error
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, p *model.Profile) error
	DeleteProfile(ctx context.Context, id string) error
}

// LinkStore persists links and their click counters.
type LinkStore interface {
	CreateLink(ctx context.Context, link *model.Link) error
	GetLink(ctx context.Context, profileID, id string) (*model.Link, error)
	ListLinks(ctx context.Context, profileID string, activeOnly bool) ([]model.Link, error)
	UpdateLink(ctx context.Context, link *model.Link) error
	DeleteLink(ctx context.Context, profileID, id string) error
	ReorderLinks(ctx context.Context, profileID string, updates []model.OrderUpdate) error
	LinkClickCounts(ctx context.Context, profileID, id string) (counter, events int64, err error)
}

// ProductStore persists products.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, profileID, id string) (*model.Product, error)
	ListProducts(ctx context.Context, profileID string, publicOnly bool) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, profileID, id string) error
	ReorderProducts(ctx context.Context, profileID string, updates []model.OrderUpdate) error
}

// EventStore appends and reads view and click events.
type EventStore interface {
	InsertView(ctx context.Context, v *model.ViewEvent) error
	InsertClick(ctx context.Context, c *model.ClickEvent) error
	ListViews(ctx context.Context, profileID string, from, to time.Time) ([]model.ViewEvent, error)
	ListClicks(ctx context.Context, profileID string, from, to time.Time) ([]model.ClickEvent, error)
	CountEvents(ctx context.Context, profileID string, from, to time.Time) (views, clicks int64, err error)
}

// PageCache caches public pages and owner lookups. *cache.Cache implements it.
type PageCache interface {
	GetPage(ctx context.Context, username string) (*model.PublicPage, error)
	SetPage(ctx context.Context, page *model.PublicPage, ttl time.Duration) error
	DeletePage(ctx context.Context, username string) error
	IsNegativelyCached(ctx context.Context, username string) (bool, error)
	SetNegativeCache(ctx context.Context, username string) error
	GetOwner(ctx context.Context, userID string) (*cache.Owner, error)
	SetOwner(ctx context.Context, userID string, owner cache.Owner) error
	DeleteOwner(ctx context.Context, userID string) error
}
