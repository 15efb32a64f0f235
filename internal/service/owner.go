package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/webboss/bio/internal/cache"
	"github.com/webboss/bio/internal/repository"
)

// Owners resolves the profile a dashboard user manages and keeps the
// public page cache coherent with owner mutations.
type Owners struct {
	profiles ProfileStore
	cache    PageCache
	logger   *slog.Logger
}

// NewOwners creates an owner resolver.
func NewOwners(profiles ProfileStore, pageCache PageCache, logger *slog.Logger) *Owners {
	return &Owners{profiles: profiles, cache: pageCache, logger: logger.With("component", "owners")}
}

// Resolve returns the profile owned by userID, cache first.
// Returns ErrProfileNotFound if the user has not created one yet.
func (o *Owners) Resolve(ctx context.Context, userID string) (cache.Owner, error) {
	cached, err := o.cache.GetOwner(ctx, userID)
	if err == nil {
		return *cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		o.logger.Warn("owner cache read failed", slog.String("error", err.Error()))
	}

	p, err := o.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return cache.Owner{}, ErrProfileNotFound
		}
		return cache.Owner{}, fmt.Errorf("resolve owner: %w", err)
	}

	owner := cache.Owner{ProfileID: p.ID, Username: p.Username}
	o.remember(ctx, userID, owner)
	return owner, nil
}

func (o *Owners) remember(ctx context.Context, userID string, owner cache.Owner) {
	if err := o.cache.SetOwner(ctx, userID, owner); err != nil {
		o.logger.Warn("owner cache write failed", slog.String("error", err.Error()))
	}
}

func (o *Owners) forget(ctx context.Context, userID string) {
	if err := o.cache.DeleteOwner(ctx, userID); err != nil {
		o.logger.Warn("owner cache delete failed", slog.String("error", err.Error()))
	}
}

// InvalidatePage drops the cached public page of username. Failures are
// logged; the entry expires on its own.
func (o *Owners) InvalidatePage(ctx context.Context, username string) {
	if err := o.cache.DeletePage(ctx, username); err != nil {
		o.logger.Warn("page cache invalidation failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}
}
