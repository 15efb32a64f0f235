package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webboss/bio/internal/model"
)

// Cache key prefixes and TTLs.
const (
	pageKeyPrefix     = "page:"
	negCacheKeySuffix = ":neg"
	ownerKeyPrefix    = "owner:"

	// DefaultPageTTL is the TTL for cached public pages.
	DefaultPageTTL = 5 * time.Minute

	// NegativeCacheTTL is the TTL for unknown-username entries.
	NegativeCacheTTL = time.Minute

	// OwnerTTL is the TTL for user -> profile id mappings.
	OwnerTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func pageKey(username string) string {
	return pageKeyPrefix + strings.ToLower(username)
}

// GetPage retrieves a cached public page.
// Returns ErrCacheMiss if not found or if the entry is unreadable.
func (c *Cache) GetPage(ctx context.Context, username string) (*model.PublicPage, error) {
	data, err := c.client.Get(ctx, pageKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var page model.PublicPage
	if err := json.Unmarshal(data, &page); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrCacheMiss
	}
	return &page, nil
}

// SetPage stores a public page. A non-positive ttl uses DefaultPageTTL.
func (c *Cache) SetPage(ctx context.Context, page *model.PublicPage, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}

	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}

	key := pageKey(page.Profile.Username)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, ttl)
	pipe.Del(ctx, key+negCacheKeySuffix)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// DeletePage removes a cached page and its negative entry.
func (c *Cache) DeletePage(ctx context.Context, username string) error {
	key := pageKey(username)
	if err := c.client.Del(ctx, key, key+negCacheKeySuffix).Err(); err != nil {
		return fmt.Errorf("failed to delete page from cache: %w", err)
	}
	return nil
}

// IsNegativelyCached checks if a username is known not to exist.
func (c *Cache) IsNegativelyCached(ctx context.Context, username string) (bool, error) {
	exists, err := c.client.Exists(ctx, pageKey(username)+negCacheKeySuffix).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}
	return exists > 0, nil
}

// SetNegativeCache marks a username as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, username string) error {
	if err := c.client.SetEx(ctx, pageKey(username)+negCacheKeySuffix, "", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}
	return nil
}

// Owner maps an auth-provider user to the profile they manage.
type Owner struct {
	ProfileID string `json:"profile_id"`
	Username  string `json:"username"`
}

// GetOwner returns the cached profile of an auth-provider user.
func (c *Cache) GetOwner(ctx context.Context, userID string) (*Owner, error) {
	data, err := c.client.Get(ctx, ownerKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var o Owner
	if err := json.Unmarshal(data, &o); err != nil || o.ProfileID == "" {
		return nil, ErrCacheMiss
	}
	return &o, nil
}

// SetOwner caches the profile of an auth-provider user.
func (c *Cache) SetOwner(ctx context.Context, userID string, owner Owner) error {
	data, err := json.Marshal(owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	if err := c.client.Set(ctx, ownerKeyPrefix+userID, data, OwnerTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache owner: %w", err)
	}
	return nil
}

// DeleteOwner forgets the cached profile of an auth-provider user.
func (c *Cache) DeleteOwner(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, ownerKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to delete owner from cache: %w", err)
	}
	return nil
}
