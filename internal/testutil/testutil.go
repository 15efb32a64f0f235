// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/webboss/bio/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 240101

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates every table by replaying the SQL migrations
// down (newest first) and then up.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}
	dir := filepath.Join(root, "internal", "repository", "migrations")

	downs, err := filepath.Glob(filepath.Join(dir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("list down migrations: %w", err)
	}
	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("list up migrations: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))
	sort.Strings(ups)

	// golang-migrate bookkeeping must not survive a manual reset.
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}

	for _, path := range append(downs, ups...) {
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

func next() string {
	return strconv.FormatInt(time.Now().UnixNano()+seq.Add(1), 36)
}

// UniqueUsername generates a valid, unique username for tests.
func UniqueUsername(prefix string) string {
	name := strings.ToLower(prefix) + "_" + next()
	if len(name) > 30 {
		name = name[len(name)-30:]
	}
	return name
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return prefix + "-" + next()
}

// NewTestProfile creates an unsaved profile with sensible defaults.
func NewTestProfile(t testing.TB) *model.Profile {
	t.Helper()
	username := UniqueUsername("shop")
	return &model.Profile{
		UserID:   UniqueID("user"),
		Username: username,
		FullName: "Test Shop",
		Bio:      "Handmade goods",
		ThemeID:  model.DefaultThemeID,
		Plan:     model.PlanFree,
	}
}

// NewTestLink creates an unsaved active link for profileID.
func NewTestLink(t testing.TB, profileID string) *model.Link {
	t.Helper()
	return &model.Link{
		ProfileID: profileID,
		Title:     "Order on WhatsApp",
		URL:       "https://wa.me/2348000000000",
		Icon:      model.IconWhatsApp,
		IsActive:  true,
	}
}

// NewTestProduct creates an unsaved, visible, in-stock product for profileID.
func NewTestProduct(t testing.TB, profileID string) *model.Product {
	t.Helper()
	return &model.Product{
		ProfileID:  profileID,
		Name:       "Ankara Tote",
		PriceMinor: 1500000,
		Currency:   model.DefaultCurrency,
		Inventory:  5,
		IsVisible:  true,
	}
}
