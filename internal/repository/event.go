package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/webboss/bio/internal/model"
)

// Event errors.
var (
	// ErrClickTargetNotFound means the clicked link or product does not
	// exist or belongs to another profile.
	ErrClickTargetNotFound = errors.New("click target not found")
	// ErrInvalidClickTarget means the store rejected a click that does not
	// reference exactly one of link and product.
	ErrInvalidClickTarget = errors.New("click must reference exactly one of link and product")
)

// InsertView stores one page view.
// A missing profile yields ErrProfileNotFound.
func (r *Repository) InsertView(ctx context.Context, v *model.ViewEvent) error {
	query := `
		INSERT INTO page_views (id, profile_id, viewed_at, referrer, device_type, country, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		v.ID,
		v.ProfileID,
		v.ViewedAt,
		nullableString(v.Referrer),
		nullableString(v.DeviceType),
		nullableString(v.Country),
		nullableString(v.City),
	)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to insert view: %w", err)
	}
	return nil
}

// InsertClick stores one click and, for link clicks, increments the link's
// counter in the same transaction so the two never drift apart.
func (r *Repository) InsertClick(ctx context.Context, c *model.ClickEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin click insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// The target must belong to the clicked profile.
	query := `
		INSERT INTO clicks (id, profile_id, link_id, product_id, clicked_at, referrer, device_type, country, city)
		SELECT $1, $2::uuid, $3::uuid, $4::uuid, $5::timestamptz, $6::text, $7::text, $8::text, $9::text
		WHERE ($3::uuid IS NULL OR EXISTS (SELECT 1 FROM links WHERE id = $3 AND profile_id = $2))
		  AND ($4::uuid IS NULL OR EXISTS (SELECT 1 FROM products WHERE id = $4 AND profile_id = $2))
	`

	result, err := tx.Exec(ctx, query,
		c.ID,
		c.ProfileID,
		nullableString(c.LinkID),
		nullableString(c.ProductID),
		c.ClickedAt,
		nullableString(c.Referrer),
		nullableString(c.DeviceType),
		nullableString(c.Country),
		nullableString(c.City),
	)
	if err != nil {
		return mapClickError(err)
	}
	if result.RowsAffected() == 0 {
		return clickTargetError(ctx, tx, c.ProfileID)
	}

	if c.LinkID != "" {
		if err := incrementClicks(ctx, tx, c.LinkID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return mapClickError(fmt.Errorf("commit click insert: %w", err))
	}
	return nil
}

// clickTargetError tells a missing profile apart from a target that does not
// belong to it.
func clickTargetError(ctx context.Context, tx pgx.Tx, profileID string) error {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, profileID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check click profile: %w", err)
	}
	if !exists {
		return ErrProfileNotFound
	}
	return ErrClickTargetNotFound
}

func mapClickError(err error) error {
	if constraint, ok := isForeignKeyViolation(err); ok {
		if constraint == "clicks_profile_id_fkey" {
			return ErrProfileNotFound
		}
		return ErrClickTargetNotFound
	}
	if isCheckViolation(err) {
		return ErrInvalidClickTarget
	}
	return fmt.Errorf("failed to insert click: %w", err)
}

// ListViews returns the profile's page views in [from, to], oldest first.
func (r *Repository) ListViews(ctx context.Context, profileID string, from, to time.Time) ([]model.ViewEvent, error) {
	query := `
		SELECT id, profile_id, viewed_at,
		       COALESCE(referrer, ''), COALESCE(device_type, ''), COALESCE(country, ''), COALESCE(city, '')
		FROM page_views
		WHERE profile_id = $1 AND viewed_at >= $2 AND viewed_at <= $3
		ORDER BY viewed_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, profileID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	views := make([]model.ViewEvent, 0)
	for rows.Next() {
		var v model.ViewEvent
		if err := rows.Scan(&v.ID, &v.ProfileID, &v.ViewedAt,
			&v.Referrer, &v.DeviceType, &v.Country, &v.City); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating views: %w", err)
	}
	return views, nil
}

// ListClicks returns the profile's clicks in [from, to], oldest first.
func (r *Repository) ListClicks(ctx context.Context, profileID string, from, to time.Time) ([]model.ClickEvent, error) {
	query := `
		SELECT id, profile_id, COALESCE(link_id::text, ''), COALESCE(product_id::text, ''), clicked_at,
		       COALESCE(referrer, ''), COALESCE(device_type, ''), COALESCE(country, ''), COALESCE(city, '')
		FROM clicks
		WHERE profile_id = $1 AND clicked_at >= $2 AND clicked_at <= $3
		ORDER BY clicked_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, profileID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	defer rows.Close()

	clicks := make([]model.ClickEvent, 0)
	for rows.Next() {
		var c model.ClickEvent
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.LinkID, &c.ProductID, &c.ClickedAt,
			&c.Referrer, &c.DeviceType, &c.Country, &c.City); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clicks: %w", err)
	}
	return clicks, nil
}

// CountEvents returns the number of views and clicks for the profile in [from, to].
func (r *Repository) CountEvents(ctx context.Context, profileID string, from, to time.Time) (views, clicks int64, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM page_views WHERE profile_id = $1 AND viewed_at >= $2 AND viewed_at <= $3),
			(SELECT COUNT(*) FROM clicks WHERE profile_id = $1 AND clicked_at >= $2 AND clicked_at <= $3)
	`

	if err := r.pool.QueryRow(ctx, query, profileID, from, to).Scan(&views, &clicks); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("failed to count events: %w", err)
	}
	return views, clicks, nil
}
