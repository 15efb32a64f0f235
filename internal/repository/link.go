package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/webboss/bio/internal/model"
)

const linkColumns = `id, profile_id, title, url, icon, is_active, order_index, clicks, created_at, updated_at`

// CreateLink inserts a link at the end of the profile's list.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO links (profile_id, title, url, icon, is_active, order_index)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE((SELECT MAX(order_index) + 1 FROM links WHERE profile_id = $1), 0))
		RETURNING id, order_index, clicks, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		link.ProfileID,
		link.Title,
		link.URL,
		link.Icon,
		link.IsActive,
	).Scan(&link.ID, &link.OrderIndex, &link.Clicks, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLink retrieves a link owned by profileID.
func (r *Repository) GetLink(ctx context.Context, profileID, id string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1 AND profile_id = $2`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// ListLinks returns a profile's links ordered by order_index.
func (r *Repository) ListLinks(ctx context.Context, profileID string, activeOnly bool) ([]model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE profile_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY order_index ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := make([]model.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, *link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// UpdateLink updates a link's mutable fields. The clicks counter is never written here.
func (r *Repository) UpdateLink(ctx context.Context, link *model.Link) error {
	query := `
		UPDATE links
		SET title = $3, url = $4, icon = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1 AND profile_id = $2
		RETURNING clicks, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		link.ID,
		link.ProfileID,
		link.Title,
		link.URL,
		link.Icon,
		link.IsActive,
	).Scan(&link.Clicks, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to update link: %w", err)
	}

	return nil
}

// DeleteLink removes a link. Its click events cascade.
func (r *Repository) DeleteLink(ctx context.Context, profileID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1 AND profile_id = $2`, id, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// ReorderLinks assigns order indexes in one statement. Every id must belong
// to profileID, otherwise nothing is changed and ErrLinkNotFound is returned.
func (r *Repository) ReorderLinks(ctx context.Context, profileID string, updates []model.OrderUpdate) error {
	return r.reorder(ctx, "links", profileID, updates, ErrLinkNotFound)
}

// IncrementClicks atomically adds one to a link's counter.
// A missing link is a no-op.
func (r *Repository) IncrementClicks(ctx context.Context, id string) error {
	return incrementClicks(ctx, r.pool, id)
}

func incrementClicks(ctx context.Context, q execer, id string) error {
	if _, err := q.Exec(ctx, `UPDATE links SET clicks = clicks + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	return nil
}

// LinkClickCounts returns the denormalized counter next to the number of
// stored click events for the link.
func (r *Repository) LinkClickCounts(ctx context.Context, profileID, id string) (counter, events int64, err error) {
	query := `
		SELECT l.clicks, (SELECT COUNT(*) FROM clicks c WHERE c.link_id = l.id)
		FROM links l
		WHERE l.id = $1 AND l.profile_id = $2
	`

	err = r.pool.QueryRow(ctx, query, id, profileID).Scan(&counter, &events)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrLinkNotFound
		}
		return 0, 0, fmt.Errorf("failed to count link clicks: %w", err)
	}
	return counter, events, nil
}

func (r *Repository) reorder(ctx context.Context, table, profileID string, updates []model.OrderUpdate, notFound error) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]string, len(updates))
	positions := make([]int64, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
		positions[i] = int64(u.OrderIndex)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// table is never user input.
	query := fmt.Sprintf(`
		UPDATE %s AS t
		SET order_index = u.position, updated_at = NOW()
		FROM unnest($2::uuid[], $3::int[]) AS u(id, position)
		WHERE t.id = u.id AND t.profile_id = $1
	`, table)

	result, err := tx.Exec(ctx, query, profileID, pq.Array(ids), pq.Array(positions))
	if err != nil {
		return fmt.Errorf("failed to reorder %s: %w", table, err)
	}
	if result.RowsAffected() != int64(len(updates)) {
		return notFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// scanLink scans a single row into a Link model.
func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID,
		&link.ProfileID,
		&link.Title,
		&link.URL,
		&link.Icon,
		&link.IsActive,
		&link.OrderIndex,
		&link.Clicks,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	return &link, err
}
