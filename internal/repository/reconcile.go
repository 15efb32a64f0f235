package repository

import (
	"context"
	"fmt"
)

// CounterDrift describes a link whose counter disagreed with its stored clicks.
type CounterDrift struct {
	LinkID string
	Stored int64
	Actual int64
}

// ReconcileClickCounters recomputes every link counter from the clicks table
// and returns the links that disagreed. Counters are only ever raised, so a
// counter above its event count is reported but left unchanged.
func (r *Repository) ReconcileClickCounters(ctx context.Context) ([]CounterDrift, error) {
	query := `
		WITH counts AS (
			SELECT l.id, l.clicks AS stored, COUNT(c.id) AS actual
			FROM links l
			LEFT JOIN clicks c ON c.link_id = l.id
			GROUP BY l.id, l.clicks
		), fixed AS (
			UPDATE links
			SET clicks = GREATEST(links.clicks, counts.actual)
			FROM counts
			WHERE links.id = counts.id AND links.clicks < counts.actual
		)
		SELECT id, stored, actual FROM counts WHERE stored <> actual ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile click counters: %w", err)
	}
	defer rows.Close()

	drift := make([]CounterDrift, 0)
	for rows.Next() {
		var d CounterDrift
		if err := rows.Scan(&d.LinkID, &d.Stored, &d.Actual); err != nil {
			return nil, fmt.Errorf("failed to scan counter drift: %w", err)
		}
		drift = append(drift, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counter drift: %w", err)
	}
	return drift, nil
}
