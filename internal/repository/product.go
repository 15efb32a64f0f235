package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/webboss/bio/internal/model"
)

const productColumns = `
	id, profile_id, name, description, price_minor, currency, image_url,
	inventory, is_visible, category, sku, order_index, created_at, updated_at
`

// CreateProduct inserts a product at the end of the profile's list.
func (r *Repository) CreateProduct(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (profile_id, name, description, price_minor, currency, image_url,
			inventory, is_visible, category, sku, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			COALESCE((SELECT MAX(order_index) + 1 FROM products WHERE profile_id = $1), 0))
		RETURNING id, order_index, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ProfileID,
		p.Name,
		p.Description,
		p.PriceMinor,
		p.Currency,
		p.ImageURL,
		p.Inventory,
		p.IsVisible,
		p.Category,
		p.SKU,
	).Scan(&p.ID, &p.OrderIndex, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetProduct retrieves a product owned by profileID.
func (r *Repository) GetProduct(ctx context.Context, profileID, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND profile_id = $2`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListProducts returns a profile's products ordered by order_index.
// With publicOnly, only visible products with stock are returned.
func (r *Repository) ListProducts(ctx context.Context, profileID string, publicOnly bool) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE profile_id = $1`
	if publicOnly {
		query += ` AND is_visible AND inventory > 0`
	}
	query += ` ORDER BY order_index ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// UpdateProduct updates a product's mutable fields.
func (r *Repository) UpdateProduct(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $3, description = $4, price_minor = $5, currency = $6, image_url = $7,
		    inventory = $8, is_visible = $9, category = $10, sku = $11, updated_at = NOW()
		WHERE id = $1 AND profile_id = $2
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.ProfileID,
		p.Name,
		p.Description,
		p.PriceMinor,
		p.Currency,
		p.ImageURL,
		p.Inventory,
		p.IsVisible,
		p.Category,
		p.SKU,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// DeleteProduct removes a product. Its click events cascade.
func (r *Repository) DeleteProduct(ctx context.Context, profileID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND profile_id = $2`, id, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ReorderProducts assigns order indexes in one statement. See ReorderLinks.
func (r *Repository) ReorderProducts(ctx context.Context, profileID string, updates []model.OrderUpdate) error {
	return r.reorder(ctx, "products", profileID, updates, ErrProductNotFound)
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.ProfileID,
		&p.Name,
		&p.Description,
		&p.PriceMinor,
		&p.Currency,
		&p.ImageURL,
		&p.Inventory,
		&p.IsVisible,
		&p.Category,
		&p.SKU,
		&p.OrderIndex,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return &p, err
}
