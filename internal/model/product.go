// Package model defines domain entities for the application.
package model

import "time"

// DefaultCurrency is used when a product is created without one.
const DefaultCurrency = "NGN"

// Product is a sellable item listed on a profile page.
type Product struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceMinor  int64     `json:"price_minor"` // Price in minor currency units (kobo, cents)
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"image_url,omitempty"`
	Inventory   int       `json:"inventory"`
	IsVisible   bool      `json:"is_visible"`
	Category    string    `json:"category,omitempty"`
	SKU         string    `json:"sku,omitempty"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPubliclyAvailable reports whether the product may render on the public page.
func (p *Product) IsPubliclyAvailable() bool {
	return p.IsVisible && p.Inventory > 0
}
