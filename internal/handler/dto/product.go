package dto

import (
	"math"
	"time"

	"github.com/webboss/bio/internal/model"
)

// CreateProductRequest represents the request body for creating a product.
// Price is a decimal amount in major units, e.g. 15000.50.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Inventory   int     `json:"inventory"`
	IsVisible   *bool   `json:"is_visible,omitempty"`
	Category    string  `json:"category,omitempty"`
	SKU         string  `json:"sku,omitempty"`
}

// UpdateProductRequest represents the request body for updating a product.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Inventory   *int     `json:"inventory,omitempty"`
	IsVisible   *bool    `json:"is_visible,omitempty"`
	Category    *string  `json:"category,omitempty"`
	SKU         *string  `json:"sku,omitempty"`
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	PriceMinor  int64     `json:"price_minor"`
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"image_url,omitempty"`
	Inventory   int       `json:"inventory"`
	IsVisible   bool      `json:"is_visible"`
	Available   bool      `json:"available"`
	Category    string    `json:"category,omitempty"`
	SKU         string    `json:"sku,omitempty"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductListResponse wraps a list of products.
type ProductListResponse struct {
	Data []ProductResponse `json:"data"`
}

// ToMinorUnits converts a decimal major-unit amount to minor units.
func ToMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// FromMinorUnits converts minor units back to a decimal amount.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// ToProductResponse converts a Product model to ProductResponse DTO.
func ToProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       FromMinorUnits(p.PriceMinor),
		PriceMinor:  p.PriceMinor,
		Currency:    p.Currency,
		ImageURL:    p.ImageURL,
		Inventory:   p.Inventory,
		IsVisible:   p.IsVisible,
		Available:   p.IsPubliclyAvailable(),
		Category:    p.Category,
		SKU:         p.SKU,
		OrderIndex:  p.OrderIndex,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductListResponse converts a slice of Product models.
func ToProductListResponse(products []model.Product) ProductListResponse {
	data := make([]ProductResponse, len(products))
	for i := range products {
		data[i] = ToProductResponse(&products[i])
	}
	return ProductListResponse{Data: data}
}
