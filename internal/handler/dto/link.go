// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/webboss/bio/internal/model"
)

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Icon     string `json:"icon,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UpdateLinkRequest represents the request body for updating a link.
type UpdateLinkRequest struct {
	Title    *string `json:"title,omitempty"`
	URL      *string `json:"url,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ReorderRequest assigns display positions to links or products.
type ReorderRequest struct {
	Items []model.OrderUpdate `json:"items"`
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Icon       string    `json:"icon,omitempty"`
	Social     bool      `json:"social"`
	IsActive   bool      `json:"is_active"`
	OrderIndex int       `json:"order_index"`
	Clicks     int64     `json:"clicks"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LinkListResponse wraps a list of links.
type LinkListResponse struct {
	Data []LinkResponse `json:"data"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link) LinkResponse {
	return LinkResponse{
		ID:         link.ID,
		Title:      link.Title,
		URL:        link.URL,
		Icon:       string(link.Icon),
		Social:     link.Icon.Capabilities().Social,
		IsActive:   link.IsActive,
		OrderIndex: link.OrderIndex,
		Clicks:     link.Clicks,
		CreatedAt:  link.CreatedAt,
		UpdatedAt:  link.UpdatedAt,
	}
}

// ToLinkListResponse converts a slice of Link models to LinkListResponse.
func ToLinkListResponse(links []model.Link) LinkListResponse {
	data := make([]LinkResponse, len(links))
	for i := range links {
		data[i] = ToLinkResponse(&links[i])
	}
	return LinkListResponse{Data: data}
}
