// Package model defines domain entities for the application.
package model

import "time"

// DeviceType is the closed set of device classes used for analytics.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceDesktop DeviceType = "desktop"
	DeviceTablet  DeviceType = "tablet"
)

// EventMetadata is the request context attached to a view or click.
// Every field is optional; empty means unknown.
type EventMetadata struct {
	Referrer   string `json:"referrer,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
}

// ViewEvent is one page view of a public profile. Immutable once stored.
type ViewEvent struct {
	ID        string    `json:"id"` // ULID (time-sortable)
	ProfileID string    `json:"profile_id"`
	ViewedAt  time.Time `json:"viewed_at"`
	EventMetadata
}

// ClickEvent is one click on a link or a product buy action.
// Exactly one of LinkID and ProductID is set.
type ClickEvent struct {
	ID        string    `json:"id"` // ULID (time-sortable)
	ProfileID string    `json:"profile_id"`
	LinkID    string    `json:"link_id,omitempty"`
	ProductID string    `json:"product_id,omitempty"`
	ClickedAt time.Time `json:"clicked_at"`
	EventMetadata
}
