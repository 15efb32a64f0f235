// Package model defines domain entities for the application.
package model

import "time"

// LinkIcon is the fixed set of icons a link can render with.
type LinkIcon string

const (
	IconNone      LinkIcon = ""
	IconLink      LinkIcon = "link"
	IconWhatsApp  LinkIcon = "whatsapp"
	IconInstagram LinkIcon = "instagram"
	IconTwitter   LinkIcon = "twitter"
	IconFacebook  LinkIcon = "facebook"
	IconTikTok    LinkIcon = "tiktok"
	IconYouTube   LinkIcon = "youtube"
	IconEmail     LinkIcon = "email"
	IconPhone     LinkIcon = "phone"
	IconShop      LinkIcon = "shop"
	IconCalendar  LinkIcon = "calendar"
)

// IconCapabilities describes how the presentation layer may treat an icon.
type IconCapabilities struct {
	Social  bool // Rendered in the social row
	Contact bool // Opens a contact channel (mail, phone, chat)
}

var iconCapabilities = map[LinkIcon]IconCapabilities{
	IconNone:      {},
	IconLink:      {},
	IconWhatsApp:  {Social: true, Contact: true},
	IconInstagram: {Social: true},
	IconTwitter:   {Social: true},
	IconFacebook:  {Social: true},
	IconTikTok:    {Social: true},
	IconYouTube:   {Social: true},
	IconEmail:     {Contact: true},
	IconPhone:     {Contact: true},
	IconShop:      {},
	IconCalendar:  {},
}

// IsValid checks if the icon is part of the fixed catalog.
func (i LinkIcon) IsValid() bool {
	_, ok := iconCapabilities[i]
	return ok
}

// Capabilities returns the capability set of the icon.
func (i LinkIcon) Capabilities() IconCapabilities {
	return iconCapabilities[i]
}

// Link is a single outbound call-to-action on a profile page.
type Link struct {
	ID         string    `json:"id"`
	ProfileID  string    `json:"profile_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Icon       LinkIcon  `json:"icon,omitempty"`
	IsActive   bool      `json:"is_active"`
	OrderIndex int       `json:"order_index"`
	Clicks     int64     `json:"clicks"` // Denormalized running total
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderUpdate assigns a display position to an entity.
type OrderUpdate struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
}
