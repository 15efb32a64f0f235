// Package model defines domain entities for the application.
package model

import "time"

// Plan is the billing tier of a profile.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// IsValid checks if the plan is one of the known tiers.
func (p Plan) IsValid() bool {
	return p == PlanFree || p == PlanPro || p == PlanBusiness
}

// DefaultThemeID is the theme assigned to new profiles.
const DefaultThemeID = "default"

// Profile is the tenant entity: one business's public page.
type Profile struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"` // Subject issued by the auth provider
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	WhatsApp     string    `json:"whatsapp,omitempty"`
	Location     string    `json:"location,omitempty"`
	ThemeID      string    `json:"theme_id"`
	IsVerified   bool      `json:"is_verified"`
	Plan         Plan      `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
