package dto

import (
	"time"

	"github.com/webboss/bio/internal/model"
)

// CreateProfileRequest represents the request body for creating a profile.
type CreateProfileRequest struct {
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	WhatsApp     string `json:"whatsapp,omitempty"`
	Location     string `json:"location,omitempty"`
	ThemeID      string `json:"theme_id,omitempty"`
}

// UpdateProfileRequest represents the request body for updating a profile.
type UpdateProfileRequest struct {
	Username     *string `json:"username,omitempty"`
	FullName     *string `json:"full_name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	WhatsApp     *string `json:"whatsapp,omitempty"`
	Location     *string `json:"location,omitempty"`
	ThemeID      *string `json:"theme_id,omitempty"`
}

// ProfileResponse represents the owner's profile in API responses.
type ProfileResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PublicURL    string    `json:"public_url"`
	FullName     string    `json:"full_name"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	WhatsApp     string    `json:"whatsapp,omitempty"`
	Location     string    `json:"location,omitempty"`
	ThemeID      string    `json:"theme_id"`
	IsVerified   bool      `json:"is_verified"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicProfile is the visitor-facing part of a profile.
type PublicProfile struct {
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	WhatsApp     string `json:"whatsapp,omitempty"`
	Location     string `json:"location,omitempty"`
	ThemeID      string `json:"theme_id"`
	IsVerified   bool   `json:"is_verified"`
}

// PublicPageResponse is the payload of GET /p/{username}.
type PublicPageResponse struct {
	Profile  PublicProfile     `json:"profile"`
	Links    []LinkResponse    `json:"links"`
	Products []ProductResponse `json:"products"`
}

// ToProfileResponse converts a Profile model to ProfileResponse DTO.
func ToProfileResponse(p *model.Profile, publicURL string) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID,
		Username:     p.Username,
		PublicURL:    publicURL,
		FullName:     p.FullName,
		Bio:          p.Bio,
		ProfileImage: p.ProfileImage,
		Email:        p.Email,
		Phone:        p.Phone,
		WhatsApp:     p.WhatsApp,
		Location:     p.Location,
		ThemeID:      p.ThemeID,
		IsVerified:   p.IsVerified,
		Plan:         string(p.Plan),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToPublicPageResponse converts a PublicPage. Internal ids stay out of the
// profile section; link and product ids are kept for click tracking.
func ToPublicPageResponse(page *model.PublicPage) PublicPageResponse {
	p := page.Profile
	return PublicPageResponse{
		Profile: PublicProfile{
			Username:     p.Username,
			FullName:     p.FullName,
			Bio:          p.Bio,
			ProfileImage: p.ProfileImage,
			Email:        p.Email,
			Phone:        p.Phone,
			WhatsApp:     p.WhatsApp,
			Location:     p.Location,
			ThemeID:      p.ThemeID,
			IsVerified:   p.IsVerified,
		},
		Links:    ToLinkListResponse(page.Links).Data,
		Products: ToProductListResponse(page.Products).Data,
	}
}
