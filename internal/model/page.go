package model

// PublicPage is what a visitor sees at /p/{username}: the profile with its
// active links and publicly available products, both in display order.
type PublicPage struct {
	Profile  Profile   `json:"profile"`
	Links    []Link    `json:"links"`
	Products []Product `json:"products"`
}
