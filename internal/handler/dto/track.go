package dto

// TrackViewRequest is the optional body of POST /p/{username}/views.
// Explicit metadata wins over values derived from request headers.
type TrackViewRequest struct {
	Referrer   string `json:"referrer,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
}

// TrackClickRequest is the body of POST /p/{username}/clicks. Exactly one
// of LinkID and ProductID must be set.
type TrackClickRequest struct {
	LinkID    string `json:"link_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	TrackViewRequest
}

// AcceptedResponse acknowledges a fire-and-forget request.
type AcceptedResponse struct {
	Status string `json:"status"`
}
