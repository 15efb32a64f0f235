package analytics

import (
	"errors"
	"fmt"

	"github.com/webboss/bio/internal/model"
)

// ErrInvalidEvent wraps every event validation failure.
var ErrInvalidEvent = errors.New("invalid event")

// ValidateView checks a view event before it is stored.
func ValidateView(v model.ViewEvent) error {
	if v.ProfileID == "" {
		return fmt.Errorf("%w: profile_id is required", ErrInvalidEvent)
	}
	if v.ViewedAt.IsZero() {
		return fmt.Errorf("%w: viewed_at must be set", ErrInvalidEvent)
	}
	return validateMetadata(v.EventMetadata)
}

// ValidateClick checks a click event before it is stored.
// Exactly one of link_id and product_id must be set.
func ValidateClick(c model.ClickEvent) error {
	if c.ProfileID == "" {
		return fmt.Errorf("%w: profile_id is required", ErrInvalidEvent)
	}
	if (c.LinkID == "") == (c.ProductID == "") {
		return fmt.Errorf("%w: exactly one of link_id and product_id is required", ErrInvalidEvent)
	}
	if c.ClickedAt.IsZero() {
		return fmt.Errorf("%w: clicked_at must be set", ErrInvalidEvent)
	}
	return validateMetadata(c.EventMetadata)
}

func validateMetadata(m model.EventMetadata) error {
	if len(m.Referrer) > maxMetaLength {
		return fmt.Errorf("%w: referrer too long", ErrInvalidEvent)
	}
	if len(m.DeviceType) > maxDeviceLength {
		return fmt.Errorf("%w: device_type too long", ErrInvalidEvent)
	}
	if len(m.Country) > maxLocationLength || len(m.City) > maxLocationLength {
		return fmt.Errorf("%w: location too long", ErrInvalidEvent)
	}
	return nil
}
