package service

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/webboss/bio/internal/model"
)

// Field limits.
const (
	maxURLLength         = 2048
	maxTitleLength       = 100
	maxNameLength        = 100
	maxBioLength         = 500
	maxDescriptionLength = 2000
	maxReorderItems      = 500
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// reservedUsernames collide with routes or are likely to be abused.
var reservedUsernames = map[string]bool{
	"api":      true,
	"admin":    true,
	"healthz":  true,
	"readyz":   true,
	"metrics":  true,
	"static":   true,
	"assets":   true,
	"login":    true,
	"logout":   true,
	"signup":   true,
	"auth":     true,
	"settings": true,
	"password": true,
	"support":  true,
	"help":     true,
}

// NormalizeUsername lowercases and trims a username. Lookups and storage
// both go through it.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks a normalized username.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return invalid("username", "must be 3-30 characters of a-z, 0-9 or underscore")
	}
	if reservedUsernames[username] {
		return invalid("username", "is reserved")
	}
	return nil
}

// validateURL accepts absolute http(s) URLs. Empty is allowed when optional.
func validateURL(field, raw string, optional bool) error {
	if raw == "" {
		if optional {
			return nil
		}
		return invalid(field, "is required")
	}
	if len(raw) > maxURLLength {
		return invalid(field, "is too long")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return invalid(field, "is not a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return invalid(field, "must use http or https")
	}
	if parsed.Host == "" {
		return invalid(field, "must include a host")
	}
	return nil
}

// validateLinkURL also allows the contact schemes link icons open.
func validateLinkURL(raw string) error {
	lower := strings.ToLower(raw)
	for _, scheme := range []string{"mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			if len(raw) == len(scheme) || len(raw) > maxURLLength {
				return invalid("url", "is not a valid URL")
			}
			return nil
		}
	}
	return validateURL("url", raw, false)
}

func validateText(field, value string, max int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	if utf8.RuneCountInString(value) > max {
		return invalid(field, "is too long")
	}
	return nil
}

func validateIcon(icon model.LinkIcon) error {
	if !icon.IsValid() {
		return invalid("icon", "is not a known icon")
	}
	return nil
}

func validateCurrency(currency string) error {
	if !currencyPattern.MatchString(currency) {
		return invalid("currency", "must be a 3-letter ISO 4217 code")
	}
	return nil
}

// validID reports whether id is a UUID. Malformed ids are treated as unknown.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// validateOrder requires unique, well-formed ids and non-negative positions.
func validateOrder(updates []model.OrderUpdate) error {
	if len(updates) == 0 || len(updates) > maxReorderItems {
		return ErrInvalidOrder
	}
	seen := make(map[string]bool, len(updates))
	for _, u := range updates {
		if !validID(u.ID) || u.OrderIndex < 0 || seen[u.ID] {
			return ErrInvalidOrder
		}
		seen[u.ID] = true
	}
	return nil
}
