package analytics

import (
	"crypto/rand"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mssola/user_agent"
	"github.com/oklog/ulid/v2"

	"github.com/webboss/bio/internal/model"
)

// Metadata length limits, in bytes.
const (
	maxMetaLength     = 500
	maxDeviceLength   = 20
	maxLocationLength = 100
)

// Locator resolves a client IP to a country and city.
type Locator interface {
	Lookup(ip string) (country, city string)
}

// ClientInfo is the raw request context of a tracked interaction.
// Explicit fields, when set, win over values derived from headers.
type ClientInfo struct {
	IP        string
	UserAgent string
	Referer   string // Referer header
	CFCountry string // CF-IPCountry header

	Referrer   string // explicit, from the request body
	DeviceType string // explicit, from the request body
	Country    string // explicit, from the request body
	City       string // explicit, from the request body
}

// Enricher derives EventMetadata from a ClientInfo.
type Enricher struct {
	locator Locator
}

// NewEnricher creates an enricher. A nil locator disables IP geolocation.
func NewEnricher(locator Locator) *Enricher {
	return &Enricher{locator: locator}
}

// Metadata builds sanitized metadata for one event.
func (e *Enricher) Metadata(info ClientInfo) model.EventMetadata {
	meta := model.EventMetadata{
		Referrer: SanitizeReferrer(firstNonEmpty(info.Referrer, info.Referer)),
		Country:  truncate(strings.TrimSpace(info.Country), maxLocationLength),
		City:     truncate(strings.TrimSpace(info.City), maxLocationLength),
	}

	// Unrecognized explicit device types are stored as desktop.
	switch {
	case strings.TrimSpace(info.DeviceType) != "":
		meta.DeviceType = string(ClassifyDevice(info.DeviceType))
	case info.UserAgent != "":
		meta.DeviceType = string(DeviceFromUserAgent(info.UserAgent))
	}
	if meta.Country == "" {
		meta.Country = ExtractCountryCode(info.CFCountry)
	}
	if e != nil && e.locator != nil && info.IP != "" && (meta.Country == "" || meta.City == "") {
		country, city := e.locator.Lookup(info.IP)
		if meta.Country == "" {
			meta.Country = country
		}
		if meta.City == "" {
			meta.City = city
		}
	}
	return meta
}

// DeviceFromUserAgent classifies a User-Agent header.
func DeviceFromUserAgent(raw string) model.DeviceType {
	ua := user_agent.New(truncate(raw, maxMetaLength))
	lower := strings.ToLower(raw)

	switch {
	case ua.Platform() == "iPad" || strings.Contains(lower, "tablet"):
		return model.DeviceTablet
	case ua.Mobile():
		return model.DeviceMobile
	case strings.Contains(lower, "android"):
		// Android without the Mobile token is a tablet.
		return model.DeviceTablet
	default:
		return model.DeviceDesktop
	}
}

// SanitizeReferrer strips query parameters and fragments and truncates the URL.
func SanitizeReferrer(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return truncate(parsed.String(), maxMetaLength)
}

// ExtractCountryCode returns an upper-case ISO country code from the
// Cloudflare header, or "" if missing or malformed.
func ExtractCountryCode(cfIPCountry string) string {
	if len(cfIPCountry) == 2 && cfIPCountry != "XX" && utf8.ValidString(cfIPCountry) {
		return strings.ToUpper(cfIPCountry)
	}
	return ""
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewEventID returns a time-sortable event identifier.
func NewEventID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// truncate drops invalid UTF-8 and cuts s to at most n bytes on a rune
// boundary.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
