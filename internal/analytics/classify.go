package analytics

import (
	"net/url"
	"strings"

	"github.com/webboss/bio/internal/model"
)

// Traffic source names.
const (
	SourceInstagram = "Instagram"
	SourceWhatsApp  = "WhatsApp"
	SourceTwitter   = "Twitter"
	SourceFacebook  = "Facebook"
	SourceDirect    = "Direct"
)

// UnknownCity labels views without a city.
const UnknownCity = "Unknown"

type sourceRule struct {
	name  string
	match func(ref, host string) bool
}

func contains(substr string) func(ref, host string) bool {
	return func(ref, _ string) bool {
		return strings.Contains(ref, substr)
	}
}

// sourceRules are evaluated in order; the first match wins.
var sourceRules = []sourceRule{
	{SourceInstagram, contains("instagram")},
	{SourceWhatsApp, contains("whatsapp")},
	{SourceTwitter, func(ref, host string) bool {
		// t.co is matched on the host so that e.g. "reddit.com" stays Direct.
		return strings.Contains(ref, "twitter") || host == "t.co" || strings.HasSuffix(host, ".t.co")
	}},
	{SourceFacebook, contains("facebook")},
}

// ClassifySource maps a referrer to a named traffic source.
func ClassifySource(referrer string) string {
	ref := strings.ToLower(strings.TrimSpace(referrer))
	if ref == "" {
		return SourceDirect
	}

	host := referrerHost(ref)
	for _, rule := range sourceRules {
		if rule.match(ref, host) {
			return rule.name
		}
	}
	return SourceDirect
}

// referrerHost returns the host of ref. Referrers without a scheme, such as
// "t.co/abc", are parsed as scheme-relative URLs.
func referrerHost(ref string) string {
	parsed, err := url.Parse(ref)
	if err == nil && parsed.Host != "" {
		return parsed.Hostname()
	}
	if strings.Contains(ref, "://") {
		return ""
	}
	if parsed, err = url.Parse("//" + strings.TrimPrefix(ref, "//")); err == nil {
		return parsed.Hostname()
	}
	return ""
}

// ClassifyDevice maps a device-type string to a device class.
// Unrecognized or missing values count as desktop.
func ClassifyDevice(deviceType string) model.DeviceType {
	switch model.DeviceType(strings.ToLower(strings.TrimSpace(deviceType))) {
	case model.DeviceMobile:
		return model.DeviceMobile
	case model.DeviceTablet:
		return model.DeviceTablet
	default:
		return model.DeviceDesktop
	}
}

// ClassifyCity returns the city label used by the location breakdown.
func ClassifyCity(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return UnknownCity
	}
	return city
}
