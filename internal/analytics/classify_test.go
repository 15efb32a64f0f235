package analytics

import (
	"testing"

	"github.com/webboss/bio/internal/model"
)

func TestClassifySource(t *testing.T) {
	tests := []struct {
		referrer string
		want     string
	}{
		{"", SourceDirect},
		{"   ", SourceDirect},
		{"https://instagram.com/x", SourceInstagram},
		{"https://l.INSTAGRAM.com/", SourceInstagram},
		{"https://web.whatsapp.com/", SourceWhatsApp},
		{"https://twitter.com/someone", SourceTwitter},
		{"https://t.co/y", SourceTwitter},
		{"https://m.facebook.com/story", SourceFacebook},
		{"t.co/abc", SourceTwitter},
		{"//t.co/abc", SourceTwitter},
		{"mobile.t.co", SourceTwitter},
		{"https://www.reddit.com/r/x", SourceDirect},
		{"reddit.com/r/x", SourceDirect},
		{"l.instagram.com", SourceInstagram},
		{"https://google.com/search", SourceDirect},
		// First match wins.
		{"https://facebook.com/share?u=instagram", SourceInstagram},
	}

	for _, tt := range tests {
		t.Run(tt.referrer, func(t *testing.T) {
			if got := ClassifySource(tt.referrer); got != tt.want {
				t.Errorf("ClassifySource(%q) = %q, want %q", tt.referrer, got, tt.want)
			}
		})
	}
}

func TestClassifyDevice(t *testing.T) {
	tests := map[string]model.DeviceType{
		"mobile":   model.DeviceMobile,
		" Tablet ": model.DeviceTablet,
		"desktop":  model.DeviceDesktop,
		"":         model.DeviceDesktop,
		"console":  model.DeviceDesktop,
	}
	for input, want := range tests {
		if got := ClassifyDevice(input); got != want {
			t.Errorf("ClassifyDevice(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestClassifyCity(t *testing.T) {
	if got := ClassifyCity("  "); got != UnknownCity {
		t.Errorf("ClassifyCity(blank) = %q, want %q", got, UnknownCity)
	}
	if got := ClassifyCity("Lagos"); got != "Lagos" {
		t.Errorf("ClassifyCity(Lagos) = %q", got)
	}
}
