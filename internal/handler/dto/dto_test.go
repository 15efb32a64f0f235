package dto

import (
	"testing"

	"github.com/webboss/bio/internal/model"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		price float64
		minor int64
	}{
		{0, 0},
		{15000, 1500000},
		{19.99, 1999},
		{0.1 + 0.2, 30},
	}
	for _, tt := range tests {
		if got := ToMinorUnits(tt.price); got != tt.minor {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.price, got, tt.minor)
		}
	}
	if got := FromMinorUnits(1999); got != 19.99 {
		t.Errorf("FromMinorUnits(1999) = %v", got)
	}
}

func TestToPublicPageResponse(t *testing.T) {
	page := &model.PublicPage{
		Profile: model.Profile{ID: "p1", UserID: "u1", Username: "shop", ThemeID: "default"},
		Links:   []model.Link{{ID: "l1", Title: "IG", Icon: model.IconInstagram}},
		Products: []model.Product{
			{ID: "pr1", Name: "Bag", PriceMinor: 250000, Currency: "NGN", Inventory: 2, IsVisible: true},
		},
	}

	resp := ToPublicPageResponse(page)
	if resp.Profile.Username != "shop" {
		t.Errorf("username = %q", resp.Profile.Username)
	}
	if len(resp.Links) != 1 || !resp.Links[0].Social {
		t.Errorf("links = %+v", resp.Links)
	}
	if len(resp.Products) != 1 || resp.Products[0].Price != 2500 || !resp.Products[0].Available {
		t.Errorf("products = %+v", resp.Products)
	}
}

func TestToLinkListResponse_Empty(t *testing.T) {
	resp := ToLinkListResponse(nil)
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", resp.Data)
	}
}
