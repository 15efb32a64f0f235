package analytics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/webboss/bio/internal/model"
)

func TestValidateClick(t *testing.T) {
	now := time.Now()
	valid := model.ClickEvent{ProfileID: "p1", LinkID: "l1", ClickedAt: now}
	if err := ValidateClick(valid); err != nil {
		t.Fatalf("expected valid click, got %v", err)
	}

	cases := []struct {
		name  string
		click model.ClickEvent
	}{
		{"missing_profile", model.ClickEvent{LinkID: "l1", ClickedAt: now}},
		{"no_target", model.ClickEvent{ProfileID: "p1", ClickedAt: now}},
		{"both_targets", model.ClickEvent{ProfileID: "p1", LinkID: "l1", ProductID: "x1", ClickedAt: now}},
		{"missing_time", model.ClickEvent{ProfileID: "p1", LinkID: "l1"}},
		{"long_referrer", model.ClickEvent{ProfileID: "p1", LinkID: "l1", ClickedAt: now,
			EventMetadata: model.EventMetadata{Referrer: strings.Repeat("a", 501)}}},
	}

	for _, tc := range cases {
		err := ValidateClick(tc.click)
		if !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("%s: expected ErrInvalidEvent, got %v", tc.name, err)
		}
	}
}

func TestValidateView(t *testing.T) {
	if err := ValidateView(model.ViewEvent{ProfileID: "p1", ViewedAt: time.Now()}); err != nil {
		t.Fatalf("expected valid view, got %v", err)
	}
	if err := ValidateView(model.ViewEvent{ViewedAt: time.Now()}); err == nil {
		t.Fatal("expected error for missing profile")
	}
	if err := ValidateView(model.ViewEvent{ProfileID: "p1"}); err == nil {
		t.Fatal("expected error for missing viewed_at")
	}
}
