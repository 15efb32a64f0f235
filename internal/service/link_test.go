package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webboss/bio/internal/model"
)

func TestCreateLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createProfile("user-1", "links_owner")

	first, err := f.links.CreateLink(ctx, "user-1", CreateLinkInput{Title: " WhatsApp ", URL: "https://wa.me/234800", Icon: model.IconWhatsApp})
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp", first.Title)
	assert.True(t, first.IsActive)
	assert.Equal(t, 0, first.OrderIndex)

	second, err := f.links.CreateLink(ctx, "user-1", CreateLinkInput{Title: "Mail", URL: "mailto:hi@example.com", Icon: model.IconEmail})
	require.NoError(t, err)
	assert.Equal(t, 1, second.OrderIndex)

	_, err = f.links.CreateLink(ctx, "stranger", CreateLinkInput{Title: "x", URL: "https://x.example.com"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestCreateLink_Validation(t *testing.T) {
	f := newFixture()
	f.createProfile("user-1", "links_owner")

	tests := []struct {
		name  string
		input CreateLinkInput
		field string
	}{
		{"missing title", CreateLinkInput{URL: "https://example.com"}, "title"},
		{"missing url", CreateLinkInput{Title: "x"}, "url"},
		{"ftp scheme", CreateLinkInput{Title: "x", URL: "ftp://example.com"}, "url"},
		{"javascript scheme", CreateLinkInput{Title: "x", URL: "javascript:alert(1)"}, "url"},
		{"missing host", CreateLinkInput{Title: "x", URL: "https://"}, "url"},
		{"empty mailto", CreateLinkInput{Title: "x", URL: "mailto:"}, "url"},
		{"unknown icon", CreateLinkInput{Title: "x", URL: "https://example.com", Icon: "myspace"}, "icon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.links.CreateLink(context.Background(), "user-1", tt.input)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUpdateAndDeleteLink_Ownership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createProfile("owner", "owner_page")
	f.createProfile("other", "other_page")

	link, err := f.links.CreateLink(ctx, "owner", CreateLinkInput{Title: "a", URL: "https://a.example.com"})
	require.NoError(t, err)

	title := "stolen"
	_, err = f.links.UpdateLink(ctx, "other", link.ID, UpdateLinkInput{Title: &title})
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.ErrorIs(t, f.links.DeleteLink(ctx, "other", link.ID), ErrLinkNotFound)

	title = "renamed"
	off := false
	updated, err := f.links.UpdateLink(ctx, "owner", link.ID, UpdateLinkInput{Title: &title, IsActive: &off})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.False(t, updated.IsActive)

	_, err = f.links.UpdateLink(ctx, "owner", "not-a-uuid", UpdateLinkInput{Title: &title})
	assert.ErrorIs(t, err, ErrLinkNotFound)

	require.NoError(t, f.links.DeleteLink(ctx, "owner", link.ID))
	assert.ErrorIs(t, f.links.DeleteLink(ctx, "owner", link.ID), ErrLinkNotFound)
}

func TestReorderLinks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createProfile("owner", "order_page")

	a, _ := f.links.CreateLink(ctx, "owner", CreateLinkInput{Title: "a", URL: "https://a.example.com"})
	b, _ := f.links.CreateLink(ctx, "owner", CreateLinkInput{Title: "b", URL: "https://b.example.com"})

	require.NoError(t, f.links.ReorderLinks(ctx, "owner", []model.OrderUpdate{
		{ID: a.ID, OrderIndex: 1},
		{ID: b.ID, OrderIndex: 0},
	}))

	links, err := f.links.ListLinks(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "b", links[0].Title)
	assert.Equal(t, "a", links[1].Title)

	tests := []struct {
		name    string
		updates []model.OrderUpdate
		want    error
	}{
		{"empty", nil, ErrInvalidOrder},
		{"duplicate id", []model.OrderUpdate{{ID: a.ID}, {ID: a.ID, OrderIndex: 1}}, ErrInvalidOrder},
		{"negative index", []model.OrderUpdate{{ID: a.ID, OrderIndex: -1}}, ErrInvalidOrder},
		{"malformed id", []model.OrderUpdate{{ID: "x"}}, ErrInvalidOrder},
		{"unknown id", []model.OrderUpdate{{ID: uuid.NewString()}}, ErrLinkNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.links.ReorderLinks(ctx, "owner", tt.updates), tt.want)
		})
	}
}

func TestLinkClicks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.createProfile("owner", "clicks_page")
	link, _ := f.links.CreateLink(ctx, "owner", CreateLinkInput{Title: "a", URL: "https://a.example.com"})

	for i := 0; i < 3; i++ {
		require.NoError(t, f.recorder.RecordClick(ctx, p.ID, ClickTarget{LinkID: link.ID}, model.EventMetadata{}))
	}

	got, err := f.links.LinkClicks(ctx, "owner", link.ID)
	require.NoError(t, err)
	assert.Equal(t, &ClickCount{LinkID: link.ID, Counter: 3, Events: 3}, got)

	_, err = f.links.LinkClicks(ctx, "owner", uuid.NewString())
	assert.ErrorIs(t, err, ErrLinkNotFound)
}
