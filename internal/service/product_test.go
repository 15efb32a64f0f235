package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webboss/bio/internal/model"
)

func TestCreateProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createProfile("seller", "seller_page")

	p, err := f.products.CreateProduct(ctx, "seller", CreateProductInput{
		Name:       "Ankara Dress",
		PriceMinor: 2500000,
		Inventory:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCurrency, p.Currency)
	assert.True(t, p.IsVisible)

	usd, err := f.products.CreateProduct(ctx, "seller", CreateProductInput{Name: "Scarf", Currency: "usd", Inventory: 1})
	require.NoError(t, err)
	assert.Equal(t, "USD", usd.Currency)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture()
	f.createProfile("seller", "seller_page")

	tests := []struct {
		name  string
		input CreateProductInput
		field string
	}{
		{"missing name", CreateProductInput{}, "name"},
		{"negative price", CreateProductInput{Name: "x", PriceMinor: -1}, "price"},
		{"negative inventory", CreateProductInput{Name: "x", Inventory: -1}, "inventory"},
		{"bad currency", CreateProductInput{Name: "x", Currency: "NAIRA"}, "currency"},
		{"bad image", CreateProductInput{Name: "x", ImageURL: "not a url"}, "image_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.products.CreateProduct(context.Background(), "seller", tt.input)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUpdateProduct_SoldOutLeavesPublicPage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createProfile("seller", "seller_page")

	p, err := f.products.CreateProduct(ctx, "seller", CreateProductInput{Name: "Bag", Inventory: 1})
	require.NoError(t, err)

	page, _, err := f.profiles.PublicPage(ctx, "seller_page")
	require.NoError(t, err)
	require.Len(t, page.Products, 1)

	zero := 0
	_, err = f.products.UpdateProduct(ctx, "seller", p.ID, UpdateProductInput{Inventory: &zero})
	require.NoError(t, err)

	page, _, err = f.profiles.PublicPage(ctx, "seller_page")
	require.NoError(t, err)
	assert.Empty(t, page.Products)

	all, err := f.products.ListProducts(ctx, "seller")
	require.NoError(t, err)
	assert.Len(t, all, 1, "dashboard still lists sold-out products")
}

func TestProductOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createProfile("seller", "seller_page")
	f.createProfile("other", "other_page")

	p, err := f.products.CreateProduct(ctx, "seller", CreateProductInput{Name: "Bag", Inventory: 1})
	require.NoError(t, err)

	name := "mine now"
	_, err = f.products.UpdateProduct(ctx, "other", p.ID, UpdateProductInput{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, f.products.DeleteProduct(ctx, "other", p.ID), ErrProductNotFound)
	assert.ErrorIs(t, f.products.ReorderProducts(ctx, "other", []model.OrderUpdate{{ID: p.ID}}), ErrProductNotFound)

	require.NoError(t, f.products.DeleteProduct(ctx, "seller", p.ID))
}
