package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/webboss/bio/internal/metrics"
	"github.com/webboss/bio/internal/model"
	"github.com/webboss/bio/internal/repository"
)

// ProductService handles the products listed on a profile page.
type ProductService struct {
	owners   *Owners
	products ProductStore
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(owners *Owners, products ProductStore, recorder metrics.Recorder, logger *slog.Logger) *ProductService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProductService{
		owners:   owners,
		products: products,
		metrics:  recorder,
		logger:   logger.With("component", "product_service"),
	}
}

// CreateProductInput defines input for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	PriceMinor  int64
	Currency    string
	ImageURL    string
	Inventory   int
	IsVisible   *bool // Defaults to true
	Category    string
	SKU         string
}

// CreateProduct appends a product to the owner's page.
func (s *ProductService) CreateProduct(ctx context.Context, userID string, input CreateProductInput) (*model.Product, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		ProfileID:   owner.ProfileID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		PriceMinor:  input.PriceMinor,
		Currency:    strings.ToUpper(strings.TrimSpace(input.Currency)),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Inventory:   input.Inventory,
		IsVisible:   true,
		Category:    strings.TrimSpace(input.Category),
		SKU:         strings.TrimSpace(input.SKU),
	}
	if p.Currency == "" {
		p.Currency = model.DefaultCurrency
	}
	if input.IsVisible != nil {
		p.IsVisible = *input.IsVisible
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.products.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	s.metrics.IncEntityChanged(metrics.EntityProduct, metrics.ActionCreated)
	s.owners.InvalidatePage(ctx, owner.Username)
	return p, nil
}

// ListProducts returns all of the owner's products in display order.
func (s *ProductService) ListProducts(ctx context.Context, userID string) ([]model.Product, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.products.ListProducts(ctx, owner.ProfileID, false)
}

// UpdateProductInput holds optional product changes.
type UpdateProductInput struct {
	Name        *string
	Description *string
	PriceMinor  *int64
	Currency    *string
	ImageURL    *string
	Inventory   *int
	IsVisible   *bool
	Category    *string
	SKU         *string
}

// UpdateProduct applies input to one of the owner's products.
func (s *ProductService) UpdateProduct(ctx context.Context, userID, id string, input UpdateProductInput) (*model.Product, error) {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrProductNotFound
	}
	p, err := s.products.GetProduct(ctx, owner.ProfileID, id)
	if err != nil {
		return nil, mapProductError(err)
	}

	setString(&p.Name, input.Name, true)
	setString(&p.Description, input.Description, false)
	setString(&p.ImageURL, input.ImageURL, true)
	setString(&p.Category, input.Category, true)
	setString(&p.SKU, input.SKU, true)
	if input.Currency != nil {
		p.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.PriceMinor != nil {
		p.PriceMinor = *input.PriceMinor
	}
	if input.Inventory != nil {
		p.Inventory = *input.Inventory
	}
	if input.IsVisible != nil {
		p.IsVisible = *input.IsVisible
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, mapProductError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityProduct, metrics.ActionUpdated)
	s.owners.InvalidatePage(ctx, owner.Username)
	return p, nil
}

// DeleteProduct removes one of the owner's products.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, id string) error {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if !validID(id) {
		return ErrProductNotFound
	}
	if err := s.products.DeleteProduct(ctx, owner.ProfileID, id); err != nil {
		return mapProductError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityProduct, metrics.ActionDeleted)
	s.owners.InvalidatePage(ctx, owner.Username)
	return nil
}

// ReorderProducts assigns display positions. Either every update applies or none.
func (s *ProductService) ReorderProducts(ctx context.Context, userID string, updates []model.OrderUpdate) error {
	owner, err := s.owners.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := validateOrder(updates); err != nil {
		return err
	}
	if err := s.products.ReorderProducts(ctx, owner.ProfileID, updates); err != nil {
		return mapProductError(err)
	}

	s.metrics.IncEntityChanged(metrics.EntityProduct, metrics.ActionUpdated)
	s.owners.InvalidatePage(ctx, owner.Username)
	return nil
}

func validateProduct(p *model.Product) error {
	if err := validateText("name", p.Name, maxNameLength, true); err != nil {
		return err
	}
	if err := validateText("description", p.Description, maxDescriptionLength, false); err != nil {
		return err
	}
	if p.PriceMinor < 0 {
		return invalid("price", "must not be negative")
	}
	if err := validateCurrency(p.Currency); err != nil {
		return err
	}
	if p.Inventory < 0 {
		return invalid("inventory", "must not be negative")
	}
	if err := validateURL("image_url", p.ImageURL, true); err != nil {
		return err
	}
	if err := validateText("category", p.Category, maxNameLength, false); err != nil {
		return err
	}
	return validateText("sku", p.SKU, 64, false)
}

func mapProductError(err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return ErrProductNotFound
	}
	return fmt.Errorf("product store: %w", err)
}
