package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webboss/bio/internal/handler/dto"
	"github.com/webboss/bio/internal/service"
)

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	svc    ProductManager
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc ProductManager, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		svc:    svc,
		logger: logger.With("component", "handler.product"),
	}
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	products, err := h.svc.ListProducts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToProductListResponse(products))
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), userID, service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceMinor:  dto.ToMinorUnits(req.Price),
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		Inventory:   req.Inventory,
		IsVisible:   req.IsVisible,
		Category:    req.Category,
		SKU:         req.SKU,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("product_created", "product_id", p.ID)
	writeJSON(w, http.StatusCreated, dto.ToProductResponse(p))
}

// Update handles PATCH /api/v1/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	input := service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		Inventory:   req.Inventory,
		IsVisible:   req.IsVisible,
		Category:    req.Category,
		SKU:         req.SKU,
	}
	if req.Price != nil {
		minor := dto.ToMinorUnits(*req.Price)
		input.PriceMinor = &minor
	}

	p, err := h.svc.UpdateProduct(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("product_updated", "product_id", p.ID)
	writeJSON(w, http.StatusOK, dto.ToProductResponse(p))
}

// Delete handles DELETE /api/v1/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteProduct(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("product_deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles PUT /api/v1/products/order.
func (h *ProductHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := h.svc.ReorderProducts(r.Context(), userID, req.Items); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
