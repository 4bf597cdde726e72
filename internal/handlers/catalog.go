// internal/handlers/catalog.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

const catalogCacheTTL = 10 * time.Minute

// CatalogHandler handles product catalog HTTP requests
type CatalogHandler struct {
	service ports.CatalogService
	cache   ports.CacheRepository
	manager *redis_a.CacheManager
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service ports.CatalogService, cache ports.CacheRepository, manager *redis_a.CacheManager, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		cache:   cache,
		manager: manager,
		logger:  logger.With(slog.String("handler", "catalog")),
	}
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixCatalog, idStr)
	var product domain.Product

	err = h.cache.GetOrSet(ctx, cacheKey, &product, func() (interface{}, error) {
		return h.service.Get(ctx, productID)
	}, catalogCacheTTL)

	if err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var activeOnly *bool
	cachePart := "all"
	if active := r.URL.Query().Get("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			activeOnly = &val
			cachePart = "active_" + active
		}
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixCatalog, "list", cachePart)
	var products []domain.Product

	err := h.cache.GetOrSet(ctx, cacheKey, &products, func() (interface{}, error) {
		return h.service.List(ctx, activeOnly)
	}, catalogCacheTTL)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := req.ToDomain()

	if err := h.service.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicateSKU) {
			h.respondError(w, http.StatusConflict, "A product with this SKU already exists")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create product",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	h.manager.InvalidateProductCache(ctx, product.ProductID.String())

	h.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ProductID.String()),
		slog.String("sku", product.SKU))

	h.respondJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PATCH /api/v1/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	// Nil fields in the patch are left untouched; an empty body is a no-op.
	var patch domain.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validatePatch(&patch); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(ctx, productID, &patch)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		if errors.Is(err, domain.ErrDuplicateSKU) {
			h.respondError(w, http.StatusConflict, "A product with this SKU already exists")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	h.manager.InvalidateProductCache(ctx, idStr)

	h.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", idStr))

	h.respondJSON(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	// Removes the product together with its movements and stock row.
	if err := h.service.Delete(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	h.manager.InvalidateProductCache(ctx, idStr)

	h.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", idStr))

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Product deleted successfully",
		"product_id": idStr,
	})
}

// Helper methods

func (h *CatalogHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *CatalogHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// validatePatch rejects patch values the catalog would never accept before
// they reach the database.
func validatePatch(patch *domain.ProductPatch) error {
	if patch.Name != nil && *patch.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if patch.SKU != nil && *patch.SKU == "" {
		return fmt.Errorf("sku cannot be empty")
	}
	if patch.Cost != nil && patch.Cost.IsNegative() {
		return fmt.Errorf("cost cannot be negative")
	}
	if patch.SalePrice != nil && patch.SalePrice.IsNegative() {
		return fmt.Errorf("sale_price cannot be negative")
	}
	return nil
}

// Request/Response DTOs

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Category      string          `json:"category,omitempty"`
	Location      string          `json:"location,omitempty"`
}

// Validate validates the create product request
func (r *CreateProductRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if r.Cost.IsNegative() {
		return fmt.Errorf("cost cannot be negative")
	}
	if r.SalePrice.IsNegative() {
		return fmt.Errorf("sale_price cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *CreateProductRequest) ToDomain() *domain.Product {
	return &domain.Product{
		ProductID:     uuid.New(),
		Name:          r.Name,
		SKU:           r.SKU,
		UnitOfMeasure: domain.UnitOfMeasure(r.UnitOfMeasure),
		Cost:          r.Cost,
		SalePrice:     r.SalePrice,
		Category:      domain.ProductCategory(r.Category),
		Location:      r.Location,
		Active:        true,
	}
}
