// internal/core/services/catalog.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// CatalogService handles product catalog business logic
type CatalogService struct {
	catalogRepo ports.CatalogRepository
	ledgerRepo  ports.LedgerRepository
	stockRepo   ports.StockRepository
	db          ports.Database
	logger      *slog.Logger
}

// Statically assert that *CatalogService implements the CatalogService interface.
var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service
func NewCatalogService(
	catalogRepo ports.CatalogRepository,
	ledgerRepo ports.LedgerRepository,
	stockRepo ports.StockRepository,
	db ports.Database,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		ledgerRepo:  ledgerRepo,
		stockRepo:   stockRepo,
		db:          db,
		logger:      logger.With(slog.String("service", "catalog")),
	}
}

// Create validates and stores a new product. The product row and its zero
// stock row are inserted in one transaction, so every product always has
// exactly one projection row.
func (s *CatalogService) Create(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	product.PrepareForStorage()

	err := s.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := s.catalogRepo.WithTx(tx).Save(ctx, product); err != nil {
			return err
		}
		return s.stockRepo.WithTx(tx).Seed(ctx, product.ProductID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ProductID.String()),
		slog.String("sku", product.SKU))

	return nil
}

// Get retrieves a product by ID
func (s *CatalogService) Get(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, err := s.catalogRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrUnknownProduct)
	}

	return product, nil
}

// List retrieves catalog products
func (s *CatalogService) List(ctx context.Context, activeOnly *bool) ([]domain.Product, error) {
	products, err := s.catalogRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Update applies a merge patch to a product. Only non-nil fields change, so
// replaying the same patch is idempotent. An empty patch returns the current
// row untouched.
func (s *CatalogService) Update(ctx context.Context, productID uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, productID)
	}

	product, err := s.catalogRepo.Update(ctx, productID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", productID.String()))

	return product, nil
}

// Delete removes a product and everything referencing it: movements first,
// then the stock row, then the product, all in one transaction. This is a
// hard delete and cannot be undone.
func (s *CatalogService) Delete(ctx context.Context, productID uuid.UUID) error {
	err := s.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := s.ledgerRepo.WithTx(tx).DeleteByProduct(ctx, productID); err != nil {
			return err
		}
		if err := s.stockRepo.WithTx(tx).DeleteByProduct(ctx, productID); err != nil {
			return err
		}
		return s.catalogRepo.WithTx(tx).Delete(ctx, productID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product deleted with history",
		slog.String("product_id", productID.String()))

	return nil
}
