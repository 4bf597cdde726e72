// internal/core/ports/catalog_service.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// CatalogService defines the application service port for the product
// catalog. This interface is implemented by the application service.
type CatalogService interface {
	Create(ctx context.Context, product *domain.Product) error
	Get(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, activeOnly *bool) ([]domain.Product, error)
	Update(ctx context.Context, productID uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error)
	// Delete removes the product together with its movements and stock row
	// in one transaction. Irreversible.
	Delete(ctx context.Context, productID uuid.UUID) error
}
