// internal/core/ports/catalog_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// CatalogRepository defines the persistence port for products.
// This interface is implemented by the database adapter.
type CatalogRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, productID uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error)
	FindByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, activeOnly *bool) ([]domain.Product, error)
	Delete(ctx context.Context, productID uuid.UUID) error
	Exists(ctx context.Context, productID uuid.UUID) (bool, error)

	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx pgx.Tx) CatalogRepository
}
