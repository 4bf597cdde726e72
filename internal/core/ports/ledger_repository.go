// internal/core/ports/ledger_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// LedgerRepository defines the persistence port for the movement ledger.
// Movements are append-only: there are no update or single-delete methods,
// and DeleteByProduct exists only for the catalog cascade.
type LedgerRepository interface {
	Save(ctx context.Context, movement *domain.Movement) error
	List(ctx context.Context) ([]domain.MovementWithProduct, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error

	WithTx(tx pgx.Tx) LedgerRepository
}

// StockRepository defines the persistence port for the current-stock
// projection.
type StockRepository interface {
	// GetForUpdate loads the projection row under a row lock, creating a
	// zero row when the product has none yet. Must run inside a transaction.
	GetForUpdate(ctx context.Context, productID uuid.UUID) (*domain.CurrentStock, error)
	Upsert(ctx context.Context, stock *domain.CurrentStock) error
	Seed(ctx context.Context, productID uuid.UUID) error
	Snapshot(ctx context.Context) ([]domain.StockRow, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error

	WithTx(tx pgx.Tx) StockRepository
}
