// internal/core/ports/ledger_service.go
package ports

import (
	"context"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// LedgerService defines the application service port for recording movements
// and reading their projections.
type LedgerService interface {
	// Record appends one movement and folds it into the current-stock
	// projection atomically, returning the resulting stock level.
	Record(ctx context.Context, movement *domain.Movement) (*domain.CurrentStock, error)
	History(ctx context.Context) ([]domain.MovementWithProduct, error)
	Snapshot(ctx context.Context) ([]domain.StockRow, error)
}
