// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// ledgerRepository implements ports.LedgerRepository
type ledgerRepository struct {
	q      ports.Querier
	logger *slog.Logger
}

// NewLedgerRepository creates a new movement ledger repository
func NewLedgerRepository(db *Database, logger *slog.Logger) ports.LedgerRepository {
	return &ledgerRepository{
		q:      db,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

// WithTx returns a copy of the repository running on the given transaction.
func (r *ledgerRepository) WithTx(tx pgx.Tx) ports.LedgerRepository {
	return &ledgerRepository{q: tx, logger: r.logger}
}

// Save appends one movement to the ledger
func (r *ledgerRepository) Save(ctx context.Context, movement *domain.Movement) error {
	query := `
		INSERT INTO movements (
			movement_id, occurred_at, product_id, movement_type,
			quantity, order_ref, note
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.q.Exec(ctx, query,
		movement.MovementID, movement.OccurredAt, movement.ProductID,
		movement.MovementType, movement.Quantity, movement.OrderRef, movement.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to save movement: %w", err)
	}

	r.logger.DebugContext(ctx, "movement saved",
		slog.String("movement_id", movement.MovementID.String()),
		slog.String("product_id", movement.ProductID.String()),
		slog.String("type", string(movement.MovementType)))

	return nil
}

// List returns the full movement history newest-first, joined with product
// names.
func (r *ledgerRepository) List(ctx context.Context) ([]domain.MovementWithProduct, error) {
	query := `
		SELECT
			m.movement_id, m.occurred_at, m.product_id, m.movement_type,
			m.quantity, m.order_ref, m.note, p.name
		FROM movements m
		JOIN products p ON p.product_id = m.product_id
		ORDER BY m.occurred_at DESC, m.movement_id DESC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.MovementWithProduct
	for rows.Next() {
		var m domain.MovementWithProduct
		var orderRef, note sql.NullString

		err := rows.Scan(
			&m.MovementID, &m.OccurredAt, &m.ProductID, &m.MovementType,
			&m.Quantity, &orderRef, &note, &m.ProductName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}

		m.OrderRef = orderRef.String
		m.Note = note.String
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return movements, nil
}

// CountByProduct returns the number of ledger entries for one product
func (r *ledgerRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM movements WHERE product_id = $1`

	var count int64
	err := r.q.QueryRow(ctx, query, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count movements: %w", err)
	}

	return count, nil
}

// DeleteByProduct removes a product's ledger entries. Only used by the
// catalog cascade delete.
func (r *ledgerRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	query := `DELETE FROM movements WHERE product_id = $1`

	tag, err := r.q.Exec(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("failed to delete movements: %w", err)
	}

	r.logger.InfoContext(ctx, "movements deleted",
		slog.String("product_id", productID.String()),
		slog.Int64("count", tag.RowsAffected()))

	return nil
}
