// internal/adapters/db/stock_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// stockRepository implements ports.StockRepository
type stockRepository struct {
	q      ports.Querier
	logger *slog.Logger
}

// NewStockRepository creates a new current-stock repository
func NewStockRepository(db *Database, logger *slog.Logger) ports.StockRepository {
	return &stockRepository{
		q:      db,
		logger: logger.With(slog.String("repository", "stock")),
	}
}

// WithTx returns a copy of the repository running on the given transaction.
func (r *stockRepository) WithTx(tx pgx.Tx) ports.StockRepository {
	return &stockRepository{q: tx, logger: r.logger}
}

// GetForUpdate loads the projection row under a row lock, creating a zero
// row when the product has none yet. Callers must run it inside a
// transaction or the lock is released immediately.
func (r *stockRepository) GetForUpdate(ctx context.Context, productID uuid.UUID) (*domain.CurrentStock, error) {
	query := `
		SELECT product_id, quantity, total_inventory_cost, last_updated
		FROM current_stock
		WHERE product_id = $1
		FOR UPDATE`

	stock := &domain.CurrentStock{}
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&stock.ProductID, &stock.Quantity, &stock.TotalInventoryCost, &stock.LastUpdated,
	)
	if err == nil {
		return stock, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to lock stock row: %w", err)
	}

	// No row yet: insert the zero row. The insert holds the lock for the
	// rest of the transaction.
	if err := r.Seed(ctx, productID); err != nil {
		return nil, err
	}

	return &domain.CurrentStock{
		ProductID:          productID,
		Quantity:           0,
		TotalInventoryCost: decimal.Zero,
	}, nil
}

// Upsert writes the projection row
func (r *stockRepository) Upsert(ctx context.Context, stock *domain.CurrentStock) error {
	query := `
		INSERT INTO current_stock (product_id, quantity, total_inventory_cost, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			total_inventory_cost = EXCLUDED.total_inventory_cost,
			last_updated = EXCLUDED.last_updated`

	_, err := r.q.Exec(ctx, query,
		stock.ProductID, stock.Quantity, stock.TotalInventoryCost, stock.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stock: %w", err)
	}

	return nil
}

// Seed inserts a zero projection row for a new product
func (r *stockRepository) Seed(ctx context.Context, productID uuid.UUID) error {
	query := `
		INSERT INTO current_stock (product_id, quantity, total_inventory_cost, last_updated)
		VALUES ($1, 0, 0, NOW())
		ON CONFLICT (product_id) DO NOTHING`

	if _, err := r.q.Exec(ctx, query, productID); err != nil {
		return fmt.Errorf("failed to seed stock row: %w", err)
	}

	return nil
}

// Snapshot returns all projection rows joined with catalog fields
func (r *stockRepository) Snapshot(ctx context.Context) ([]domain.StockRow, error) {
	query := `
		SELECT
			s.product_id, s.quantity, s.total_inventory_cost, s.last_updated,
			p.name, p.sku, p.cost
		FROM current_stock s
		JOIN products p ON p.product_id = s.product_id
		ORDER BY p.name ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock snapshot: %w", err)
	}
	defer rows.Close()

	var snapshot []domain.StockRow
	for rows.Next() {
		var row domain.StockRow

		err := rows.Scan(
			&row.ProductID, &row.Quantity, &row.TotalInventoryCost, &row.LastUpdated,
			&row.ProductName, &row.SKU, &row.UnitCost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}

		snapshot = append(snapshot, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshot, nil
}

// DeleteByProduct removes a product's projection row. Only used by the
// catalog cascade delete.
func (r *stockRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	query := `DELETE FROM current_stock WHERE product_id = $1`

	if _, err := r.q.Exec(ctx, query, productID); err != nil {
		return fmt.Errorf("failed to delete stock row: %w", err)
	}

	r.logger.InfoContext(ctx, "stock row deleted",
		slog.String("product_id", productID.String()))

	return nil
}
