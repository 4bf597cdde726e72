// internal/core/services/ledger.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// maxRecordAttempts bounds the retries on serialization failures before the
// write surfaces ErrConcurrentUpdate.
const maxRecordAttempts = 3

// LedgerService handles movement recording and stock projection
type LedgerService struct {
	catalogRepo ports.CatalogRepository
	ledgerRepo  ports.LedgerRepository
	stockRepo   ports.StockRepository
	database    ports.Database
	logger      *slog.Logger
}

// Statically assert that *LedgerService implements the LedgerService interface.
var _ ports.LedgerService = (*LedgerService)(nil)

// NewLedgerService creates a new ledger service
func NewLedgerService(
	catalogRepo ports.CatalogRepository,
	ledgerRepo ports.LedgerRepository,
	stockRepo ports.StockRepository,
	database ports.Database,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		catalogRepo: catalogRepo,
		ledgerRepo:  ledgerRepo,
		stockRepo:   stockRepo,
		database:    database,
		logger:      logger.With(slog.String("service", "ledger")),
	}
}

// Record appends one movement and folds it into the current-stock projection.
// Both writes happen in one transaction: an observer never sees a movement
// without its stock effect. The stock row is taken under FOR UPDATE, and the
// whole transaction is retried on serialization failures or deadlocks.
func (s *LedgerService) Record(ctx context.Context, movement *domain.Movement) (*domain.CurrentStock, error) {
	if err := movement.Validate(); err != nil {
		return nil, err
	}

	// Identity is fixed before the retry loop so a retried transaction
	// inserts the same movement, not a duplicate.
	movement.PrepareForStorage()

	var result *domain.CurrentStock
	var lastErr error

	for attempt := 1; attempt <= maxRecordAttempts; attempt++ {
		err := s.database.Transaction(ctx, func(tx pgx.Tx) error {
			product, err := s.catalogRepo.WithTx(tx).FindByID(ctx, movement.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("product %s: %w", movement.ProductID, domain.ErrUnknownProduct)
			}

			if err := s.ledgerRepo.WithTx(tx).Save(ctx, movement); err != nil {
				return err
			}

			stockRepo := s.stockRepo.WithTx(tx)
			stock, err := stockRepo.GetForUpdate(ctx, movement.ProductID)
			if err != nil {
				return err
			}

			stock.Apply(movement.MovementType, movement.Quantity, product.Cost)

			if err := stockRepo.Upsert(ctx, stock); err != nil {
				return err
			}

			result = stock
			return nil
		})

		if err == nil {
			s.logger.InfoContext(ctx, "movement recorded",
				slog.String("movement_id", movement.MovementID.String()),
				slog.String("type", string(movement.MovementType)),
				slog.Int("quantity", movement.Quantity),
				slog.Int("stock_quantity", result.Quantity))
			return result, nil
		}

		if !isRetryableTxError(err) {
			return nil, err
		}

		lastErr = err
		s.logger.WarnContext(ctx, "retrying movement transaction",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, lastErr)
}

// isRetryableTxError reports whether the transaction failed on a
// serialization conflict (40001) or deadlock (40P01).
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// History returns the full ledger newest-first
func (s *LedgerService) History(ctx context.Context) ([]domain.MovementWithProduct, error) {
	movements, err := s.ledgerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

// Snapshot returns all stock projection rows joined with catalog fields
func (s *LedgerService) Snapshot(ctx context.Context) ([]domain.StockRow, error) {
	snapshot, err := s.stockRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock snapshot: %w", err)
	}
	return snapshot, nil
}
