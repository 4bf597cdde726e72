// internal/adapters/db/predictor_repository.go
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

// predictorRepository implements ports.PredictorRepository
type predictorRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewPredictorRepository creates a new predictor-record repository
func NewPredictorRepository(db *Database, logger *slog.Logger) ports.PredictorRepository {
	return &predictorRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "predictor")),
	}
}

const predictorInsert = `
	INSERT INTO predictor_records (
		id, record_date, product_id, units_sold,
		avg_sale_price, promotion_active, special_event
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)`

// Save appends one sales-history record
func (r *predictorRepository) Save(ctx context.Context, record *domain.PredictorRecord) error {
	_, err := r.db.Exec(ctx, predictorInsert,
		record.ID, record.RecordDate, record.ProductID, record.UnitsSold,
		record.AvgSalePrice, record.PromotionActive, record.SpecialEvent,
	)
	if err != nil {
		return fmt.Errorf("failed to save predictor record: %w", err)
	}

	r.logger.DebugContext(ctx, "predictor record saved",
		slog.String("product_id", record.ProductID.String()),
		slog.Time("record_date", record.RecordDate))

	return nil
}

// SaveBatch inserts multiple records in a single transaction
func (r *predictorRepository) SaveBatch(ctx context.Context, records []domain.PredictorRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		for i := range records {
			batch.Queue(predictorInsert,
				records[i].ID, records[i].RecordDate, records[i].ProductID,
				records[i].UnitsSold, records[i].AvgSalePrice,
				records[i].PromotionActive, records[i].SpecialEvent,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := range records {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to save record %d: %w", i, err)
			}
		}

		return nil
	})
}

// FindByProduct returns a product's history ordered by record date ascending
func (r *predictorRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]domain.PredictorRecord, error) {
	query := `
		SELECT id, record_date, product_id, units_sold,
			avg_sale_price, promotion_active, special_event
		FROM predictor_records
		WHERE product_id = $1
		ORDER BY record_date ASC`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictor records: %w", err)
	}
	defer rows.Close()

	var records []domain.PredictorRecord
	for rows.Next() {
		var record domain.PredictorRecord
		var specialEvent sql.NullString

		err := rows.Scan(
			&record.ID, &record.RecordDate, &record.ProductID, &record.UnitsSold,
			&record.AvgSalePrice, &record.PromotionActive, &specialEvent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan predictor record: %w", err)
		}

		record.SpecialEvent = specialEvent.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}
