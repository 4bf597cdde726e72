// internal/core/ports/predictor_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// PredictorRepository defines the persistence port for sales-history records
// consumed by the forecast engine.
type PredictorRepository interface {
	Save(ctx context.Context, record *domain.PredictorRecord) error
	SaveBatch(ctx context.Context, records []domain.PredictorRecord) error
	// FindByProduct returns the product's history ordered by record date
	// ascending.
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]domain.PredictorRecord, error)
}
