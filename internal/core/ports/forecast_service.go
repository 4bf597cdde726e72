// internal/core/ports/forecast_service.go
package ports

import (
	"context"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

// ForecastService defines the application service port for the demand
// forecaster and its history ingestion.
type ForecastService interface {
	// PredictAll fits one regression per active product. Products with thin
	// or degenerate history yield sentinel entries rather than failing the
	// batch.
	PredictAll(ctx context.Context) ([]domain.Forecast, error)
	AddRecord(ctx context.Context, record *domain.PredictorRecord) error
	AddRecords(ctx context.Context, records []domain.PredictorRecord) error
}
