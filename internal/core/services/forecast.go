// internal/core/services/forecast.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// forecastConcurrency bounds how many product regressions run at once.
const forecastConcurrency = 4

// ForecastService fits a per-product demand line over recorded sales history
// and projects it thirty days past today.
type ForecastService struct {
	catalogRepo   ports.CatalogRepository
	predictorRepo ports.PredictorRepository
	logger        *slog.Logger
}

// Statically assert that *ForecastService implements the ForecastService interface.
var _ ports.ForecastService = (*ForecastService)(nil)

// NewForecastService creates a new forecast service
func NewForecastService(
	catalogRepo ports.CatalogRepository,
	predictorRepo ports.PredictorRepository,
	logger *slog.Logger,
) *ForecastService {
	return &ForecastService{
		catalogRepo:   catalogRepo,
		predictorRepo: predictorRepo,
		logger:        logger.With(slog.String("service", "forecast")),
	}
}

// PredictAll fits one regression per active product. Products with thin or
// degenerate history yield sentinel entries; they never fail the batch.
func (s *ForecastService) PredictAll(ctx context.Context) ([]domain.Forecast, error) {
	active := true
	products, err := s.catalogRepo.List(ctx, &active)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	forecasts := make([]domain.Forecast, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(forecastConcurrency)

	for i := range products {
		g.Go(func() error {
			forecast, err := s.predictOne(gctx, &products[i])
			if err != nil {
				return err
			}
			forecasts[i] = *forecast
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "forecasts computed",
		slog.Int("products", len(products)))

	return forecasts, nil
}

// predictOne fits the demand line for a single product.
func (s *ForecastService) predictOne(ctx context.Context, product *domain.Product) (*domain.Forecast, error) {
	records, err := s.predictorRepo.FindByProduct(ctx, product.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", product.ProductID, err)
	}

	if len(records) < domain.MinForecastPoints {
		return domain.InsufficientForecast(product.ProductID, product.Name, len(records)), nil
	}

	// x is the day offset from the first record, y is units sold that day.
	first := records[0].RecordDate
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.RecordDate.Sub(first).Hours() / 24
		ys[i] = float64(r.UnitsSold)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)

	// Project at thirty days past today, measured on the same day axis.
	future := time.Now().Sub(first).Hours()/24 + domain.ForecastHorizonDays
	prediction := alpha + beta*future

	if !isFinite(alpha) || !isFinite(beta) || !isFinite(prediction) || !isFinite(r2) {
		s.logger.WarnContext(ctx, "regression produced non-finite values",
			slog.String("product_id", product.ProductID.String()),
			slog.Int("points", len(records)))
		return domain.NumericFitForecast(product.ProductID, product.Name, len(records)), nil
	}

	trend := domain.TrendDecreasing
	if beta > 0 {
		trend = domain.TrendIncreasing
	}

	confidence := r2 * 100
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	predicted := int(prediction)
	if predicted < 0 {
		predicted = 0
	}

	return &domain.Forecast{
		ProductID:   product.ProductID,
		ProductName: product.Name,
		Prediction:  predicted,
		Trend:       trend,
		Confidence:  confidence,
		DataPoints:  len(records),
	}, nil
}

// AddRecord appends one sales-history record
func (s *ForecastService) AddRecord(ctx context.Context, record *domain.PredictorRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	exists, err := s.catalogRepo.Exists(ctx, record.ProductID)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return fmt.Errorf("product %s: %w", record.ProductID, domain.ErrUnknownProduct)
	}

	record.PrepareForStorage()

	if err := s.predictorRepo.Save(ctx, record); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "predictor record added",
		slog.String("product_id", record.ProductID.String()),
		slog.Int("units_sold", record.UnitsSold))

	return nil
}

// AddRecords appends a batch of sales-history records
func (s *ForecastService) AddRecords(ctx context.Context, records []domain.PredictorRecord) error {
	if len(records) == 0 {
		return nil
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("validation failed for record %d: %w", i, err)
		}
		records[i].PrepareForStorage()
	}

	if err := s.predictorRepo.SaveBatch(ctx, records); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "predictor records added",
		slog.Int("count", len(records)))

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
