// internal/workers/forecast_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// ForecastProcessor recomputes demand forecasts in the background so the API
// serves them from cache instead of fitting regressions on request.
type ForecastProcessor struct {
	service  ports.ForecastService
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewForecastProcessor creates a new forecast processor
func NewForecastProcessor(service ports.ForecastService, cache ports.CacheRepository, cacheTTL time.Duration, logger *slog.Logger) *ForecastProcessor {
	return &ForecastProcessor{
		service:  service,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("processor", "forecast")),
	}
}

// WarmForecasts handles the periodic forecast:warmup task. It writes the same
// cache key the API reads, so a scheduled run keeps the endpoint hot.
func (p *ForecastProcessor) WarmForecasts(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	forecasts, err := p.service.PredictAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute forecasts: %w", err)
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixForecast, "all")
	if err := p.cache.SetWithTTL(ctx, cacheKey, forecasts, p.cacheTTL); err != nil {
		return fmt.Errorf("failed to cache forecasts: %w", err)
	}

	p.logger.InfoContext(ctx, "forecast cache warmed",
		slog.Int("products", len(forecasts)),
		slog.Duration("duration", time.Since(start)))

	return nil
}
