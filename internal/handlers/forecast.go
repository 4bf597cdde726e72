// internal/handlers/forecast.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// ForecastHandler serves demand forecasts
type ForecastHandler struct {
	service  ports.ForecastService
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(service ports.ForecastService, cache ports.CacheRepository, cacheTTL time.Duration, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		service:  service,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("handler", "forecast")),
	}
}

// GetForecasts handles GET /api/v1/forecasts
//
// Fitting one regression per active product is the most expensive read in the
// API, so results are cached. The warmup worker refreshes the same key in the
// background.
func (h *ForecastHandler) GetForecasts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixForecast, "all")
	var forecasts []domain.Forecast

	err := h.cache.GetOrSet(ctx, cacheKey, &forecasts, func() (interface{}, error) {
		return h.service.PredictAll(ctx)
	}, h.cacheTTL)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute forecasts",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to compute forecasts")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"forecasts":    forecasts,
		"horizon_days": domain.ForecastHorizonDays,
		"generated_at": time.Now().UTC(),
	})
}

// Helper methods

func (h *ForecastHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *ForecastHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
