// internal/handlers/predictor.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// PredictorHandler ingests sales history for the forecast engine
type PredictorHandler struct {
	service ports.ForecastService
	manager *redis_a.CacheManager
	logger  *slog.Logger
}

// NewPredictorHandler creates a new predictor handler
func NewPredictorHandler(service ports.ForecastService, manager *redis_a.CacheManager, logger *slog.Logger) *PredictorHandler {
	return &PredictorHandler{
		service: service,
		manager: manager,
		logger:  logger.With(slog.String("handler", "predictor")),
	}
}

// AddRecord handles POST /api/v1/predictor-records
func (h *PredictorHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PredictorRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := req.ToDomain()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.AddRecord(ctx, record); err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to add predictor record",
			slog.String("product_id", record.ProductID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to add predictor record")
		return
	}

	// New history changes the fit; drop cached forecasts.
	h.manager.InvalidateForecastCache(ctx)

	h.respondJSON(w, http.StatusCreated, record)
}

// AddRecordBatch handles POST /api/v1/predictor-records/batch
func (h *PredictorHandler) AddRecordBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqs []PredictorRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	records := make([]domain.PredictorRecord, 0, len(reqs))
	for i, req := range reqs {
		record, err := req.ToDomain()
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("record %d: %s", i, err.Error()))
			return
		}
		records = append(records, *record)
	}

	if err := h.service.AddRecords(ctx, records); err != nil {
		h.logger.ErrorContext(ctx, "failed to add predictor records",
			slog.Int("count", len(records)),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to add predictor records")
		return
	}

	h.manager.InvalidateForecastCache(ctx)

	h.logger.InfoContext(ctx, "predictor records ingested",
		slog.Int("count", len(records)))

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Records added successfully",
		"count":   len(records),
	})
}

// Helper methods

func (h *PredictorHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *PredictorHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// PredictorRecordRequest represents one day of sales history
type PredictorRecordRequest struct {
	ProductID       string          `json:"product_id"`
	RecordDate      string          `json:"record_date"`
	UnitsSold       int             `json:"units_sold"`
	AvgSalePrice    decimal.Decimal `json:"avg_sale_price"`
	PromotionActive bool            `json:"promotion_active,omitempty"`
	SpecialEvent    string          `json:"special_event,omitempty"`
}

// ToDomain converts the request to a domain model. Dates are accepted as
// YYYY-MM-DD; an empty date means today.
func (r *PredictorRecordRequest) ToDomain() (*domain.PredictorRecord, error) {
	productID, err := uuid.Parse(r.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product_id is not a valid UUID")
	}

	recordDate := time.Now()
	if r.RecordDate != "" {
		recordDate, err = time.Parse("2006-01-02", r.RecordDate)
		if err != nil {
			return nil, fmt.Errorf("record_date must be formatted as YYYY-MM-DD")
		}
	}

	return &domain.PredictorRecord{
		RecordDate:      recordDate,
		ProductID:       productID,
		UnitsSold:       r.UnitsSold,
		AvgSalePrice:    r.AvgSalePrice,
		PromotionActive: r.PromotionActive,
		SpecialEvent:    r.SpecialEvent,
	}, nil
}
