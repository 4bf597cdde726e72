// internal/handlers/ledger.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// Ledger reads are cached briefly; every write drops them again, so the TTL
// only bounds staleness when invalidation itself fails.
const ledgerCacheTTL = time.Minute

// LedgerHandler handles movement and stock HTTP requests
type LedgerHandler struct {
	service ports.LedgerService
	cache   ports.CacheRepository
	manager *redis_a.CacheManager
	logger  *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(service ports.LedgerService, cache ports.CacheRepository, manager *redis_a.CacheManager, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: service,
		cache:   cache,
		manager: manager,
		logger:  logger.With(slog.String("handler", "ledger")),
	}
}

// RecordMovement handles POST /api/v1/movements
func (h *LedgerHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	movement := req.ToDomain()

	stock, err := h.service.Record(ctx, movement)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownProduct):
			h.respondError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, domain.ErrInvalidMovementType):
			h.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrConcurrentUpdate):
			h.respondError(w, http.StatusConflict, "Stock row is contended, please retry")
		default:
			h.logger.ErrorContext(ctx, "failed to record movement",
				slog.String("product_id", movement.ProductID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to record movement")
		}
		return
	}

	h.manager.InvalidateStockCache(ctx)

	h.logger.InfoContext(ctx, "movement recorded",
		slog.String("movement_id", movement.MovementID.String()),
		slog.String("type", string(movement.MovementType)))

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"movement": movement,
		"stock":    stock,
	})
}

// ListMovements handles GET /api/v1/movements
func (h *LedgerHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixMovements, "history")
	var movements []domain.MovementWithProduct

	err := h.cache.GetOrSet(ctx, cacheKey, &movements, func() (interface{}, error) {
		return h.service.History(ctx)
	}, ledgerCacheTTL)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list movements",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list movements")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"movements": movements,
		"count":     len(movements),
	})
}

// GetStock handles GET /api/v1/stock
func (h *LedgerHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixStock, "snapshot")
	var snapshot []domain.StockRow

	err := h.cache.GetOrSet(ctx, cacheKey, &snapshot, func() (interface{}, error) {
		return h.service.Snapshot(ctx)
	}, ledgerCacheTTL)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load stock snapshot",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to load stock snapshot")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"stock": snapshot,
		"count": len(snapshot),
	})
}

// Helper methods

func (h *LedgerHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *LedgerHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// RecordMovementRequest represents the request body for recording a movement
type RecordMovementRequest struct {
	ProductID    string `json:"product_id"`
	MovementType string `json:"movement_type"`
	Quantity     int    `json:"quantity"`
	OrderRef     string `json:"order_ref,omitempty"`
	Note         string `json:"note,omitempty"`
}

// Validate validates the record movement request
func (r *RecordMovementRequest) Validate() error {
	if r.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if _, err := uuid.Parse(r.ProductID); err != nil {
		return fmt.Errorf("product_id is not a valid UUID")
	}
	if !domain.MovementType(r.MovementType).IsValid() {
		return fmt.Errorf("movement_type must be inbound, outbound or adjustment")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *RecordMovementRequest) ToDomain() *domain.Movement {
	return &domain.Movement{
		ProductID:    uuid.MustParse(r.ProductID),
		MovementType: domain.MovementType(r.MovementType),
		Quantity:     r.Quantity,
		OrderRef:     r.OrderRef,
		Note:         r.Note,
	}
}
