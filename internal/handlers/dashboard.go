// internal/handlers/dashboard.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sistemastock/stock-be/internal/adapters/db"
	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// DashboardHandler serves the aggregated stock overview
type DashboardHandler struct {
	db     *db.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *db.Database, cache ports.CacheRepository, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		db:     db,
		cache:  cache,
		logger: logger.With(slog.String("handler", "dashboard")),
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixStock, "dashboard")
	var dashboard DashboardData

	err := h.cache.GetOrSet(ctx, cacheKey, &dashboard, func() (interface{}, error) {
		return h.loadDashboardData(ctx)
	}, 5*time.Minute)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	h.respondJSON(w, http.StatusOK, dashboard)
}

func (h *DashboardHandler) loadDashboardData(ctx context.Context) (*DashboardData, error) {
	dashboard := &DashboardData{
		Timestamp: time.Now(),
	}

	summaryQuery := `
		SELECT
			COUNT(*) AS total_products,
			COUNT(*) FILTER (WHERE p.active) AS active_products,
			COALESCE(SUM(cs.quantity), 0) AS total_units,
			COALESCE(SUM(cs.total_inventory_cost), 0) AS total_inventory_cost,
			COUNT(*) FILTER (WHERE cs.quantity < 0) AS overdrawn_products
		FROM products p
		LEFT JOIN current_stock cs ON cs.product_id = p.product_id
	`

	err := h.db.QueryRow(ctx, summaryQuery).Scan(
		&dashboard.Summary.TotalProducts,
		&dashboard.Summary.ActiveProducts,
		&dashboard.Summary.TotalUnits,
		&dashboard.Summary.TotalInventoryCost,
		&dashboard.Summary.OverdrawnProducts,
	)
	if err != nil {
		return nil, err
	}

	categoryQuery := `
		SELECT
			p.category,
			COUNT(*) AS count,
			COALESCE(SUM(cs.quantity), 0) AS units,
			COALESCE(SUM(cs.total_inventory_cost), 0) AS value
		FROM products p
		LEFT JOIN current_stock cs ON cs.product_id = p.product_id
		GROUP BY p.category
		ORDER BY count DESC
	`

	rows, err := h.db.Query(ctx, categoryQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cat CategoryBreakdown
		if err := rows.Scan(&cat.Category, &cat.Count, &cat.Units, &cat.Value); err != nil {
			continue
		}
		dashboard.CategoryBreakdown = append(dashboard.CategoryBreakdown, cat)
	}

	activityQuery := `
		SELECT
			m.movement_type,
			m.quantity,
			p.name,
			m.occurred_at
		FROM movements m
		JOIN products p ON p.product_id = m.product_id
		ORDER BY m.occurred_at DESC
		LIMIT 20
	`

	actRows, err := h.db.Query(ctx, activityQuery)
	if err == nil {
		defer actRows.Close()
		for actRows.Next() {
			var activity RecentMovement
			if err := actRows.Scan(&activity.MovementType, &activity.Quantity, &activity.ProductName, &activity.OccurredAt); err == nil {
				dashboard.RecentMovements = append(dashboard.RecentMovements, activity)
			}
		}
	}

	return dashboard, nil
}

// Type definitions

type DashboardData struct {
	Summary           DashboardSummary    `json:"summary"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	RecentMovements   []RecentMovement    `json:"recent_movements"`
	Timestamp         time.Time           `json:"timestamp"`
}

type DashboardSummary struct {
	TotalProducts      int64           `json:"total_products"`
	ActiveProducts     int64           `json:"active_products"`
	TotalUnits         int64           `json:"total_units"`
	TotalInventoryCost decimal.Decimal `json:"total_inventory_cost"`
	OverdrawnProducts  int64           `json:"overdrawn_products"`
}

type CategoryBreakdown struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Units    int64           `json:"units"`
	Value    decimal.Decimal `json:"value"`
}

type RecentMovement struct {
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	ProductName  string    `json:"product_name"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Helper methods

func (h *DashboardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DashboardHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
