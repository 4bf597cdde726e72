// internal/core/domain/stock.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrentStock is the projected stock level for one product. Quantity may go
// negative: outbound movements are accepted even when they overdraw, and the
// ledger stays the source of truth.
type CurrentStock struct {
	ProductID          uuid.UUID       `json:"product_id"`
	Quantity           int             `json:"quantity"`
	TotalInventoryCost decimal.Decimal `json:"total_inventory_cost"`
	LastUpdated        time.Time       `json:"last_updated"`
}

// StockRow is a projection row joined with catalog fields for snapshot
// listings and exports.
type StockRow struct {
	CurrentStock
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// Apply folds one movement into the projection. Inbound adds, outbound
// subtracts, adjustment sets the absolute level. Valuation is always
// recomputed from the product's current unit cost, so historical valuations
// are not reconstructable from this row.
func (s *CurrentStock) Apply(movementType MovementType, quantity int, unitCost decimal.Decimal) {
	switch movementType {
	case MovementInbound:
		s.Quantity += quantity
	case MovementOutbound:
		s.Quantity -= quantity
	case MovementAdjustment:
		s.Quantity = quantity
	}
	s.TotalInventoryCost = unitCost.Mul(decimal.NewFromInt(int64(s.Quantity)))
	s.LastUpdated = time.Now()
}
