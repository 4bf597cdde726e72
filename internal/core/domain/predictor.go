// internal/core/domain/predictor.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PredictorRecord is one observed day of sales history for a product. The
// series is append-only and independent of the movement ledger; it feeds the
// forecast engine only.
type PredictorRecord struct {
	ID              uuid.UUID       `json:"id"`
	RecordDate      time.Time       `json:"record_date"`
	ProductID       uuid.UUID       `json:"product_id"`
	UnitsSold       int             `json:"units_sold"`
	AvgSalePrice    decimal.Decimal `json:"avg_sale_price"`
	PromotionActive bool            `json:"promotion_active"`
	SpecialEvent    string          `json:"special_event,omitempty"`
}

// Validate performs domain validation on the predictor record
func (r *PredictorRecord) Validate() error {
	if r.ProductID == uuid.Nil {
		return fmt.Errorf("product_id is required")
	}
	if r.RecordDate.IsZero() {
		return fmt.Errorf("record_date is required")
	}
	if r.UnitsSold < 0 {
		return fmt.Errorf("units_sold cannot be negative")
	}
	if r.AvgSalePrice.IsNegative() {
		return fmt.Errorf("avg_sale_price cannot be negative")
	}
	return nil
}

// PrepareForStorage assigns identity and truncates the record date to
// calendar-day granularity.
func (r *PredictorRecord) PrepareForStorage() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.RecordDate = r.RecordDate.Truncate(24 * time.Hour)
}
