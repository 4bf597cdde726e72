// internal/core/domain/forecast.go
package domain

import "github.com/google/uuid"

// Trend labels the direction of a fitted sales line
type Trend string

// Trend constants
const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendUnknown    Trend = "unknown"
)

// MinForecastPoints is the hard minimum of history points required before a
// regression is attempted.
const MinForecastPoints = 5

// ForecastHorizonDays is how far past today the demand line is projected.
const ForecastHorizonDays = 30

// Messages reported in place of a numeric prediction.
const (
	MsgInsufficientData = "insufficient data"
	MsgNumericFit       = "numeric fit failed"
)

// Forecast is the per-product output of the regression engine. Exactly one of
// Prediction or Message is meaningful: sentinel results carry Message with
// zero confidence.
type Forecast struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Prediction  int       `json:"prediction"`
	Message     string    `json:"message,omitempty"`
	Trend       Trend     `json:"trend"`
	Confidence  float64   `json:"confidence"`
	DataPoints  int       `json:"data_points"`
}

// IsSentinel reports whether the forecast carries a message instead of a
// numeric prediction.
func (f *Forecast) IsSentinel() bool {
	return f.Message != ""
}

// InsufficientForecast builds the sentinel returned when a product has fewer
// than MinForecastPoints history rows.
func InsufficientForecast(productID uuid.UUID, name string, points int) *Forecast {
	return &Forecast{
		ProductID:   productID,
		ProductName: name,
		Message:     MsgInsufficientData,
		Trend:       TrendUnknown,
		Confidence:  0,
		DataPoints:  points,
	}
}

// NumericFitForecast builds the sentinel returned when the regression produced
// a non-finite result for this product.
func NumericFitForecast(productID uuid.UUID, name string, points int) *Forecast {
	return &Forecast{
		ProductID:   productID,
		ProductName: name,
		Message:     MsgNumericFit,
		Trend:       TrendUnknown,
		Confidence:  0,
		DataPoints:  points,
	}
}
