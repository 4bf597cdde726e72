package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

func TestCurrentStock_Apply(t *testing.T) {
	cost := decimal.NewFromInt(10)

	tests := []struct {
		name         string
		start        int
		movementType domain.MovementType
		quantity     int
		wantQuantity int
		wantCost     decimal.Decimal
	}{
		{
			name:         "inbound_adds",
			start:        0,
			movementType: domain.MovementInbound,
			quantity:     50,
			wantQuantity: 50,
			wantCost:     decimal.NewFromInt(500),
		},
		{
			name:         "outbound_subtracts",
			start:        50,
			movementType: domain.MovementOutbound,
			quantity:     20,
			wantQuantity: 30,
			wantCost:     decimal.NewFromInt(300),
		},
		{
			name:         "adjustment_sets_absolute_level",
			start:        30,
			movementType: domain.MovementAdjustment,
			quantity:     100,
			wantQuantity: 100,
			wantCost:     decimal.NewFromInt(1000),
		},
		{
			name:         "outbound_may_overdraw",
			start:        5,
			movementType: domain.MovementOutbound,
			quantity:     8,
			wantQuantity: -3,
			wantCost:     decimal.NewFromInt(-30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := &domain.CurrentStock{Quantity: tt.start}

			stock.Apply(tt.movementType, tt.quantity, cost)

			assert.Equal(t, tt.wantQuantity, stock.Quantity)
			assert.True(t, stock.TotalInventoryCost.Equal(tt.wantCost),
				"expected cost %s, got %s", tt.wantCost, stock.TotalInventoryCost)
			assert.NotZero(t, stock.LastUpdated)
		})
	}
}

func TestCurrentStock_Apply_Sequence(t *testing.T) {
	// The create/inbound/outbound/adjustment walkthrough at unit cost 10.
	cost := decimal.NewFromInt(10)
	stock := &domain.CurrentStock{}

	stock.Apply(domain.MovementInbound, 50, cost)
	require.Equal(t, 50, stock.Quantity)
	require.True(t, stock.TotalInventoryCost.Equal(decimal.NewFromInt(500)))

	stock.Apply(domain.MovementOutbound, 20, cost)
	require.Equal(t, 30, stock.Quantity)
	require.True(t, stock.TotalInventoryCost.Equal(decimal.NewFromInt(300)))

	stock.Apply(domain.MovementAdjustment, 100, cost)
	require.Equal(t, 100, stock.Quantity)
	require.True(t, stock.TotalInventoryCost.Equal(decimal.NewFromInt(1000)))
}

func TestMovementType_IsValid(t *testing.T) {
	assert.True(t, domain.MovementInbound.IsValid())
	assert.True(t, domain.MovementOutbound.IsValid())
	assert.True(t, domain.MovementAdjustment.IsValid())
	assert.False(t, domain.MovementType("transfer").IsValid())
	assert.False(t, domain.MovementType("").IsValid())
}
