package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemastock/stock-be/internal/core/domain"
)

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name      string
		product   *domain.Product
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid_product_with_all_fields",
			product: &domain.Product{
				Name:          "Whole Milk 1L",
				SKU:           "MILK-1L",
				UnitOfMeasure: domain.UnitLiter,
				Cost:          decimal.NewFromFloat(0.80),
				SalePrice:     decimal.NewFromFloat(1.25),
				Category:      domain.CategoryDairy,
			},
			wantError: false,
		},
		{
			name: "missing_name",
			product: &domain.Product{
				SKU:  "MILK-1L",
				Cost: decimal.NewFromFloat(0.80),
			},
			wantError: true,
			errorMsg:  "name is required",
		},
		{
			name: "missing_sku",
			product: &domain.Product{
				Name: "Whole Milk 1L",
				Cost: decimal.NewFromFloat(0.80),
			},
			wantError: true,
			errorMsg:  "sku is required",
		},
		{
			name: "negative_cost",
			product: &domain.Product{
				Name: "Whole Milk 1L",
				SKU:  "MILK-1L",
				Cost: decimal.NewFromFloat(-1),
			},
			wantError: true,
			errorMsg:  "cost cannot be negative",
		},
		{
			name: "negative_sale_price",
			product: &domain.Product{
				Name:      "Whole Milk 1L",
				SKU:       "MILK-1L",
				SalePrice: decimal.NewFromFloat(-0.5),
			},
			wantError: true,
			errorMsg:  "sale_price cannot be negative",
		},
		{
			name: "sets_default_unit_when_empty",
			product: &domain.Product{
				Name: "Whole Milk 1L",
				SKU:  "MILK-1L",
			},
			wantError: false,
		},
		{
			name: "sets_default_category_when_empty",
			product: &domain.Product{
				Name:     "Whole Milk 1L",
				SKU:      "MILK-1L",
				Category: "",
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()

			if tt.wantError {
				require.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				require.NoError(t, err)

				if tt.name == "sets_default_unit_when_empty" {
					assert.Equal(t, domain.UnitPiece, tt.product.UnitOfMeasure)
				}
				if tt.name == "sets_default_category_when_empty" {
					assert.Equal(t, domain.CategoryUncategorized, tt.product.Category)
				}
			}
		})
	}
}

func TestProduct_PrepareForStorage(t *testing.T) {
	t.Run("generates_uuid_when_nil", func(t *testing.T) {
		product := &domain.Product{ProductID: uuid.Nil}

		product.PrepareForStorage()

		assert.NotEqual(t, uuid.Nil, product.ProductID)
		assert.NotZero(t, product.CreatedAt)
		assert.NotZero(t, product.UpdatedAt)
	})

	t.Run("preserves_existing_uuid", func(t *testing.T) {
		existingID := uuid.New()
		product := &domain.Product{ProductID: existingID}

		product.PrepareForStorage()

		assert.Equal(t, existingID, product.ProductID)
	})

	t.Run("sets_timestamps", func(t *testing.T) {
		product := &domain.Product{}
		now := time.Now()

		product.PrepareForStorage()

		assert.WithinDuration(t, now, product.CreatedAt, time.Second)
		assert.WithinDuration(t, now, product.UpdatedAt, time.Second)
	})
}

func TestProductPatch_IsEmpty(t *testing.T) {
	assert.True(t, (&domain.ProductPatch{}).IsEmpty())

	name := "Renamed"
	assert.False(t, (&domain.ProductPatch{Name: &name}).IsEmpty())

	active := false
	assert.False(t, (&domain.ProductPatch{Active: &active}).IsEmpty())
}
