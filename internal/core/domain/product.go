// internal/core/domain/product.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitOfMeasure represents how product quantities are counted
type UnitOfMeasure string

// Unit constants
const (
	UnitPiece UnitOfMeasure = "piece"
	UnitBox   UnitOfMeasure = "box"
	UnitKg    UnitOfMeasure = "kg"
	UnitLiter UnitOfMeasure = "liter"
	UnitPack  UnitOfMeasure = "pack"
	UnitMeter UnitOfMeasure = "meter"
)

// ProductCategory represents product categories
type ProductCategory string

// Category constants
const (
	CategoryBeverages     ProductCategory = "beverages"
	CategoryDairy         ProductCategory = "dairy"
	CategoryDryGoods      ProductCategory = "dry_goods"
	CategoryFrozen        ProductCategory = "frozen"
	CategoryHousehold     ProductCategory = "household"
	CategoryPersonal      ProductCategory = "personal_care"
	CategoryProduce       ProductCategory = "produce"
	CategorySnacks        ProductCategory = "snacks"
	CategoryStationery    ProductCategory = "stationery"
	CategoryUncategorized ProductCategory = "uncategorized"
)

// Product represents a catalog entry. SKUs are unique across the catalog.
type Product struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	UnitOfMeasure UnitOfMeasure   `json:"unit_of_measure"`
	Cost          decimal.Decimal `json:"cost"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Category      ProductCategory `json:"category,omitempty"`
	Location      string          `json:"location,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductPatch carries a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name          *string          `json:"name,omitempty"`
	SKU           *string          `json:"sku,omitempty"`
	UnitOfMeasure *UnitOfMeasure   `json:"unit_of_measure,omitempty"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	Category      *ProductCategory `json:"category,omitempty"`
	Location      *string          `json:"location,omitempty"`
	Active        *bool            `json:"active,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.SKU == nil && p.UnitOfMeasure == nil &&
		p.Cost == nil && p.SalePrice == nil && p.Category == nil &&
		p.Location == nil && p.Active == nil
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if p.Cost.IsNegative() {
		return fmt.Errorf("cost cannot be negative")
	}
	if p.SalePrice.IsNegative() {
		return fmt.Errorf("sale_price cannot be negative")
	}
	if p.UnitOfMeasure == "" {
		p.UnitOfMeasure = UnitPiece
	}
	if p.Category == "" {
		p.Category = CategoryUncategorized
	}
	return nil
}

// PrepareForStorage prepares the product for database storage
func (p *Product) PrepareForStorage() {
	if p.ProductID == uuid.Nil {
		p.ProductID = uuid.New()
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
