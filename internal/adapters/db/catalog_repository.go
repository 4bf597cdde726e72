// internal/adapters/db/catalog_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// catalogRepository implements ports.CatalogRepository
type catalogRepository struct {
	q      ports.Querier
	logger *slog.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *Database, logger *slog.Logger) ports.CatalogRepository {
	return &catalogRepository{
		q:      db,
		logger: logger.With(slog.String("repository", "catalog")),
	}
}

// WithTx returns a copy of the repository running on the given transaction.
func (r *catalogRepository) WithTx(tx pgx.Tx) ports.CatalogRepository {
	return &catalogRepository{q: tx, logger: r.logger}
}

const productColumns = `product_id, name, sku, unit_of_measure, cost, sale_price,
		category, location, active, created_at, updated_at`

// Save inserts a new product
func (r *catalogRepository) Save(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			product_id, name, sku, unit_of_measure, cost, sale_price,
			category, location, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := r.q.Exec(ctx, query,
		product.ProductID, product.Name, product.SKU, product.UnitOfMeasure,
		product.Cost, product.SalePrice, product.Category, product.Location,
		product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("sku %q: %w", product.SKU, domain.ErrDuplicateSKU)
		}
		return fmt.Errorf("failed to save product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.String("product_id", product.ProductID.String()),
		slog.String("sku", product.SKU))

	return nil
}

// Update applies a partial update and returns the resulting row. Only
// non-nil patch fields are written.
func (r *catalogRepository) Update(ctx context.Context, productID uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	qb := squirrel.Update("products").
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"product_id": productID}).
		Suffix("RETURNING " + productColumns).
		PlaceholderFormat(squirrel.Dollar)

	if patch.Name != nil {
		qb = qb.Set("name", *patch.Name)
	}
	if patch.SKU != nil {
		qb = qb.Set("sku", *patch.SKU)
	}
	if patch.UnitOfMeasure != nil {
		qb = qb.Set("unit_of_measure", *patch.UnitOfMeasure)
	}
	if patch.Cost != nil {
		qb = qb.Set("cost", *patch.Cost)
	}
	if patch.SalePrice != nil {
		qb = qb.Set("sale_price", *patch.SalePrice)
	}
	if patch.Category != nil {
		qb = qb.Set("category", *patch.Category)
	}
	if patch.Location != nil {
		qb = qb.Set("location", *patch.Location)
	}
	if patch.Active != nil {
		qb = qb.Set("active", *patch.Active)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	product, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("product %s: %w", productID, domain.ErrUnknownProduct)
		}
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("sku conflict: %w", domain.ErrDuplicateSKU)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	r.logger.DebugContext(ctx, "product updated",
		slog.String("product_id", productID.String()))

	return product, nil
}

// FindByID retrieves a product by ID. Returns nil when not found.
func (r *catalogRepository) FindByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	product, err := scanProduct(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// FindBySKU retrieves a product by SKU. Returns nil when not found.
func (r *catalogRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`

	product, err := scanProduct(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by sku: %w", err)
	}

	return product, nil
}

// List retrieves catalog products, optionally filtered on the active flag
func (r *catalogRepository) List(ctx context.Context, activeOnly *bool) ([]domain.Product, error) {
	qb := squirrel.Select(
		"product_id", "name", "sku", "unit_of_measure", "cost", "sale_price",
		"category", "location", "active", "created_at", "updated_at",
	).From("products").
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if activeOnly != nil {
		qb = qb.Where(squirrel.Eq{"active": *activeOnly})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// Delete performs a hard delete of the product row only. Cascading to
// movements and stock is the service's responsibility.
func (r *catalogRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	query := `DELETE FROM products WHERE product_id = $1`

	tag, err := r.q.Exec(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, domain.ErrUnknownProduct)
	}

	r.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", productID.String()))

	return nil
}

// Exists checks if a product exists
func (r *catalogRepository) Exists(ctx context.Context, productID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE product_id = $1)`

	var exists bool
	err := r.q.QueryRow(ctx, query, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return exists, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	product := &domain.Product{}
	var location sql.NullString

	err := row.Scan(
		&product.ProductID, &product.Name, &product.SKU, &product.UnitOfMeasure,
		&product.Cost, &product.SalePrice, &product.Category, &location,
		&product.Active, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Location = location.String
	return product, nil
}
