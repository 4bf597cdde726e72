// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
	"github.com/sistemastock/stock-be/test/helpers"
)

// memCatalog is an in-memory CatalogRepository so regression benchmarks
// measure the fit itself, not database round trips.
type memCatalog struct {
	mu       sync.RWMutex
	products map[uuid.UUID]domain.Product
}

func newMemCatalog(products []domain.Product) *memCatalog {
	m := &memCatalog{products: make(map[uuid.UUID]domain.Product, len(products))}
	for _, p := range products {
		m.products[p.ProductID] = p
	}
	return m
}

func (m *memCatalog) Save(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ProductID] = *product
	return nil
}

func (m *memCatalog) Update(ctx context.Context, productID uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, domain.ErrUnknownProduct
	}
	return &p, nil
}

func (m *memCatalog) FindByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, domain.ErrUnknownProduct
	}
	return &p, nil
}

func (m *memCatalog) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, domain.ErrUnknownProduct
}

func (m *memCatalog) List(ctx context.Context, activeOnly *bool) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if activeOnly != nil && *activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memCatalog) Delete(ctx context.Context, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, productID)
	return nil
}

func (m *memCatalog) Exists(ctx context.Context, productID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.products[productID]
	return ok, nil
}

func (m *memCatalog) WithTx(tx pgx.Tx) ports.CatalogRepository {
	return m
}

// memPredictor is an in-memory PredictorRepository holding a fixed history
// per product.
type memPredictor struct {
	mu      sync.RWMutex
	history map[uuid.UUID][]domain.PredictorRecord
}

func newMemPredictor() *memPredictor {
	return &memPredictor{history: make(map[uuid.UUID][]domain.PredictorRecord)}
}

func (m *memPredictor) Save(ctx context.Context, record *domain.PredictorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[record.ProductID] = append(m.history[record.ProductID], *record)
	return nil
}

func (m *memPredictor) SaveBatch(ctx context.Context, records []domain.PredictorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.history[r.ProductID] = append(m.history[r.ProductID], r)
	}
	return nil
}

func (m *memPredictor) FindByProduct(ctx context.Context, productID uuid.UUID) ([]domain.PredictorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history[productID], nil
}

// seedForecastFixtures builds a catalog of numProducts products, each with
// historyDays of linearly growing sales history.
func seedForecastFixtures(numProducts, historyDays int) (*memCatalog, *memPredictor) {
	products := helpers.CreateTestProducts(numProducts)
	catalog := newMemCatalog(products)
	predictor := newMemPredictor()

	for i, p := range products {
		records := helpers.CreateTestPredictorRecords(p.ProductID, historyDays, 10+i, 1+i%3)
		predictor.history[p.ProductID] = records
	}

	return catalog, predictor
}
