//go:build integration
// +build integration

package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/sistemastock/stock-be/internal/adapters/db"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
	"github.com/sistemastock/stock-be/test/helpers"
)

type RepositorySuite struct {
	suite.Suite
	testDB        *helpers.TestDB
	catalogRepo   ports.CatalogRepository
	ledgerRepo    ports.LedgerRepository
	stockRepo     ports.StockRepository
	predictorRepo ports.PredictorRepository
	userRepo      ports.UserRepository
	ctx           context.Context
}

func (s *RepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	logger := helpers.TestLogger()
	s.catalogRepo = db.NewCatalogRepository(s.testDB.Database, logger)
	s.ledgerRepo = db.NewLedgerRepository(s.testDB.Database, logger)
	s.stockRepo = db.NewStockRepository(s.testDB.Database, logger)
	s.predictorRepo = db.NewPredictorRepository(s.testDB.Database, logger)
	s.userRepo = db.NewUserRepository(s.testDB.Database, logger)
	s.ctx = context.Background()
}

func (s *RepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *RepositorySuite) saveProduct(overrides ...func(*domain.Product)) *domain.Product {
	product := helpers.CreateTestProduct(overrides...)
	s.Require().NoError(s.catalogRepo.Save(s.ctx, product))
	return product
}

func (s *RepositorySuite) TestCatalog_SaveAndFind() {
	product := s.saveProduct()

	found, err := s.catalogRepo.FindByID(s.ctx, product.ProductID)
	s.NoError(err)
	s.Require().NotNil(found)
	helpers.CompareProducts(s.T(), product, found)

	bySKU, err := s.catalogRepo.FindBySKU(s.ctx, product.SKU)
	s.NoError(err)
	s.Require().NotNil(bySKU)
	s.Equal(product.ProductID, bySKU.ProductID)

	missing, err := s.catalogRepo.FindByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(missing)
}

func (s *RepositorySuite) TestCatalog_DuplicateSKU() {
	s.saveProduct(func(p *domain.Product) { p.SKU = "DUP-001" })

	dup := helpers.CreateTestProduct(func(p *domain.Product) { p.SKU = "DUP-001" })
	err := s.catalogRepo.Save(s.ctx, dup)
	s.ErrorIs(err, domain.ErrDuplicateSKU)
}

func (s *RepositorySuite) TestCatalog_UpdatePatch() {
	product := s.saveProduct()

	newName := "Renamed Product"
	newCost := decimal.NewFromInt(999)
	patch := &domain.ProductPatch{Name: &newName, Cost: &newCost}

	updated, err := s.catalogRepo.Update(s.ctx, product.ProductID, patch)
	s.NoError(err)
	s.Require().NotNil(updated)
	s.Equal(newName, updated.Name)
	s.True(newCost.Equal(updated.Cost))
	// Untouched fields survive the patch.
	s.Equal(product.SKU, updated.SKU)
	s.Equal(product.Location, updated.Location)

	_, err = s.catalogRepo.Update(s.ctx, uuid.New(), patch)
	s.ErrorIs(err, domain.ErrUnknownProduct)
}

func (s *RepositorySuite) TestCatalog_ListActiveFilter() {
	s.saveProduct(func(p *domain.Product) { p.SKU = "ACT-001"; p.Active = true })
	s.saveProduct(func(p *domain.Product) { p.SKU = "ACT-002"; p.Active = true })
	s.saveProduct(func(p *domain.Product) { p.SKU = "INA-001"; p.Active = false })

	all, err := s.catalogRepo.List(s.ctx, nil)
	s.NoError(err)
	s.Len(all, 3)

	active := true
	onlyActive, err := s.catalogRepo.List(s.ctx, &active)
	s.NoError(err)
	s.Len(onlyActive, 2)
}

func (s *RepositorySuite) TestCatalog_Delete() {
	product := s.saveProduct()

	s.NoError(s.catalogRepo.Delete(s.ctx, product.ProductID))

	exists, err := s.catalogRepo.Exists(s.ctx, product.ProductID)
	s.NoError(err)
	s.False(exists)

	s.ErrorIs(s.catalogRepo.Delete(s.ctx, product.ProductID), domain.ErrUnknownProduct)
}

func (s *RepositorySuite) TestLedger_SaveAndList() {
	product := s.saveProduct()

	for i := 0; i < 3; i++ {
		movement := helpers.CreateTestMovement(product.ProductID, func(m *domain.Movement) {
			m.Note = fmt.Sprintf("delivery %d", i+1)
		})
		s.NoError(s.ledgerRepo.Save(s.ctx, movement))
	}

	movements, err := s.ledgerRepo.List(s.ctx)
	s.NoError(err)
	s.Require().Len(movements, 3)
	s.Equal(product.Name, movements[0].ProductName)

	count, err := s.ledgerRepo.CountByProduct(s.ctx, product.ProductID)
	s.NoError(err)
	s.Equal(int64(3), count)
}

func (s *RepositorySuite) TestLedger_DeleteByProduct() {
	product := s.saveProduct()
	s.NoError(s.ledgerRepo.Save(s.ctx, helpers.CreateTestMovement(product.ProductID)))

	s.NoError(s.ledgerRepo.DeleteByProduct(s.ctx, product.ProductID))

	count, err := s.ledgerRepo.CountByProduct(s.ctx, product.ProductID)
	s.NoError(err)
	s.Zero(count)
}

func (s *RepositorySuite) TestStock_SeedAndUpsert() {
	product := s.saveProduct()

	// First read seeds a zero row.
	stock, err := s.stockRepo.GetForUpdate(s.ctx, product.ProductID)
	s.NoError(err)
	s.Require().NotNil(stock)
	s.Zero(stock.Quantity)
	s.True(stock.TotalInventoryCost.IsZero())

	stock.Apply(domain.MovementInbound, 10, decimal.NewFromInt(25))
	s.NoError(s.stockRepo.Upsert(s.ctx, stock))

	again, err := s.stockRepo.GetForUpdate(s.ctx, product.ProductID)
	s.NoError(err)
	s.Equal(10, again.Quantity)
	s.True(again.TotalInventoryCost.Equal(decimal.NewFromInt(250)))
}

func (s *RepositorySuite) TestStock_GetForUpdateInsideTransaction() {
	product := s.saveProduct()
	s.NoError(s.stockRepo.Seed(s.ctx, product.ProductID))

	err := s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		repo := s.stockRepo.WithTx(tx)
		stock, err := repo.GetForUpdate(s.ctx, product.ProductID)
		if err != nil {
			return err
		}
		stock.Apply(domain.MovementAdjustment, 42, decimal.NewFromInt(10))
		return repo.Upsert(s.ctx, stock)
	})
	s.NoError(err)

	stock, err := s.stockRepo.GetForUpdate(s.ctx, product.ProductID)
	s.NoError(err)
	s.Equal(42, stock.Quantity)
}

func (s *RepositorySuite) TestStock_Snapshot() {
	first := s.saveProduct(func(p *domain.Product) { p.SKU = "SNP-001"; p.Name = "Alpha" })
	second := s.saveProduct(func(p *domain.Product) { p.SKU = "SNP-002"; p.Name = "Beta" })
	s.NoError(s.stockRepo.Seed(s.ctx, first.ProductID))
	s.NoError(s.stockRepo.Seed(s.ctx, second.ProductID))

	rows, err := s.stockRepo.Snapshot(s.ctx)
	s.NoError(err)
	s.Require().Len(rows, 2)
	// Ordered by product name.
	s.Equal("Alpha", rows[0].ProductName)
	s.Equal("Beta", rows[1].ProductName)
	s.Equal("SNP-001", rows[0].SKU)
}

func (s *RepositorySuite) TestPredictor_SaveBatchAndFind() {
	product := s.saveProduct()
	records := helpers.CreateTestPredictorRecords(product.ProductID, 7, 5, 2)

	s.NoError(s.predictorRepo.SaveBatch(s.ctx, records))

	found, err := s.predictorRepo.FindByProduct(s.ctx, product.ProductID)
	s.NoError(err)
	s.Require().Len(found, 7)
	// Ascending by record date.
	for i := 1; i < len(found); i++ {
		s.True(found[i].RecordDate.After(found[i-1].RecordDate))
	}
}

func (s *RepositorySuite) TestUsers_SaveAndFind() {
	user := &domain.User{Username: "maria", PasswordHash: "x", Role: domain.RoleAdmin}
	user.PrepareForStorage()
	s.NoError(s.userRepo.Save(s.ctx, user))

	found, err := s.userRepo.FindByUsername(s.ctx, "maria")
	s.NoError(err)
	s.Require().NotNil(found)
	s.Equal(user.UserID, found.UserID)

	dup := &domain.User{Username: "maria", PasswordHash: "y", Role: domain.RoleUser}
	dup.PrepareForStorage()
	s.ErrorIs(s.userRepo.Save(s.ctx, dup), domain.ErrUserExists)

	missing, err := s.userRepo.FindByUsername(s.ctx, "nobody")
	s.NoError(err)
	s.Nil(missing)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}
