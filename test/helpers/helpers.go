// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sistemastock/stock-be/internal/adapters/db"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_stock",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_stock",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	// Run migrations
	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_stock",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Forecast: config.ForecastConfig{
			HorizonDays:   30,
			MinDataPoints: 5,
			CacheTTL:      15 * time.Minute,
			Concurrency:   4,
		},
		FileProcessing: config.FileProcessingConfig{
			ExcelMaxSizeMB:    50,
			ProcessingTimeout: 5 * time.Minute,
			TempDir:           "/tmp",
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret",
			JWTExpiration:     24 * time.Hour,
			BcryptCost:        10,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestProduct creates a catalog product for tests
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	product := &domain.Product{
		ProductID:     uuid.New(),
		Name:          "Yerba Mate Rosamonte 1kg",
		SKU:           "YRB-001",
		UnitOfMeasure: domain.UnitPiece,
		Cost:          decimal.NewFromFloat(1250.50),
		SalePrice:     decimal.NewFromFloat(1890.00),
		Category:      domain.CategoryDryGoods,
		Location:      "Depósito A, estante 3",
		Active:        true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	for _, override := range overrides {
		override(product)
	}

	return product
}

// CreateTestProducts creates multiple catalog products
func CreateTestProducts(count int) []domain.Product {
	categories := []domain.ProductCategory{
		domain.CategoryDryGoods,
		domain.CategoryBeverages,
		domain.CategoryHousehold,
		domain.CategoryStationery,
	}

	units := []domain.UnitOfMeasure{
		domain.UnitPiece,
		domain.UnitBox,
		domain.UnitKg,
		domain.UnitLiter,
	}

	products := make([]domain.Product, count)
	for i := 0; i < count; i++ {
		products[i] = *CreateTestProduct(func(p *domain.Product) {
			p.Name = fmt.Sprintf("Test Product %d", i+1)
			p.SKU = fmt.Sprintf("TST-%03d", i+1)
			p.Category = categories[i%len(categories)]
			p.UnitOfMeasure = units[i%len(units)]
			p.Cost = decimal.NewFromInt(int64(100 + i*50))
			p.SalePrice = decimal.NewFromInt(int64(150 + i*75))
		})
	}

	return products
}

// CreateTestMovement creates a ledger movement for tests
func CreateTestMovement(productID uuid.UUID, overrides ...func(*domain.Movement)) *domain.Movement {
	movement := &domain.Movement{
		MovementID:   uuid.New(),
		ProductID:    productID,
		MovementType: domain.MovementInbound,
		Quantity:     10,
		Note:         "supplier delivery",
		OccurredAt:   time.Now(),
	}

	for _, override := range overrides {
		override(movement)
	}

	return movement
}

// CreateTestPredictorRecords creates daily sales records ending today,
// one per day, with linearly growing units sold.
func CreateTestPredictorRecords(productID uuid.UUID, days int, baseUnits, dailyGrowth int) []domain.PredictorRecord {
	records := make([]domain.PredictorRecord, days)
	start := time.Now().AddDate(0, 0, -(days - 1))

	for i := 0; i < days; i++ {
		records[i] = domain.PredictorRecord{
			ID:           uuid.New(),
			RecordDate:   start.AddDate(0, 0, i),
			ProductID:    productID,
			UnitsSold:    baseUnits + i*dailyGrowth,
			AvgSalePrice: decimal.NewFromInt(1500),
		}
	}

	return records
}

// CompareProducts compares two catalog products for testing
func CompareProducts(t *testing.T, expected, actual *domain.Product) {
	t.Helper()

	require.Equal(t, expected.Name, actual.Name)
	require.Equal(t, expected.SKU, actual.SKU)
	require.Equal(t, expected.UnitOfMeasure, actual.UnitOfMeasure)
	require.Equal(t, expected.Category, actual.Category)
	require.Equal(t, expected.Location, actual.Location)
	require.Equal(t, expected.Active, actual.Active)
	require.True(t, expected.Cost.Equal(actual.Cost))
	require.True(t, expected.SalePrice.Equal(actual.SalePrice))
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"predictor_records",
		"movements",
		"current_stock",
		"products",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedTestProducts seeds the database with catalog products
func SeedTestProducts(t *testing.T, db *pgxpool.Pool, products []domain.Product) {
	t.Helper()

	ctx := context.Background()

	for _, p := range products {
		query := `
			INSERT INTO products (
				product_id, name, sku, unit_of_measure, cost, sale_price,
				category, location, active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`

		_, err := db.Exec(ctx, query,
			p.ProductID, p.Name, p.SKU, p.UnitOfMeasure, p.Cost, p.SalePrice,
			p.Category, p.Location, p.Active, p.CreatedAt, p.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed test product")

		_, err = db.Exec(ctx,
			`INSERT INTO current_stock (product_id, quantity, total_inventory_cost, last_updated)
			 VALUES ($1, 0, 0, NOW()) ON CONFLICT (product_id) DO NOTHING`,
			p.ProductID,
		)
		require.NoError(t, err, "Failed to seed stock row")
	}
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
