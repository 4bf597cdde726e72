// cmd/seeder/main.go
//
// Seeds the database with default accounts and demo catalog data so a fresh
// environment is usable immediately: two users (admin/admin123 and
// user/user123), a small grocery catalog, opening stock movements and a few
// weeks of sales history for the forecaster.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type seedProduct struct {
	Name          string
	SKU           string
	UnitOfMeasure string
	Cost          decimal.Decimal
	SalePrice     decimal.Decimal
	Category      string
	Location      string
	OpeningStock  int
	DailySales    int // baseline units sold per day for history
}

func seedCatalog() []seedProduct {
	price := func(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

	return []seedProduct{
		{"Yerba Mate Rosamonte 1kg", "YRB-001", "piece", price(1250.50), price(1890.00), "dry_goods", "Depósito A, estante 3", 120, 9},
		{"Yerba Mate Taragüí 500g", "YRB-002", "piece", price(720.00), price(1100.00), "dry_goods", "Depósito A, estante 3", 80, 6},
		{"Leche Entera La Serenísima 1L", "LCH-001", "liter", price(450.00), price(690.00), "dairy", "Cámara fría 1", 200, 24},
		{"Queso Cremoso Sancor kg", "QSO-001", "kg", price(3200.00), price(4850.00), "dairy", "Cámara fría 1", 35, 3},
		{"Gaseosa Cola 2.25L", "GAS-001", "piece", price(980.00), price(1550.00), "beverages", "Depósito B, estante 1", 150, 14},
		{"Agua Mineral 2L", "AGU-001", "piece", price(380.00), price(620.00), "beverages", "Depósito B, estante 1", 180, 18},
		{"Detergente Magistral 750ml", "DET-001", "piece", price(850.00), price(1320.00), "household", "Depósito C, estante 2", 90, 5},
		{"Lavandina Ayudín 1L", "LAV-001", "liter", price(420.00), price(680.00), "household", "Depósito C, estante 2", 110, 4},
		{"Shampoo Sedal 400ml", "SHP-001", "piece", price(1100.00), price(1790.00), "personal_care", "Depósito C, estante 4", 60, 3},
		{"Papas Fritas Lays 150g", "SNK-001", "pack", price(750.00), price(1250.00), "snacks", "Depósito B, estante 3", 95, 11},
		{"Cuaderno Rivadavia 48 hojas", "CUA-001", "piece", price(900.00), price(1450.00), "stationery", "Depósito D, estante 1", 50, 2},
		{"Banana Ecuador kg", "BAN-001", "kg", price(650.00), price(1100.00), "produce", "Góndola frutas", 40, 16},
	}
}

func main() {
	var (
		historyDays = flag.Int("history-days", 45, "Days of sales history to generate per product")
		dryRun      = flag.Bool("dry-run", false, "Preview changes without modifying database")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "stock"),
		getEnv("DB_PASSWORD", "stock_dev_2025"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "stock_inventory"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	if *dryRun {
		catalog := seedCatalog()
		fmt.Printf("[DRY RUN] Would create 2 users, %d products and ~%d sales records\n",
			len(catalog), len(catalog)**historyDays)
		return
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	seeder := &seeder{db: pool, logger: logger}

	if err := seeder.seedUsers(ctx); err != nil {
		logger.Error("failed to seed users", slog.String("error", err.Error()))
		os.Exit(1)
	}

	productIDs, err := seeder.seedProducts(ctx, seedCatalog())
	if err != nil {
		logger.Error("failed to seed products", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := seeder.seedSalesHistory(ctx, seedCatalog(), productIDs, *historyDays); err != nil {
		logger.Error("failed to seed sales history", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed completed",
		slog.Int("products", len(productIDs)),
		slog.Int("history_days", *historyDays))

	fmt.Println("Usuarios creados:")
	fmt.Println("Admin: admin / admin123")
	fmt.Println("User:  user / user123")
}

type seeder struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// seedUsers inserts the default accounts, skipping any username that exists.
func (s *seeder) seedUsers(ctx context.Context) error {
	accounts := []struct {
		username string
		password string
		role     string
	}{
		{"admin", "admin123", "admin"},
		{"user", "user123", "user"},
	}

	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", a.username, err)
		}

		tag, err := s.db.Exec(ctx, `
			INSERT INTO users (user_id, username, password_hash, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (username) DO NOTHING`,
			uuid.New(), a.username, string(hash), a.role,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", a.username, err)
		}

		if tag.RowsAffected() > 0 {
			s.logger.Info("user created", slog.String("username", a.username), slog.String("role", a.role))
		} else {
			s.logger.Info("user already exists, skipped", slog.String("username", a.username))
		}
	}

	return nil
}

// seedProducts inserts the demo catalog with an opening inbound movement and
// the matching stock projection, all in one transaction per product.
func (s *seeder) seedProducts(ctx context.Context, catalog []seedProduct) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(catalog))

	for _, p := range catalog {
		// Skip products that are already present.
		var existing uuid.UUID
		err := s.db.QueryRow(ctx, `SELECT product_id FROM products WHERE sku = $1`, p.SKU).Scan(&existing)
		if err == nil {
			ids[p.SKU] = existing
			continue
		}
		if err != pgx.ErrNoRows {
			return nil, fmt.Errorf("failed to check sku %s: %w", p.SKU, err)
		}

		productID := uuid.New()

		tx, err := s.db.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO products (product_id, name, sku, unit_of_measure, cost, sale_price, category, location, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)`,
			productID, p.Name, p.SKU, p.UnitOfMeasure, p.Cost, p.SalePrice, p.Category, p.Location,
		)
		batch.Queue(`
			INSERT INTO movements (movement_id, product_id, movement_type, quantity, order_ref, note)
			VALUES ($1, $2, 'inbound', $3, $4, 'stock inicial')`,
			uuid.New(), productID, p.OpeningStock, fmt.Sprintf("SEED-%s", p.SKU),
		)
		batch.Queue(`
			INSERT INTO current_stock (product_id, quantity, total_inventory_cost)
			VALUES ($1, $2, $3)`,
			productID, p.OpeningStock, p.Cost.Mul(decimal.NewFromInt(int64(p.OpeningStock))),
		)

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < 3; i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				tx.Rollback(ctx)
				return nil, fmt.Errorf("failed to insert product %s: %w", p.SKU, err)
			}
		}
		if err := br.Close(); err != nil {
			tx.Rollback(ctx)
			return nil, fmt.Errorf("failed to close batch: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit product %s: %w", p.SKU, err)
		}

		ids[p.SKU] = productID
		s.logger.Info("product created",
			slog.String("sku", p.SKU),
			slog.String("name", p.Name),
			slog.Int("opening_stock", p.OpeningStock))
	}

	return ids, nil
}

// seedSalesHistory generates daily sales records per product: baseline units
// with mild noise, weekend bumps and occasional promotions, trending slightly
// upward so forecasts have a slope to find.
func (s *seeder) seedSalesHistory(ctx context.Context, catalog []seedProduct, ids map[string]uuid.UUID, days int) error {
	rng := rand.New(rand.NewSource(42))
	today := time.Now().Truncate(24 * time.Hour)

	batch := &pgx.Batch{}
	queued := 0

	for _, p := range catalog {
		productID, ok := ids[p.SKU]
		if !ok {
			continue
		}

		for d := days; d > 0; d-- {
			date := today.AddDate(0, 0, -d)

			units := p.DailySales + rng.Intn(p.DailySales+1) - p.DailySales/2
			// Gentle growth towards the present.
			units += (days - d) / 15
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				units += p.DailySales / 3
			}

			promotion := rng.Float64() < 0.1
			specialEvent := ""
			if promotion {
				units += p.DailySales / 2
				specialEvent = "promo semanal"
			}
			if units < 0 {
				units = 0
			}

			price := p.SalePrice
			if promotion {
				price = p.SalePrice.Mul(decimal.NewFromFloat(0.85)).Round(2)
			}

			batch.Queue(`
				INSERT INTO predictor_records (id, record_date, product_id, units_sold, avg_sale_price, promotion_active, special_event)
				VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
				uuid.New(), date, productID, units, price, promotion, specialEvent,
			)
			queued++
		}
	}

	br := s.db.SendBatch(ctx, batch)
	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert sales record: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	s.logger.Info("sales history created", slog.Int("records", queued))
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
