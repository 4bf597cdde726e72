// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/sistemastock/stock-be/internal/adapters/db"
	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/adapters/storage"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
	"github.com/sistemastock/stock-be/internal/core/services"
	"github.com/sistemastock/stock-be/internal/handlers"
	"github.com/sistemastock/stock-be/internal/handlers/middleware"
	"github.com/sistemastock/stock-be/internal/pkg/config"
	"github.com/sistemastock/stock-be/internal/pkg/logger"
	"github.com/sistemastock/stock-be/internal/pkg/security"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting stock inventory system",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := config.ValidateForEnvironment(cfg); err != nil {
		slogger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Run database migrations if enabled
	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		if deps.asynqClient != nil {
			if err := deps.asynqClient.Close(); err != nil {
				slogger.Error("failed to close Asynq client", slog.String("error", err.Error()))
			}
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	redisCache     ports.CacheRepository
	cacheManager   *redis_a.CacheManager
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	tokenManager   *security.TokenManager

	catalogHandler   *handlers.CatalogHandler
	ledgerHandler    *handlers.LedgerHandler
	forecastHandler  *handlers.ForecastHandler
	predictorHandler *handlers.PredictorHandler
	authHandler      *handlers.AuthHandler
	healthHandler    *handlers.HealthHandler
	dashboardHandler *handlers.DashboardHandler
	exportHandler    *handlers.ExportHandler
	importHandler    *handlers.ImportHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	slogger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	slogger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxLifetime: cfg.Redis.MaxConnAge,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		ConnMaxIdleTime: cfg.Redis.IdleTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)
	deps.cacheManager = redis_a.NewCacheManager(deps.redisCache, slogger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	deps.tokenManager = security.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)

	archive := setupArchiveStore(ctx, cfg, slogger)

	// Repositories
	catalogRepo := db.NewCatalogRepository(database, slogger)
	ledgerRepo := db.NewLedgerRepository(database, slogger)
	stockRepo := db.NewStockRepository(database, slogger)
	predictorRepo := db.NewPredictorRepository(database, slogger)
	userRepo := db.NewUserRepository(database, slogger)

	// Services
	catalogService := services.NewCatalogService(catalogRepo, ledgerRepo, stockRepo, database, slogger)
	ledgerService := services.NewLedgerService(catalogRepo, ledgerRepo, stockRepo, database, slogger)
	forecastService := services.NewForecastService(catalogRepo, predictorRepo, slogger)
	authService := services.NewAuthService(userRepo, deps.tokenManager, slogger)

	// Handlers
	deps.catalogHandler = handlers.NewCatalogHandler(catalogService, deps.redisCache, deps.cacheManager, slogger)
	deps.ledgerHandler = handlers.NewLedgerHandler(ledgerService, deps.redisCache, deps.cacheManager, slogger)
	deps.forecastHandler = handlers.NewForecastHandler(forecastService, deps.redisCache, cfg.Forecast.CacheTTL, slogger)
	deps.predictorHandler = handlers.NewPredictorHandler(forecastService, deps.cacheManager, slogger)
	deps.authHandler = handlers.NewAuthHandler(authService, slogger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg, slogger)
	deps.dashboardHandler = handlers.NewDashboardHandler(database, deps.redisCache, slogger)
	deps.exportHandler = handlers.NewExportHandler(ledgerService, archive, deps.redisCache, slogger)

	maxFileSize := int64(cfg.FileProcessing.ExcelMaxSizeMB) * 1024 * 1024
	deps.importHandler = handlers.NewImportHandler(deps.asynqClient, deps.redisCache, slogger, maxFileSize, cfg.FileProcessing.TempDir)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

// setupArchiveStore picks S3 when a bucket is configured; development falls
// back to a local directory so exports can still be archived.
func setupArchiveStore(ctx context.Context, cfg *config.Config, slogger *slog.Logger) storage.ArchiveStore {
	if cfg.AWS.S3Bucket == "" {
		slogger.Info("no archive bucket configured, export archiving disabled")
		return nil
	}

	store, err := storage.NewS3Store(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, slogger)
	if err != nil {
		if cfg.IsDevelopment() {
			slogger.Warn("S3 unavailable, archiving exports to local disk",
				slog.String("error", err.Error()))
			return storage.NewLocalStore("archives", slogger)
		}
		slogger.Error("failed to initialize archive store", slog.String("error", err.Error()))
		return nil
	}

	return store
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	var handler http.Handler = mux

	// Apply middleware in reverse order (innermost first)
	handler = middleware.Compression(handler)
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)

	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(slogger)(handler)
		handler = middleware.Recovery(slogger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	registerRoutes(mux, deps, cfg)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	auth := middleware.Authenticate(deps.tokenManager)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(adminOnly(h))
	}

	// Health and readiness endpoints
	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Auth endpoints
	mux.HandleFunc("POST "+apiV1+"/auth/register", deps.authHandler.Register)
	mux.HandleFunc("POST "+apiV1+"/auth/login", deps.authHandler.Login)

	// Catalog endpoints
	mux.Handle("GET "+apiV1+"/products", protected(deps.catalogHandler.ListProducts))
	mux.Handle("GET "+apiV1+"/products/{id}", protected(deps.catalogHandler.GetProduct))
	mux.Handle("POST "+apiV1+"/products", protected(deps.catalogHandler.CreateProduct))
	mux.Handle("PATCH "+apiV1+"/products/{id}", protected(deps.catalogHandler.UpdateProduct))
	mux.Handle("DELETE "+apiV1+"/products/{id}", admin(deps.catalogHandler.DeleteProduct))

	// Movement ledger and stock endpoints
	mux.Handle("POST "+apiV1+"/movements", protected(deps.ledgerHandler.RecordMovement))
	mux.Handle("GET "+apiV1+"/movements", protected(deps.ledgerHandler.ListMovements))
	mux.Handle("GET "+apiV1+"/stock", protected(deps.ledgerHandler.GetStock))

	// Forecast endpoints
	mux.Handle("GET "+apiV1+"/forecasts", protected(deps.forecastHandler.GetForecasts))
	mux.Handle("POST "+apiV1+"/predictor-records", protected(deps.predictorHandler.AddRecord))
	mux.Handle("POST "+apiV1+"/predictor-records/batch", protected(deps.predictorHandler.AddRecordBatch))

	// Import endpoints
	mux.Handle("POST "+apiV1+"/import/predictor-records", protected(deps.importHandler.ImportPredictorExcel))
	mux.Handle("GET "+apiV1+"/import/status/{jobId}", protected(deps.importHandler.ImportStatus))

	// Export endpoints
	mux.Handle("GET "+apiV1+"/export/stock.xlsx", protected(deps.exportHandler.ExportStockExcel))
	mux.Handle("GET "+apiV1+"/export/movements.json", protected(deps.exportHandler.ExportMovementsJSON))

	// Dashboard endpoint
	mux.Handle("GET "+apiV1+"/dashboard", protected(deps.dashboardHandler.GetDashboard))

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3)
}
