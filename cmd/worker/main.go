// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/sistemastock/stock-be/internal/adapters/db"
	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/adapters/storage"
	"github.com/sistemastock/stock-be/internal/core/services"
	"github.com/sistemastock/stock-be/internal/pkg/config"
	"github.com/sistemastock/stock-be/internal/pkg/logger"
	"github.com/sistemastock/stock-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()
	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)
	manager := redis_a.NewCacheManager(cache, slogger)

	// Repositories and services
	catalogRepo := db.NewCatalogRepository(database, slogger)
	predictorRepo := db.NewPredictorRepository(database, slogger)
	forecastService := services.NewForecastService(catalogRepo, predictorRepo, slogger)

	archive := initArchiveStore(ctx, cfg, slogger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(
		asynqRedisOpt,
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			HealthCheckFunc: healthCheck,
			Logger:          newAsynqLogger(slogger),
		},
	)

	mux := asynq.NewServeMux()

	excelProcessor := workers.NewExcelProcessor(forecastService, cache, manager, slogger)
	mux.HandleFunc(workers.TypeExcelImport, excelProcessor.ProcessExcel)

	forecastProcessor := workers.NewForecastProcessor(forecastService, cache, cfg.Forecast.CacheTTL, slogger)
	mux.HandleFunc(workers.TypeForecastWarmup, forecastProcessor.WarmForecasts)

	cleanupProcessor := workers.NewCleanupProcessor(cfg, archive, slogger)
	mux.HandleFunc(workers.TypeCleanupTempFiles, cleanupProcessor.CleanupTempFiles)
	mux.HandleFunc(workers.TypeCleanupArchives, cleanupProcessor.CleanupArchives)

	scheduler := newScheduler(asynqRedisOpt, slogger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// newScheduler enqueues the recurring maintenance tasks: forecast cache
// warmup, temp file cleanup and archive retention.
func newScheduler(redisOpt asynq.RedisClientOpt, slogger *slog.Logger) *asynq.Scheduler {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: newAsynqLogger(slogger),
	})

	entries := []struct {
		cronspec string
		taskType string
	}{
		{"*/15 * * * *", workers.TypeForecastWarmup},
		{"0 * * * *", workers.TypeCleanupTempFiles},
		{"0 4 * * *", workers.TypeCleanupArchives},
	}

	for _, e := range entries {
		if _, err := scheduler.Register(e.cronspec, asynq.NewTask(e.taskType, nil)); err != nil {
			slogger.Error("failed to register scheduled task",
				slog.String("task", e.taskType),
				slog.String("error", err.Error()))
		}
	}

	return scheduler
}

func initDatabase(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, slogger)
}

func initArchiveStore(ctx context.Context, cfg *config.Config, slogger *slog.Logger) storage.ArchiveStore {
	if cfg.AWS.S3Bucket == "" {
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
			slogger.Warn("S3 unavailable, archive cleanup will use local disk",
				slog.String("error", err.Error()))
			return storage.NewLocalStore("archives", slogger)
		}
		slogger.Error("failed to initialize archive store", slog.String("error", err.Error()))
		return nil
	}

	return store
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(slogger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: slogger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
