// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/sistemastock/stock-be/internal/adapters/db"
	"github.com/sistemastock/stock-be/internal/pkg/config"
)

// HealthHandler reports liveness and readiness of the API and its
// dependencies: Postgres, Redis and the Asynq queues.
type HealthHandler struct {
	db        *db.Database
	redis     *redis.Client
	asynq     *asynq.Inspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	database *db.Database,
	redisClient *redis.Client,
	asynqInspector *asynq.Inspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:        database,
		redis:     redisClient,
		asynq:     asynqInspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// ComponentStatus is the probe result for one dependency.
type ComponentStatus struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus aggregates the component probes.
type HealthStatus struct {
	Status      string                     `json:"status"`
	Version     string                     `json:"version"`
	Environment string                     `json:"environment"`
	Uptime      string                     `json:"uptime"`
	Timestamp   time.Time                  `json:"timestamp"`
	Components  map[string]ComponentStatus `json:"components"`
	Runtime     RuntimeInfo                `json:"runtime"`
}

// RuntimeInfo reports process-level numbers.
type RuntimeInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	NumGC         uint32 `json:"num_gc"`
}

// Health handles GET /health. Components are probed concurrently; any
// unhealthy one degrades the overall status to 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	probes := map[string]func(context.Context) ComponentStatus{
		"database": h.probeDatabase,
		"redis":    h.probeRedis,
	}
	if h.asynq != nil {
		probes["asynq"] = h.probeAsynq
	}

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		components = make(map[string]ComponentStatus, len(probes))
	)

	for name, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := probe(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}()
	}
	wg.Wait()

	health := HealthStatus{
		Status:      "healthy",
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now(),
		Components:  components,
		Runtime:     collectRuntimeInfo(),
	}

	statusCode := http.StatusOK
	for _, c := range components {
		if c.Status != "healthy" {
			health.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response",
			slog.String("error", err.Error()))
	}
}

// Readiness handles GET /ready. Only the stores the request path depends on
// gate readiness; queue workers do not.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := make(map[string]string)

	if err := h.db.Ping(ctx); err != nil {
		ready = false
		details["database"] = "not ready"
	} else {
		details["database"] = "ready"
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		ready = false
		details["redis"] = "not ready"
	} else {
		details["redis"] = "ready"
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)

	response := map[string]interface{}{
		"ready":   ready,
		"details": details,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode readiness response",
			slog.String("error", err.Error()))
	}
}

func (h *HealthHandler) probeDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "database health check failed",
			slog.String("error", err.Error()))
		return ComponentStatus{Status: "unhealthy", Message: err.Error()}
	}

	return ComponentStatus{
		Status:       "healthy",
		ResponseTime: time.Since(start).String(),
		Details:      h.db.Health(ctx),
	}
}

func (h *HealthHandler) probeRedis(ctx context.Context) ComponentStatus {
	start := time.Now()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.logger.ErrorContext(ctx, "redis health check failed",
			slog.String("error", err.Error()))
		return ComponentStatus{Status: "unhealthy", Message: err.Error()}
	}

	poolStats := h.redis.PoolStats()
	return ComponentStatus{
		Status:       "healthy",
		ResponseTime: time.Since(start).String(),
		Details: map[string]interface{}{
			"total_conns": poolStats.TotalConns,
			"idle_conns":  poolStats.IdleConns,
			"stale_conns": poolStats.StaleConns,
		},
	}
}

func (h *HealthHandler) probeAsynq(ctx context.Context) ComponentStatus {
	start := time.Now()

	queues, err := h.asynq.Queues()
	if err != nil {
		h.logger.ErrorContext(ctx, "asynq health check failed",
			slog.String("error", err.Error()))
		return ComponentStatus{Status: "unhealthy", Message: err.Error()}
	}

	queueStats := make(map[string]interface{}, len(queues))
	for _, queue := range queues {
		qInfo, err := h.asynq.GetQueueInfo(queue)
		if err != nil {
			continue
		}
		queueStats[queue] = map[string]interface{}{
			"size":    qInfo.Size,
			"active":  qInfo.Active,
			"pending": qInfo.Pending,
			"retry":   qInfo.Retry,
		}
	}

	details := map[string]interface{}{"queues": queueStats}
	if servers, err := h.asynq.Servers(); err == nil && len(servers) > 0 {
		details["servers"] = len(servers)
		details["workers"] = servers[0].ActiveWorkers
	}

	return ComponentStatus{
		Status:       "healthy",
		ResponseTime: time.Since(start).String(),
		Details:      details,
	}
}

func collectRuntimeInfo() RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAllocMB: memStats.Alloc / 1024 / 1024,
		NumGC:         memStats.NumGC,
	}
}
