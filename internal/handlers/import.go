// internal/handlers/import.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/ports"
	"github.com/sistemastock/stock-be/internal/workers"
)

// ImportHandler accepts sales-history spreadsheets and queues them for
// background ingestion
type ImportHandler struct {
	asynqClient *asynq.Client
	cache       ports.CacheRepository
	logger      *slog.Logger
	maxFileSize int64
	uploadDir   string
}

// NewImportHandler creates a new import handler
func NewImportHandler(asynqClient *asynq.Client, cache ports.CacheRepository, logger *slog.Logger, maxFileSize int64, uploadDir string) *ImportHandler {
	return &ImportHandler{
		asynqClient: asynqClient,
		cache:       cache,
		logger:      logger.With(slog.String("handler", "import")),
		maxFileSize: maxFileSize,
		uploadDir:   uploadDir,
	}
}

// ImportPredictorExcel handles POST /api/v1/import/predictor-records
//
// The spreadsheet is saved to the upload directory and ingested by the
// worker; the response carries a job ID for polling.
func (h *ImportHandler) ImportPredictorExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" &&
		contentType != "application/vnd.ms-excel" {
		h.respondError(w, http.StatusBadRequest, "Only Excel files are allowed")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.ErrorContext(ctx, "failed to create upload directory",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to prepare upload")
		return
	}

	tempFile := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), header.Filename))
	dst, err := os.Create(tempFile)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create temp file",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to save file",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	jobID := uuid.New().String()
	payload := workers.ExcelJobPayload{
		JobID:    jobID,
		FilePath: tempFile,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to marshal job payload",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	task := asynq.NewTask(workers.TypeExcelImport, b)
	info, err := h.asynqClient.Enqueue(task,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to enqueue task",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.markQueued(ctx, jobID, header.Filename)

	h.logger.InfoContext(ctx, "predictor import queued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("filename", header.Filename))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Spreadsheet has been queued for processing",
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("jobId")

	var status workers.ImportJobStatus
	key := redis_a.BuildKey(redis_a.PrefixImport, "status", jobID)

	if err := h.cache.Get(ctx, key, &status); err != nil {
		if err == redis_a.ErrCacheMiss {
			h.respondError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	h.respondJSON(w, http.StatusOK, status)
}

// markQueued records the initial job status so polling works before the
// worker picks the task up.
func (h *ImportHandler) markQueued(ctx context.Context, jobID, filename string) {
	status := workers.ImportJobStatus{
		JobID:    jobID,
		Status:   "queued",
		Filename: filename,
		QueuedAt: time.Now(),
	}

	key := redis_a.BuildKey(redis_a.PrefixImport, "status", jobID)
	if err := h.cache.SetWithTTL(ctx, key, status, 24*time.Hour); err != nil {
		h.logger.WarnContext(ctx, "failed to record queued job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
	}
}

func (h *ImportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ImportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
