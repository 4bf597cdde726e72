// internal/workers/tasks.go
package workers

import "time"

// Task type names routed by the asynq mux.
const (
	TypeExcelImport      = "excel:import"
	TypeForecastWarmup   = "forecast:warmup"
	TypeCleanupTempFiles = "cleanup:temp_files"
	TypeCleanupArchives  = "cleanup:archives"
)

// ExcelJobPayload is the payload for a queued spreadsheet import
type ExcelJobPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

// ImportJobStatus is the job state published to the cache for polling.
// Status moves queued -> processing -> completed or failed.
type ImportJobStatus struct {
	JobID        string     `json:"job_id"`
	Status       string     `json:"status"`
	Filename     string     `json:"filename,omitempty"`
	RowsImported int        `json:"rows_imported,omitempty"`
	RowsSkipped  int        `json:"rows_skipped,omitempty"`
	Error        string     `json:"error,omitempty"`
	QueuedAt     time.Time  `json:"queued_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
