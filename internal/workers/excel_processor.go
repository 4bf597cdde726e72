// internal/workers/excel_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// statusTTL keeps finished job statuses around long enough for polling
const statusTTL = 24 * time.Hour

// ExcelProcessor ingests sales-history spreadsheets into the predictor table
type ExcelProcessor struct {
	service ports.ForecastService
	cache   ports.CacheRepository
	manager *redis_a.CacheManager
	logger  *slog.Logger
}

// NewExcelProcessor creates a new Excel processor
func NewExcelProcessor(service ports.ForecastService, cache ports.CacheRepository, manager *redis_a.CacheManager, logger *slog.Logger) *ExcelProcessor {
	return &ExcelProcessor{
		service: service,
		cache:   cache,
		manager: manager,
		logger:  logger.With(slog.String("processor", "excel")),
	}
}

// ProcessExcel parses a spreadsheet of daily sales history and appends the
// rows to the predictor series. Expected columns: product ID, record date,
// units sold, average sale price, promotion flag, special event.
func (p *ExcelProcessor) ProcessExcel(ctx context.Context, t *asynq.Task) error {
	var payload ExcelJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing sales history spreadsheet",
		slog.String("job_id", payload.JobID),
		slog.String("file_path", payload.FilePath))

	p.publishStatus(ctx, &ImportJobStatus{
		JobID:     payload.JobID,
		Status:    "processing",
		StartedAt: timePtr(time.Now()),
	})

	file, err := xlsx.OpenFile(payload.FilePath)
	if err != nil {
		p.failJob(ctx, payload.JobID, fmt.Sprintf("failed to open spreadsheet: %s", err))
		return fmt.Errorf("failed to open Excel file: %w", err)
	}

	var records []domain.PredictorRecord
	var skipped int

	if len(file.Sheets) > 0 {
		sheet := file.Sheets[0]
		rowIdx := 0

		err = sheet.ForEachRow(func(r *xlsx.Row) error {
			// Skip header row
			if rowIdx == 0 {
				rowIdx++
				return nil
			}
			rowIdx++

			record := p.parseRow(r)
			if record == nil {
				skipped++
				return nil
			}
			records = append(records, *record)
			return nil
		})

		if err != nil {
			p.failJob(ctx, payload.JobID, fmt.Sprintf("failed to read rows: %s", err))
			return fmt.Errorf("failed to process Excel rows: %w", err)
		}
	}

	if len(records) > 0 {
		if err := p.service.AddRecords(ctx, records); err != nil {
			p.failJob(ctx, payload.JobID, fmt.Sprintf("failed to save records: %s", err))
			return fmt.Errorf("failed to save records: %w", err)
		}
		p.manager.InvalidateForecastCache(ctx)
	}

	// Clean up temp file
	if strings.HasPrefix(payload.FilePath, os.TempDir()) || strings.HasPrefix(payload.FilePath, "/tmp/") {
		os.Remove(payload.FilePath)
	}

	p.publishStatus(ctx, &ImportJobStatus{
		JobID:        payload.JobID,
		Status:       "completed",
		RowsImported: len(records),
		RowsSkipped:  skipped,
		CompletedAt:  timePtr(time.Now()),
	})

	p.logger.InfoContext(ctx, "spreadsheet processing completed",
		slog.String("job_id", payload.JobID),
		slog.Int("rows_imported", len(records)),
		slog.Int("rows_skipped", skipped))

	return nil
}

// parseRow converts one spreadsheet row into a predictor record. Rows without
// a parseable product ID or date are skipped rather than failing the import.
func (p *ExcelProcessor) parseRow(r *xlsx.Row) *domain.PredictorRecord {
	get := func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.String())
	}

	productID, err := uuid.Parse(get(0))
	if err != nil {
		return nil
	}

	recordDate, err := time.Parse("2006-01-02", get(1))
	if err != nil {
		return nil
	}

	unitsSold, err := strconv.Atoi(get(2))
	if err != nil || unitsSold < 0 {
		return nil
	}

	avgPrice := decimal.Zero
	if s := get(3); s != "" {
		avgPrice, _ = decimal.NewFromString(strings.TrimPrefix(s, "$"))
	}

	promotion, _ := strconv.ParseBool(get(4))

	return &domain.PredictorRecord{
		RecordDate:      recordDate,
		ProductID:       productID,
		UnitsSold:       unitsSold,
		AvgSalePrice:    avgPrice,
		PromotionActive: promotion,
		SpecialEvent:    get(5),
	}
}

func (p *ExcelProcessor) failJob(ctx context.Context, jobID, message string) {
	p.publishStatus(ctx, &ImportJobStatus{
		JobID:       jobID,
		Status:      "failed",
		Error:       message,
		CompletedAt: timePtr(time.Now()),
	})
}

func (p *ExcelProcessor) publishStatus(ctx context.Context, status *ImportJobStatus) {
	key := redis_a.BuildKey(redis_a.PrefixImport, "status", status.JobID)
	if err := p.cache.SetWithTTL(ctx, key, status, statusTTL); err != nil {
		p.logger.WarnContext(ctx, "failed to publish job status",
			slog.String("job_id", status.JobID),
			slog.String("error", err.Error()))
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
