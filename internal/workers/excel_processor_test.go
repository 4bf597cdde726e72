// internal/workers/excel_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
	"github.com/sistemastock/stock-be/internal/workers"
	"github.com/sistemastock/stock-be/test/helpers"
	"github.com/sistemastock/stock-be/test/mocks"
)

func newWorkerCache(t *testing.T) (ports.CacheRepository, *redis_a.CacheManager) {
	t.Helper()

	tr := helpers.SetupTestRedis(t)
	logger := helpers.TestLogger()
	cache := redis_a.NewCache(tr.Client, time.Hour, logger)
	return cache, redis_a.NewCacheManager(cache, logger)
}

// writeSalesWorkbook builds a spreadsheet in the layout the processor expects:
// product ID, date, units sold, average price, promotion flag, special event.
func writeSalesWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("sales")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Product ID", "Date", "Units Sold", "Avg Price", "Promotion", "Event"} {
		header.AddCell().SetString(h)
	}

	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, file.Save(path))
	return path
}

func TestExcelProcessor_ProcessExcel(t *testing.T) {
	productID := uuid.New()

	t.Run("imports_valid_rows_and_skips_bad_ones", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockForecastService(ctrl)
		cache, manager := newWorkerCache(t)
		processor := workers.NewExcelProcessor(mockService, cache, manager, helpers.TestLogger())

		filePath := writeSalesWorkbook(t, [][]string{
			{productID.String(), "2026-08-10", "12", "1890.00", "false", ""},
			{productID.String(), "2026-08-11", "15", "$1890.00", "true", "weekend promo"},
			{"not-a-uuid", "2026-08-12", "9", "1890.00", "false", ""},
			{productID.String(), "12/08/2026", "9", "1890.00", "false", ""},
			{productID.String(), "2026-08-13", "-4", "1890.00", "false", ""},
		})

		mockService.EXPECT().
			AddRecords(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, records []domain.PredictorRecord) error {
				require.Len(t, records, 2)
				assert.Equal(t, productID, records[0].ProductID)
				assert.Equal(t, 12, records[0].UnitsSold)
				assert.Equal(t, "1890", records[1].AvgSalePrice.String())
				assert.True(t, records[1].PromotionActive)
				assert.Equal(t, "weekend promo", records[1].SpecialEvent)
				return nil
			})

		payload, err := json.Marshal(workers.ExcelJobPayload{
			JobID:    "job-123",
			FilePath: filePath,
		})
		require.NoError(t, err)

		task := asynq.NewTask(workers.TypeExcelImport, payload)
		err = processor.ProcessExcel(context.Background(), task)
		require.NoError(t, err)

		var status workers.ImportJobStatus
		key := redis_a.BuildKey(redis_a.PrefixImport, "status", "job-123")
		require.NoError(t, cache.Get(context.Background(), key, &status))
		assert.Equal(t, "completed", status.Status)
		assert.Equal(t, 2, status.RowsImported)
		assert.Equal(t, 3, status.RowsSkipped)
		require.NotNil(t, status.CompletedAt)
	})

	t.Run("missing_file_marks_job_failed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockForecastService(ctrl)
		cache, manager := newWorkerCache(t)
		processor := workers.NewExcelProcessor(mockService, cache, manager, helpers.TestLogger())

		payload, err := json.Marshal(workers.ExcelJobPayload{
			JobID:    "job-404",
			FilePath: filepath.Join(t.TempDir(), "does-not-exist.xlsx"),
		})
		require.NoError(t, err)

		task := asynq.NewTask(workers.TypeExcelImport, payload)
		err = processor.ProcessExcel(context.Background(), task)
		require.Error(t, err)

		var status workers.ImportJobStatus
		key := redis_a.BuildKey(redis_a.PrefixImport, "status", "job-404")
		require.NoError(t, cache.Get(context.Background(), key, &status))
		assert.Equal(t, "failed", status.Status)
		assert.NotEmpty(t, status.Error)
	})

	t.Run("malformed_payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockForecastService(ctrl)
		cache, manager := newWorkerCache(t)
		processor := workers.NewExcelProcessor(mockService, cache, manager, helpers.TestLogger())

		task := asynq.NewTask(workers.TypeExcelImport, []byte("{broken"))
		err := processor.ProcessExcel(context.Background(), task)
		assert.Error(t, err)
	})

	t.Run("removes_temp_file_after_import", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockForecastService(ctrl)
		cache, manager := newWorkerCache(t)
		processor := workers.NewExcelProcessor(mockService, cache, manager, helpers.TestLogger())

		// Place the file under the OS temp dir so the processor deletes it.
		dir, err := os.MkdirTemp("", "import-test")
		require.NoError(t, err)
		t.Cleanup(func() { os.RemoveAll(dir) })

		src := writeSalesWorkbook(t, [][]string{
			{productID.String(), "2026-08-10", "5", "100.00", "false", ""},
		})
		data, err := os.ReadFile(src)
		require.NoError(t, err)
		filePath := filepath.Join(dir, "sales.xlsx")
		require.NoError(t, os.WriteFile(filePath, data, 0o644))

		mockService.EXPECT().
			AddRecords(gomock.Any(), gomock.Any()).
			Return(nil)

		payload, err := json.Marshal(workers.ExcelJobPayload{
			JobID:    "job-tmp",
			FilePath: filePath,
		})
		require.NoError(t, err)

		task := asynq.NewTask(workers.TypeExcelImport, payload)
		require.NoError(t, processor.ProcessExcel(context.Background(), task))

		_, err = os.Stat(filePath)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestForecastProcessor_WarmForecasts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockForecastService(ctrl)
	cache, _ := newWorkerCache(t)
	processor := workers.NewForecastProcessor(mockService, cache, time.Hour, helpers.TestLogger())

	forecasts := []domain.Forecast{
		{
			ProductID:   uuid.New(),
			ProductName: "Yerba Mate Rosamonte 1kg",
			Prediction:  120,
			Trend:       domain.TrendIncreasing,
			Confidence:  91.2,
			DataPoints:  28,
		},
	}

	mockService.EXPECT().
		PredictAll(gomock.Any()).
		Return(forecasts, nil)

	task := asynq.NewTask(workers.TypeForecastWarmup, nil)
	require.NoError(t, processor.WarmForecasts(context.Background(), task))

	var cached []domain.Forecast
	key := redis_a.BuildKey(redis_a.PrefixForecast, "all")
	require.NoError(t, cache.Get(context.Background(), key, &cached))
	require.Len(t, cached, 1)
	assert.Equal(t, 120, cached[0].Prediction)
}
