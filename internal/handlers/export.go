// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/adapters/storage"
	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/core/ports"
)

// presignTTL bounds how long an archived export link stays valid.
const presignTTL = 24 * time.Hour

// MovementExportResponse is the JSON export payload
type MovementExportResponse struct {
	Movements []domain.MovementWithProduct `json:"movements"`
	Metadata  ExportMetadata               `json:"metadata"`
}

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate time.Time `json:"export_date"`
	TotalRows  int       `json:"total_rows"`
}

// ExportHandler generates stock and movement exports
type ExportHandler struct {
	ledgerService ports.LedgerService
	archive       storage.ArchiveStore
	cache         ports.CacheRepository
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler. The archive store may be nil
// when no bucket is configured; exports then stream to the client only.
func NewExportHandler(ledgerService ports.LedgerService, archive storage.ArchiveStore, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		ledgerService: ledgerService,
		archive:       archive,
		cache:         cache,
		logger:        logger.With(slog.String("handler", "export")),
	}
}

// ExportStockExcel handles GET /api/v1/export/stock.xlsx
func (h *ExportHandler) ExportStockExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := h.ledgerService.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load stock snapshot",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateStockWorkbook(snapshot)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	if r.URL.Query().Get("archive") == "true" {
		h.archiveExport(ctx, w, "stock", "xlsx", excelData,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}

	filename := fmt.Sprintf("stock_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "stock export completed",
		slog.Int("total_rows", len(snapshot)),
		slog.String("filename", filename))
}

// ExportMovementsJSON handles GET /api/v1/export/movements.json
func (h *ExportHandler) ExportMovementsJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixExport, "movements", "json")
	var cachedData []byte
	if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))

		if _, err := w.Write(cachedData); err != nil {
			h.logger.ErrorContext(ctx, "failed to write cached JSON response",
				slog.String("error", err.Error()))
		}
		return
	}

	movements, err := h.ledgerService.History(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load movement history",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	response := MovementExportResponse{
		Movements: movements,
		Metadata: ExportMetadata{
			ExportDate: time.Now(),
			TotalRows:  len(movements),
		},
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal JSON response",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	if r.URL.Query().Get("archive") == "true" {
		h.archiveExport(ctx, w, "movements", "json", responseData, "application/json")
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))

	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write JSON response",
			slog.String("error", err.Error()))
		return
	}

	// Cache the serialized payload so repeat exports skip the ledger scan.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.cache.SetWithTTL(cacheCtx, cacheKey, responseData, 5*time.Minute); err != nil {
			h.logger.WarnContext(cacheCtx, "failed to cache JSON export",
				slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "movement export completed",
		slog.Int("total_rows", len(movements)))
}

// archiveExport uploads the generated file to the archive store and exposes
// its location through response headers. Archive failures do not fail the
// export itself.
func (h *ExportHandler) archiveExport(ctx context.Context, w http.ResponseWriter, kind, extension string, data []byte, contentType string) {
	if h.archive == nil {
		h.logger.WarnContext(ctx, "archive requested but no archive store configured")
		return
	}

	key := storage.ExportKey(kind, extension, time.Now())
	if _, err := h.archive.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		h.logger.ErrorContext(ctx, "failed to archive export",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}

	w.Header().Set("X-Archive-Key", key)

	url, err := h.archive.GetPresignedURL(ctx, key, presignTTL)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to presign archive URL",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	w.Header().Set("X-Archive-URL", url)
}

// generateStockWorkbook renders the snapshot as a single-sheet workbook
func (h *ExportHandler) generateStockWorkbook(snapshot []domain.StockRow) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Stock")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{
		"Product", "SKU", "Quantity", "Unit Cost",
		"Total Inventory Cost", "Last Updated",
	}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, row := range snapshot {
		dataRow := sheet.AddRow()
		for _, value := range []string{
			row.ProductName,
			row.SKU,
			strconv.Itoa(row.Quantity),
			row.UnitCost.StringFixed(2),
			row.TotalInventoryCost.StringFixed(2),
			row.LastUpdated.Format("2006-01-02 15:04:05"),
		} {
			cell := dataRow.AddCell()
			cell.Value = value
		}
	}

	for i := 0; i < len(headers); i++ {
		sheet.SetColWidth(i, i, 18)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func (h *ExportHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
