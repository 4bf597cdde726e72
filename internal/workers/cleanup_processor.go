// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sistemastock/stock-be/internal/adapters/storage"
	"github.com/sistemastock/stock-be/internal/pkg/config"
)

// archiveRetention is how long archived exports are kept before pruning
const archiveRetention = 90 * 24 * time.Hour

// CleanupProcessor removes expired uploads and archived exports
type CleanupProcessor struct {
	config  *config.Config
	archive storage.ArchiveStore
	logger  *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor. The archive store may
// be nil when no bucket is configured.
func NewCleanupProcessor(config *config.Config, archive storage.ArchiveStore, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		config:  config,
		archive: archive,
		logger:  logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupTempFiles removes uploaded spreadsheets older than a day. Imports
// finish in minutes, so anything older is an orphan from a failed job.
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	tempDir := p.config.FileProcessing.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}

// CleanupArchives prunes archived exports past the retention window. Export
// keys embed their creation timestamp, so age is parsed from the key itself.
func (p *CleanupProcessor) CleanupArchives(ctx context.Context, t *asynq.Task) error {
	if p.archive == nil {
		p.logger.InfoContext(ctx, "no archive store configured, skipping archive cleanup")
		return nil
	}

	keys, err := p.archive.List(ctx, "exports/")
	if err != nil {
		return fmt.Errorf("failed to list archived exports: %w", err)
	}

	cutoff := time.Now().Add(-archiveRetention)
	var expired []string
	for _, key := range keys {
		createdAt, ok := parseExportTimestamp(key)
		if ok && createdAt.Before(cutoff) {
			expired = append(expired, key)
		}
	}

	if len(expired) == 0 {
		return nil
	}

	if err := p.archive.Delete(ctx, expired...); err != nil {
		return fmt.Errorf("failed to prune archived exports: %w", err)
	}

	p.logger.InfoContext(ctx, "archived exports pruned",
		slog.Int("deleted", len(expired)),
		slog.Int("total", len(keys)))

	return nil
}

// parseExportTimestamp extracts the creation time from keys shaped like
// exports/2026/08/stock_20260829_150405.xlsx.
func parseExportTimestamp(key string) (time.Time, bool) {
	base := filepath.Base(key)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]

	idx := -1
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(name) {
		return time.Time{}, false
	}

	ts, err := time.Parse("20060102_150405", name[idx+1:])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
