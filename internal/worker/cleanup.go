package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/logger"
)

// BackupCleaner prunes expired database dumps.
type BackupCleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

type CleanupConfig struct {
	Interval        time.Duration
	OutboxRetention time.Duration
}

// CleanupWorker periodically drops delivered outbox events and expired
// backups. A nil backups cleaner skips backup pruning.
type CleanupWorker struct {
	outbox  repository.OutboxRepository
	backups BackupCleaner
	config  CleanupConfig
	logger  *logger.Logger
	now     func() time.Time
}

func NewCleanupWorker(outbox repository.OutboxRepository, backups BackupCleaner, config CleanupConfig, logger *logger.Logger) *CleanupWorker {
	return &CleanupWorker{
		outbox:  outbox,
		backups: backups,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error(err, "Cleanup run failed")
			}
		}
	}
}

// RunOnce performs a single cleanup pass. Both steps run even if the first
// one fails.
func (w *CleanupWorker) RunOnce(ctx context.Context) error {
	var firstErr error

	cutoff := w.now().Add(-w.config.OutboxRetention)
	rows, err := w.outbox.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		firstErr = fmt.Errorf("failed to cleanup outbox events: %w", err)
	} else if rows > 0 {
		w.logger.Info("Cleaned up processed outbox events", "count", rows, "before", cutoff)
	}

	if w.backups != nil {
		removed, err := w.backups.Cleanup(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to cleanup backups: %w", err)
			}
		} else if removed > 0 {
			w.logger.Info("Removed expired backups", "count", removed)
		}
	}

	return firstErr
}
