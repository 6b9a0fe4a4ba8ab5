package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

// Syncer triggers one ingestion run.
type Syncer interface {
	Sync(ctx context.Context) (*domain.RunStats, error)
}

// Scheduler invokes the syncer immediately and then at a fixed interval.
// It assumes runs never outlive the interval; there is no overlap guard.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runSync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if _, err := s.syncer.Sync(syncCtx); err != nil {
		s.logger.Error("run failed", "error", err)
	}
}
