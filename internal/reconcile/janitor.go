package reconcile

import (
	"context"
	"log/slog"
	"time"
)

// RecordSweeper is the slice of the store the janitor needs.
type RecordSweeper interface {
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor periodically drops resolved records older than the retention
// window. Without it the store grows one row per component that ever had an
// incident, forever.
type Janitor struct {
	store     RecordSweeper
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
}

// NewJanitor creates the retention worker. A zero retention disables
// sweeping entirely.
func NewJanitor(s RecordSweeper, logger *slog.Logger, interval, retention time.Duration) *Janitor {
	return &Janitor{
		store:     s,
		logger:    logger,
		interval:  interval,
		retention: retention,
	}
}

// Run starts the sweep loop and blocks until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	if j.retention <= 0 {
		j.logger.Info("retention sweeping disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("retention worker started",
		"interval", j.interval,
		"retention", j.retention,
	)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("retention worker stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.retention)

	deleted, err := j.store.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("retention sweep failed", "error", err)
		return
	}

	if deleted > 0 {
		j.logger.Info("retention sweep completed",
			"deleted", deleted,
			"cutoff", cutoff,
		)
	}
}
