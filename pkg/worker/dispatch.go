package worker

import (
	"context"
	"time"

	"github.com/ecopick/recycle-api/pkg/logger"
)

// Sweeper is the dispatch loop's view of the notification service.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// DispatchWorker drives the notification sweep on a fixed interval.
// The sweep itself is re-entrant-guarded, so a slow pass and the next
// tick cannot overlap.
type DispatchWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *logger.Logger
}

func NewDispatchWorker(sweeper Sweeper, interval time.Duration, logger *logger.Logger) *DispatchWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &DispatchWorker{sweeper: sweeper, interval: interval, logger: logger}
}

// Start blocks until ctx is cancelled.
func (w *DispatchWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("dispatch worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dispatch worker shutting down")
			return
		case <-ticker.C:
			if err := w.sweeper.Sweep(ctx); err != nil {
				w.logger.Error(err, "dispatch sweep failed")
			}
		}
	}
}
