// Package settlementworker drives settlement batches on a fixed interval.
package settlementworker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/paycore/internal/usecase"
)

// BatchProcessor runs one settlement batch.
type BatchProcessor interface {
	ProcessSettlementBatch(ctx context.Context) (*usecase.BatchResult, error)
}

// Worker polls for due settlements.
type Worker struct {
	processor BatchProcessor
	logger    zerolog.Logger
	interval  time.Duration
}

// New creates a Worker. Interval defaults to 30s.
func New(processor BatchProcessor, interval time.Duration, logger zerolog.Logger) *Worker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Worker{
		processor: processor,
		logger:    logger.With().Str("component", "settlement_worker").Logger(),
		interval:  interval,
	}
}

// Start runs a batch immediately and then on every tick until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("settlement worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("settlement worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processes one batch and logs rather than returns failures.
func (w *Worker) RunOnce(ctx context.Context) *usecase.BatchResult {
	res, err := w.processor.ProcessSettlementBatch(ctx)
	if err != nil && ctx.Err() == nil {
		w.logger.Error().Err(err).Msg("settlement batch failed")
	}
	return res
}
