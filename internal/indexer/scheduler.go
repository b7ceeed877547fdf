package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cycler runs one ingestion cycle.
type Cycler interface {
	RunCycle(ctx context.Context) (CycleStats, error)
}

// Scheduler runs a cycle immediately, then once per interval until ctx ends.
// Failed cycles are logged and retried on the next tick.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	logger   *zap.Logger
}

func NewScheduler(cycler Cycler, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cycler: cycler, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cycler == nil {
		return fmt.Errorf("cycler is nil")
	}
	if s.interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}

	s.trigger(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	_, err := s.cycler.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		s.logger.Info("cycle skipped, previous cycle still running")
	case ctx.Err() != nil:
		s.logger.Info("cycle interrupted", zap.Error(err))
	default:
		s.logger.Error("cycle failed", zap.Error(err))
	}
}
