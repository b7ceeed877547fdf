package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bitbotScope/internal/storage"
)

// ErrCycleInProgress is returned when a cycle is triggered while another runs.
var ErrCycleInProgress = errors.New("ingestion cycle already in progress")

// RunConfig holds runtime settings for the pipeline.
type RunConfig struct {
	Policy string
}

// CycleStats summarizes one ingestion cycle.
type CycleStats struct {
	Discovery DiscoveryResult
	Assets    int
	Extracted ExtractResult
	Duration  time.Duration
}

// Runner drives discovery and extraction against a Source and a cache Store.
// At most one cycle runs at a time.
type Runner struct {
	cfg     RunConfig
	source  Source
	state   *storage.State
	logger  *zap.Logger
	running atomic.Bool
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source Source, store storage.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		source: source,
		state:  storage.NewState(store, logger),
		logger: logger,
	}
}

// RunCycle discovers new assets, then extracts metadata for every known asset.
// A concurrent call returns ErrCycleInProgress without touching the cache.
func (r *Runner) RunCycle(ctx context.Context) (CycleStats, error) {
	if r.source == nil {
		return CycleStats{}, fmt.Errorf("source is nil")
	}
	if r.cfg.Policy == "" {
		return CycleStats{}, fmt.Errorf("policy is required")
	}
	if !r.running.CompareAndSwap(false, true) {
		return CycleStats{}, ErrCycleInProgress
	}
	defer r.running.Store(false)

	start := time.Now()
	var stats CycleStats

	discovery, err := r.Discover(ctx)
	if err != nil {
		return stats, fmt.Errorf("discover assets: %w", err)
	}
	stats.Discovery = discovery

	assetIDs, err := r.state.AssetIDs(ctx)
	if err != nil {
		return stats, err
	}

	for _, assetID := range assetIDs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result, err := r.Extract(ctx, assetID)
		stats.Extracted.add(result)
		if err != nil {
			return stats, fmt.Errorf("extract asset %s: %w", assetID, err)
		}
		stats.Assets++
	}

	stats.Duration = time.Since(start)
	r.logger.Info("cycle complete",
		zap.Int("assets", stats.Assets),
		zap.Int("new_assets", stats.Discovery.Added),
		zap.Int("cursor", stats.Discovery.Cursor),
		zap.Int("processed_txs", stats.Extracted.Processed),
		zap.Int("records", stats.Extracted.Records),
		zap.Int("malformed", stats.Extracted.Malformed),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}
