package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DiscoveryResult describes one discovery pass.
type DiscoveryResult struct {
	StartCursor int
	Cursor      int
	Fetched     int
	Added       int
	Known       int
}

// Discover pages through the policy's assets starting after the persisted
// cursor until an empty page. Nothing is persisted if any page fails.
// The new cursor is one before the last non-empty page so that page, which
// may have been partial, is fetched again next time.
func (r *Runner) Discover(ctx context.Context) (DiscoveryResult, error) {
	startCursor, err := r.state.Cursor(ctx)
	if err != nil {
		return DiscoveryResult{}, err
	}

	var found []string
	lastNonEmpty := 0
	for page := startCursor + 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return DiscoveryResult{}, err
		}

		r.logger.Debug("fetch asset page", zap.Int("page", page))
		assets, err := r.source.AssetsByPolicy(ctx, r.cfg.Policy, page)
		if err != nil {
			return DiscoveryResult{}, fmt.Errorf("list assets page %d: %w", page, err)
		}
		if len(assets) == 0 {
			break
		}
		found = append(found, assets...)
		lastNonEmpty = page
	}

	cursor := startCursor
	if lastNonEmpty > 0 {
		cursor = lastNonEmpty - 1
	}

	known, err := r.state.AssetIDs(ctx)
	if err != nil {
		return DiscoveryResult{}, err
	}
	set := NewOrderedSet(known)
	if set.Len() != len(known) {
		r.logger.Warn("collapsed duplicate asset ids", zap.Int("stored", len(known)), zap.Int("unique", set.Len()))
	}

	added := 0
	for _, assetID := range found {
		if set.Add(assetID) {
			added++
		}
	}

	// Assets before cursor: a crash in between only causes a re-fetch.
	if err := r.state.SaveAssetIDs(ctx, set.Items()); err != nil {
		return DiscoveryResult{}, err
	}
	if err := r.state.SaveCursor(ctx, cursor); err != nil {
		return DiscoveryResult{}, err
	}

	result := DiscoveryResult{
		StartCursor: startCursor,
		Cursor:      cursor,
		Fetched:     len(found),
		Added:       added,
		Known:       set.Len(),
	}
	r.logger.Info("discovery complete",
		zap.Int("start_cursor", startCursor),
		zap.Int("cursor", cursor),
		zap.Int("fetched", result.Fetched),
		zap.Int("added", added),
		zap.Int("known", result.Known),
	)
	return result, nil
}
