package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"bitbotScope/internal/model"
)

// Reader exposes read-only access to the ingestion state.
type Reader interface {
	Cursor(ctx context.Context) (int, error)
	AssetIDs(ctx context.Context) ([]string, error)
	ProcessedTxs(ctx context.Context) ([]string, error)
	Bitbots(ctx context.Context) ([]model.Bitbot, error)
}

// State is the typed view of the four cache keys on top of a Store.
// A value that cannot be decoded is treated as absent.
type State struct {
	store  Store
	logger *zap.Logger
}

func NewState(store Store, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{store: store, logger: logger}
}

// Cursor returns the persisted discovery page offset, 0 when unset.
func (s *State) Cursor(ctx context.Context) (int, error) {
	page, err := load[int](ctx, s, KeyPage)
	if err != nil {
		return 0, err
	}
	if page < 0 {
		return 0, nil
	}
	return page, nil
}

func (s *State) SaveCursor(ctx context.Context, page int) error {
	return s.save(ctx, KeyPage, page)
}

// AssetIDs returns the known asset identifiers in discovery order.
func (s *State) AssetIDs(ctx context.Context) ([]string, error) {
	return load[[]string](ctx, s, KeyAssetHashes)
}

func (s *State) SaveAssetIDs(ctx context.Context, ids []string) error {
	return s.save(ctx, KeyAssetHashes, nonNil(ids))
}

// ProcessedTxs returns the transaction hashes already processed.
func (s *State) ProcessedTxs(ctx context.Context) ([]string, error) {
	return load[[]string](ctx, s, KeyTxHashes)
}

func (s *State) SaveProcessedTxs(ctx context.Context, hashes []string) error {
	return s.save(ctx, KeyTxHashes, nonNil(hashes))
}

// Bitbots returns the cached records in append order.
func (s *State) Bitbots(ctx context.Context) ([]model.Bitbot, error) {
	return load[[]model.Bitbot](ctx, s, KeyBitbots)
}

func (s *State) SaveBitbots(ctx context.Context, bots []model.Bitbot) error {
	if bots == nil {
		bots = []model.Bitbot{}
	}
	return s.save(ctx, KeyBitbots, bots)
}

func load[T any](ctx context.Context, s *State, key string) (T, error) {
	var value T
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return value, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return value, nil
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.logger.Warn("discard undecodable cache value", zap.String("key", key), zap.Error(err))
		var empty T
		return empty, nil
	}
	return value, nil
}

func (s *State) save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
