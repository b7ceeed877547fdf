package main

import (
	"context"
	"fmt"

	"bitbotScope/internal/config"
	"bitbotScope/internal/storage"
	"bitbotScope/internal/storage/file"
	"bitbotScope/internal/storage/leveldb"
	"bitbotScope/internal/storage/memory"
	"bitbotScope/internal/storage/postgres"
)

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreLevelDB:
		return leveldb.Open(cfg.LevelDBPath)
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case config.StoreFile:
		return file.Open(cfg.StateFile)
	case config.StoreMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
