package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bitbotScope/internal/storage"
)

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	bots, err := storage.NewState(store, logger).Bitbots(ctx)
	if err != nil {
		return err
	}
	if err := storage.NewJsonlExporter(cfg.Out).Export(bots); err != nil {
		return err
	}

	logger.Info("export complete", zap.String("out", cfg.Out), zap.Int("bitbots", len(bots)))
	return nil
}
