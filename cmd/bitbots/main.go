package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bitbotScope/internal/blockfrost"
	"bitbotScope/internal/config"
	"bitbotScope/internal/indexer"
	"bitbotScope/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "bitbots",
		Short:        "Bitbot NFT metadata indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest on start and then on every interval",
		RunE:  runIndexer,
	}
	addSourceFlags(runCmd)
	addStoreFlags(runCmd)
	runCmd.Flags().Duration("interval", 5*time.Minute, "time between ingestion cycles")
	runCmd.Flags().String("listen", "", "serve the query API on this address (e.g. :4000)")
	runCmd.Flags().Duration("cache-ttl", 5*time.Second, "query API read cache TTL")
	root.AddCommand(runCmd)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single ingestion cycle",
		RunE:  runSync,
	}
	addSourceFlags(syncCmd)
	addStoreFlags(syncCmd)
	root.AddCommand(syncCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only query API",
		RunE:  runServe,
	}
	addStoreFlags(serveCmd)
	serveCmd.Flags().String("listen", ":4000", "listen address")
	serveCmd.Flags().Duration("cache-ttl", 5*time.Second, "read cache TTL")
	root.AddCommand(serveCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write cached bitbots to a JSONL file",
		RunE:  runExport,
	}
	addStoreFlags(exportCmd)
	exportCmd.Flags().String("out", "./data/bitbots.jsonl", "output JSONL path")
	root.AddCommand(exportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("project-id", "", "Blockfrost project id")
	cmd.Flags().String("api-url", blockfrost.DefaultBaseURL, "Blockfrost API base URL")
	cmd.Flags().String("policy", config.DefaultPolicy, "policy id to index")
	cmd.Flags().Int("max-retries", blockfrost.DefaultMaxRetries, "retries for rate limited requests")
	cmd.Flags().Duration("retry-backoff", blockfrost.DefaultRetryBackoff, "initial backoff for rate limited requests")
	cmd.Flags().Float64("rate-limit", blockfrost.DefaultRateLimit, "requests per second (0 disables)")
	cmd.Flags().Int("rate-burst", blockfrost.DefaultRateBurst, "request burst size")
	cmd.Flags().Duration("http-timeout", blockfrost.DefaultTimeout, "HTTP request timeout")
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", config.StoreLevelDB, "cache backend (leveldb, postgres, file, memory)")
	cmd.Flags().String("leveldb-path", "./data/cache.db", "LevelDB directory")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("state-file", "./data/cache.json", "JSON state file for the file store")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := newRunner(cfg, store, logger)
	if err != nil {
		return err
	}

	logger.Info("indexer start",
		zap.String("api_url", cfg.APIURL),
		zap.String("policy", cfg.Policy),
		zap.String("store", cfg.Store),
		zap.Duration("interval", cfg.Interval),
		zap.String("listen", cfg.Listen),
	)

	if cfg.Listen != "" {
		reader := storage.NewState(store, logger)
		go func() {
			if err := serveAPI(ctx, cfg.Listen, reader, cfg.CacheTTL, logger); err != nil {
				logger.Error("query api stopped", zap.Error(err))
				stop()
			}
		}()
	}

	return indexer.NewScheduler(runner, cfg.Interval, logger).Run(ctx)
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := newRunner(cfg, store, logger)
	if err != nil {
		return err
	}

	logger.Info("sync start", zap.String("policy", cfg.Policy), zap.String("store", cfg.Store))
	if _, err := runner.RunCycle(ctx); err != nil {
		return fmt.Errorf("ingestion cycle: %w", err)
	}
	return nil
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}

	if err := cfg.ValidateStore(); err != nil {
		logger.Sync()
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newRunner(cfg config.Config, store storage.Store, logger *zap.Logger) (*indexer.Runner, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("blockfrost project id is required")
	}
	if err := config.ParsePolicyID(cfg.Policy); err != nil {
		return nil, err
	}

	client, err := blockfrost.NewClient(blockfrost.Options{
		BaseURL:      cfg.APIURL,
		ProjectID:    cfg.ProjectID,
		Timeout:      cfg.HTTPTimeout,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	})
	if err != nil {
		return nil, err
	}

	return indexer.NewRunner(indexer.RunConfig{Policy: cfg.Policy}, client, store, logger), nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
