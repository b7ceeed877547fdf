package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultPolicy is the bitbots minting policy id.
const DefaultPolicy = "ba3afde69bb939ae4439c36d220e6b2686c6d3091bbc763ac0a1679c"

// Store backends.
const (
	StoreLevelDB  = "leveldb"
	StorePostgres = "postgres"
	StoreFile     = "file"
	StoreMemory   = "memory"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	ProjectID    string
	APIURL       string
	Policy       string
	Store        string
	LevelDBPath  string
	PGDSN        string
	StateFile    string
	Interval     time.Duration
	Listen       string
	CacheTTL     time.Duration
	Out          string
	MaxRetries   int
	RetryBackoff time.Duration
	RateLimit    float64
	RateBurst    int
	HTTPTimeout  time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BITBOTS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api-url", "https://cardano-mainnet.blockfrost.io/api/v0")
	v.SetDefault("policy", DefaultPolicy)
	v.SetDefault("store", StoreLevelDB)
	v.SetDefault("leveldb-path", "./data/cache.db")
	v.SetDefault("state-file", "./data/cache.json")
	v.SetDefault("interval", 5*time.Minute)
	v.SetDefault("cache-ttl", 5*time.Second)
	v.SetDefault("out", "./data/bitbots.jsonl")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", time.Second)
	v.SetDefault("rate-limit", 10.0)
	v.SetDefault("rate-burst", 500)
	v.SetDefault("http-timeout", 30*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ProjectID:    v.GetString("project-id"),
		APIURL:       v.GetString("api-url"),
		Policy:       strings.ToLower(strings.TrimSpace(v.GetString("policy"))),
		Store:        strings.ToLower(v.GetString("store")),
		LevelDBPath:  v.GetString("leveldb-path"),
		PGDSN:        v.GetString("pg-dsn"),
		StateFile:    v.GetString("state-file"),
		Interval:     v.GetDuration("interval"),
		Listen:       v.GetString("listen"),
		CacheTTL:     v.GetDuration("cache-ttl"),
		Out:          v.GetString("out"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		RateLimit:    v.GetFloat64("rate-limit"),
		RateBurst:    v.GetInt("rate-burst"),
		HTTPTimeout:  v.GetDuration("http-timeout"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// ValidateStore checks that the selected backend has what it needs.
func (c Config) ValidateStore() error {
	switch c.Store {
	case StoreLevelDB:
		if c.LevelDBPath == "" {
			return fmt.Errorf("leveldb path is required")
		}
	case StorePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg dsn is required")
		}
	case StoreFile:
		if c.StateFile == "" {
			return fmt.Errorf("state file is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}
