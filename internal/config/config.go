package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ChainCardano = "cardano"
	ChainErgo    = "ergo"
)

// IngestConfig holds configuration for replaying a block feed into the store.
type IngestConfig struct {
	Chain        string
	Input        string
	DBDSN        string
	ExtractorID  string
	TokenMap     string
	StateFile    string
	FromHeight   uint64
	Resume       bool
	MaxRetries   int
	RetryBackoff time.Duration
	StoreTimeout time.Duration
	InitSchema   bool
	ErgoNetwork  string
	MetricsAddr  string
	LogLevel     string
}

// ForkConfig holds configuration for rolling back one block.
type ForkConfig struct {
	Chain        string
	Block        string
	DBDSN        string
	ExtractorID  string
	StoreTimeout time.Duration
	LogLevel     string
}

// ExportConfig holds configuration for exporting persisted observations.
type ExportConfig struct {
	DBDSN        string
	ExtractorID  string
	Out          string
	StoreTimeout time.Duration
	LogLevel     string
}

// LoadIngest merges config file, environment variables, and flags into IngestConfig.
func LoadIngest(cfgFile string, flags *pflag.FlagSet) (IngestConfig, error) {
	v, err := load(cfgFile, flags, map[string]any{
		"resume":        true,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"init-schema":   false,
		"ergo-network":  "mainnet",
	})
	if err != nil {
		return IngestConfig{}, err
	}

	cfg := IngestConfig{
		Chain:        strings.ToLower(v.GetString("chain")),
		Input:        v.GetString("in"),
		DBDSN:        v.GetString("db-dsn"),
		ExtractorID:  v.GetString("extractor-id"),
		TokenMap:     v.GetString("token-map"),
		StateFile:    v.GetString("state-file"),
		FromHeight:   v.GetUint64("from-height"),
		Resume:       v.GetBool("resume"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		StoreTimeout: v.GetDuration("store-timeout"),
		InitSchema:   v.GetBool("init-schema"),
		ErgoNetwork:  v.GetString("ergo-network"),
		MetricsAddr:  v.GetString("metrics-addr"),
		LogLevel:     v.GetString("log-level"),
	}
	if err := validateChain(cfg.Chain); err != nil {
		return IngestConfig{}, err
	}
	if cfg.Input == "" {
		return IngestConfig{}, fmt.Errorf("input path is required")
	}
	if cfg.DBDSN == "" {
		return IngestConfig{}, fmt.Errorf("db dsn is required")
	}
	if cfg.TokenMap == "" {
		return IngestConfig{}, fmt.Errorf("token map path is required")
	}
	if cfg.MaxRetries < 0 {
		return IngestConfig{}, fmt.Errorf("max retries must not be negative")
	}
	return cfg, nil
}

// LoadFork merges config file, environment variables, and flags into ForkConfig.
func LoadFork(cfgFile string, flags *pflag.FlagSet) (ForkConfig, error) {
	v, err := load(cfgFile, flags, nil)
	if err != nil {
		return ForkConfig{}, err
	}

	cfg := ForkConfig{
		Chain:        strings.ToLower(v.GetString("chain")),
		Block:        v.GetString("block"),
		DBDSN:        v.GetString("db-dsn"),
		ExtractorID:  v.GetString("extractor-id"),
		StoreTimeout: v.GetDuration("store-timeout"),
		LogLevel:     v.GetString("log-level"),
	}
	if err := validateChain(cfg.Chain); err != nil {
		return ForkConfig{}, err
	}
	if cfg.Block == "" {
		return ForkConfig{}, fmt.Errorf("block hash is required")
	}
	if cfg.DBDSN == "" {
		return ForkConfig{}, fmt.Errorf("db dsn is required")
	}
	return cfg, nil
}

// LoadExport merges config file, environment variables, and flags into ExportConfig.
func LoadExport(cfgFile string, flags *pflag.FlagSet) (ExportConfig, error) {
	v, err := load(cfgFile, flags, map[string]any{
		"out": "./data/observations.jsonl",
	})
	if err != nil {
		return ExportConfig{}, err
	}

	cfg := ExportConfig{
		DBDSN:        v.GetString("db-dsn"),
		ExtractorID:  v.GetString("extractor-id"),
		Out:          v.GetString("out"),
		StoreTimeout: v.GetDuration("store-timeout"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.DBDSN == "" {
		return ExportConfig{}, fmt.Errorf("db dsn is required")
	}
	if cfg.Out == "" {
		return ExportConfig{}, fmt.Errorf("output path is required")
	}
	return cfg, nil
}

func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store-timeout", 30*time.Second)
	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func validateChain(chain string) error {
	switch chain {
	case ChainCardano, ChainErgo:
		return nil
	case "":
		return fmt.Errorf("chain is required")
	default:
		return fmt.Errorf("unsupported chain %q", chain)
	}
}
