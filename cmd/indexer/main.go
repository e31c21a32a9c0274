package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Rosen bridge observation indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Replay a block feed and store bridge observations",
		RunE:  runIngest,
	}

	ingestCmd.Flags().String("chain", "", "source chain (cardano, ergo)")
	ingestCmd.Flags().String("in", "", "input block feed JSONL")
	ingestCmd.Flags().String("db-dsn", "", "Postgres DSN, or sqlite:<path>")
	ingestCmd.Flags().String("extractor-id", "", "writer id stamped on stored rows (default per chain)")
	ingestCmd.Flags().String("token-map", "", "token map file (YAML or JSON)")
	ingestCmd.Flags().String("state-file", "", "optional local state file; progress is kept in the database otherwise")
	ingestCmd.Flags().Uint64("from-height", 0, "first block height to process")
	ingestCmd.Flags().Bool("resume", true, "skip blocks up to the recorded progress")
	ingestCmd.Flags().Int("max-retries", 5, "maximum retry attempts per block")
	ingestCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	ingestCmd.Flags().Duration("store-timeout", 30*time.Second, "timeout of one store operation")
	ingestCmd.Flags().Bool("init-schema", false, "create tables before ingesting")
	ingestCmd.Flags().String("ergo-network", "mainnet", "ergo address network (mainnet, testnet)")
	ingestCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	ingestCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(ingestCmd)

	forkCmd := &cobra.Command{
		Use:   "fork",
		Short: "Remove the observations an extractor stored for a retracted block",
		RunE:  runFork,
	}

	forkCmd.Flags().String("chain", "", "source chain (cardano, ergo)")
	forkCmd.Flags().String("block", "", "retracted block hash")
	forkCmd.Flags().String("db-dsn", "", "Postgres DSN, or sqlite:<path>")
	forkCmd.Flags().String("extractor-id", "", "writer id (default per chain)")
	forkCmd.Flags().Duration("store-timeout", 30*time.Second, "timeout of one store operation")
	forkCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(forkCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored observations to JSONL",
		RunE:  runExport,
	}

	exportCmd.Flags().String("db-dsn", "", "Postgres DSN, or sqlite:<path>")
	exportCmd.Flags().String("extractor-id", "", "only export rows of this writer")
	exportCmd.Flags().String("out", "./data/observations.jsonl", "output JSONL path")
	exportCmd.Flags().Duration("store-timeout", 30*time.Second, "timeout of one store operation")
	exportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(exportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
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
