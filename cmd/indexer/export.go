package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rosenIndexer/internal/config"
	"rosenIndexer/internal/storage"
	"rosenIndexer/internal/storage/sqlstore"
)

func runExport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadExport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlstore.Open(ctx, cfg.DBDSN, sqlstore.Options{Timeout: cfg.StoreTimeout, Logger: logger})
	if err != nil {
		return err
	}
	defer store.Close()

	// The JSONL sink appends; an export always starts from an empty file.
	if err := os.Remove(cfg.Out); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove previous export: %w", err)
	}

	n, err := storage.Export(ctx, store, cfg.ExtractorID, storage.NewJsonlStorage(cfg.Out))
	if err != nil {
		return err
	}
	logger.Info("export complete",
		zap.String("extractor", cfg.ExtractorID),
		zap.String("out", cfg.Out),
		zap.Int("observations", n),
	)
	return nil
}
