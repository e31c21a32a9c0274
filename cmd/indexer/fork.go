package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rosenIndexer/internal/chain/cardano"
	"rosenIndexer/internal/chain/ergo"
	"rosenIndexer/internal/config"
	"rosenIndexer/internal/extractor"
	"rosenIndexer/internal/storage/sqlstore"
	"rosenIndexer/internal/tokens"
)

func runFork(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFork(cfgFile, cmd.Flags())
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

	// Rollback never assembles, so no token map is needed.
	opts := extractor.Options{Logger: logger}
	var forker interface {
		ID() string
		ForkBlock(ctx context.Context, hash string) error
	}
	switch cfg.Chain {
	case config.ChainCardano:
		forker, err = cardano.NewExtractor(cfg.ExtractorID, store, tokens.Fixed{}, opts)
	case config.ChainErgo:
		forker, err = ergo.NewExtractor(cfg.ExtractorID, store, tokens.Fixed{}, ergo.Mainnet, opts)
	}
	if err != nil {
		return err
	}

	if err := forker.ForkBlock(ctx, cfg.Block); err != nil {
		return err
	}
	logger.Info("fork complete", zap.String("extractor", forker.ID()), zap.String("block", cfg.Block))
	return nil
}
