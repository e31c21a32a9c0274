package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rosenIndexer/internal/chain/cardano"
	"rosenIndexer/internal/chain/ergo"
	"rosenIndexer/internal/config"
	"rosenIndexer/internal/extractor"
	"rosenIndexer/internal/indexer"
	"rosenIndexer/internal/metrics"
	"rosenIndexer/internal/storage/sqlstore"
	"rosenIndexer/internal/tokens"
)

func runIngest(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIngest(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	resolver, err := tokens.LoadTokenMap(cfg.TokenMap)
	if err != nil {
		return err
	}

	feed, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer feed.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlstore.Open(ctx, cfg.DBDSN, sqlstore.Options{Timeout: cfg.StoreTimeout, Logger: logger})
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.InitSchema {
		if err := store.Init(ctx); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := extractor.Options{Metrics: metrics.New(reg), Logger: logger}
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runCfg := indexer.RunConfig{
		FromHeight:   cfg.FromHeight,
		Resume:       cfg.Resume,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}

	logger.Info("ingest start",
		zap.String("chain", cfg.Chain),
		zap.String("in", cfg.Input),
		zap.String("dialect", string(store.Dialect())),
		zap.Int("tokens", resolver.Len()),
		zap.Uint64("from_height", cfg.FromHeight),
		zap.Bool("resume", cfg.Resume),
	)

	var summary indexer.Summary
	switch cfg.Chain {
	case config.ChainCardano:
		ex, err := cardano.NewExtractor(cfg.ExtractorID, store, resolver, opts)
		if err != nil {
			return err
		}
		summary, err = replay[cardano.Transaction](ctx, runCfg, ex, stateStore(cfg, store, ex.ID()), feed, logger)
		if err != nil {
			return err
		}
	case config.ChainErgo:
		network, err := ergo.ParseNetwork(cfg.ErgoNetwork)
		if err != nil {
			return err
		}
		ex, err := ergo.NewExtractor(cfg.ExtractorID, store, resolver, network, opts)
		if err != nil {
			return err
		}
		summary, err = replay[ergo.Transaction](ctx, runCfg, ex, stateStore(cfg, store, ex.ID()), feed, logger)
		if err != nil {
			return err
		}
	}

	logger.Info("ingest complete",
		zap.Int("blocks", summary.Blocks),
		zap.Int("forks", summary.Forks),
		zap.Int("skipped", summary.Skipped),
		zap.String("last_block", summary.LastBlock.Hash),
		zap.Uint64("last_height", summary.LastBlock.Height),
	)
	return nil
}

func replay[T any](ctx context.Context, cfg indexer.RunConfig, ex extractor.Extractor[T], state indexer.StateStore, feed io.Reader, logger *zap.Logger) (indexer.Summary, error) {
	return indexer.NewRunner[T](cfg, ex, state, logger).Run(ctx, feed)
}

func stateStore(cfg config.IngestConfig, store *sqlstore.Store, name string) indexer.StateStore {
	if cfg.StateFile != "" {
		return indexer.NewFileStateStore(cfg.StateFile)
	}
	return indexer.NewDBStateStore(store, name)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))
	return srv
}
