package extractor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rosenIndexer/internal/metrics"
	"rosenIndexer/internal/model"
	"rosenIndexer/internal/storage"
)

// Extractor is the contract a block scanner drives for one chain.
type Extractor[T any] interface {
	// ID is the stable writer id stamped on every row.
	ID() string
	// ProcessTransactions persists the block's observations. It reports false
	// with a nil error when the store failed and the block should be retried.
	ProcessTransactions(ctx context.Context, txs []T, block model.Block) (bool, error)
	// ForkBlock removes what this extractor stored for a retracted block.
	ForkBlock(ctx context.Context, hash string) error
}

// Assembler builds observations from a block's transactions.
type Assembler[T any] interface {
	Assemble(txs []T, block model.Block) ([]model.Observation, error)
}

type Options struct {
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// ObservationExtractor wires an assembler to an observation store.
type ObservationExtractor[T any] struct {
	id        string
	assembler Assembler[T]
	store     storage.ObservationStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

var _ Extractor[struct{}] = (*ObservationExtractor[struct{}])(nil)

func New[T any](id string, assembler Assembler[T], store storage.ObservationStore, opts Options) (*ObservationExtractor[T], error) {
	if id == "" {
		return nil, fmt.Errorf("extractor id is required")
	}
	if assembler == nil {
		return nil, fmt.Errorf("assembler is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("observation store is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObservationExtractor[T]{
		id:        id,
		assembler: assembler,
		store:     store,
		metrics:   opts.Metrics,
		logger:    logger.With(zap.String("extractor", id)),
	}, nil
}

func (e *ObservationExtractor[T]) ID() string {
	return e.id
}

func (e *ObservationExtractor[T]) ProcessTransactions(ctx context.Context, txs []T, block model.Block) (bool, error) {
	start := time.Now()
	observations, err := e.assembler.Assemble(txs, block)
	if err != nil {
		e.metrics.ObserveSave(e.id, 0, false, time.Since(start))
		return false, fmt.Errorf("assemble block %s: %w", block.Hash, err)
	}

	if err := e.store.SaveObservations(ctx, observations, block, e.id); err != nil {
		e.metrics.ObserveSave(e.id, len(observations), false, time.Since(start))
		e.logger.Warn("block not stored",
			zap.String("block", block.Hash),
			zap.Uint64("height", block.Height),
			zap.Error(err),
		)
		return false, nil
	}

	e.metrics.ObserveSave(e.id, len(observations), true, time.Since(start))
	e.logger.Info("block processed",
		zap.String("block", block.Hash),
		zap.Uint64("height", block.Height),
		zap.Int("transactions", len(txs)),
		zap.Int("observations", len(observations)),
	)
	return true, nil
}

func (e *ObservationExtractor[T]) ForkBlock(ctx context.Context, hash string) error {
	if err := e.store.DeleteBlockObservations(ctx, hash, e.id); err != nil {
		e.metrics.ObserveFork(e.id, false)
		return fmt.Errorf("fork block %s: %w", hash, err)
	}
	e.metrics.ObserveFork(e.id, true)
	e.logger.Info("block forked", zap.String("block", hash))
	return nil
}
