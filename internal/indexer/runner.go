package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"rosenIndexer/internal/extractor"
	"rosenIndexer/internal/model"
)

var errBlockNotStored = errors.New("block not stored")

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	FromHeight   uint64
	Resume       bool
	MaxRetries   int
	RetryBackoff time.Duration
}

// Summary reports what a replay did.
type Summary struct {
	Blocks    int
	Forks     int
	Skipped   int
	LastBlock model.Block
}

// Runner replays a block feed through an extractor.
type Runner[T any] struct {
	cfg       RunConfig
	extractor extractor.Extractor[T]
	state     StateStore
	logger    *zap.Logger
}

// NewRunner builds a Runner. state may be nil to run without progress tracking.
func NewRunner[T any](cfg RunConfig, ex extractor.Extractor[T], state StateStore, logger *zap.Logger) *Runner[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner[T]{
		cfg:       cfg,
		extractor: ex,
		state:     state,
		logger:    logger,
	}
}

// Run processes every record of the feed. Blocks the store rejects are
// retried with backoff; an assembly error or exhausted retries stop the run.
func (r *Runner[T]) Run(ctx context.Context, feed io.Reader) (Summary, error) {
	var summary Summary
	if r.extractor == nil {
		return summary, fmt.Errorf("extractor is nil")
	}

	from, err := r.startHeight(ctx)
	if err != nil {
		return summary, err
	}

	err = ReadFeed(feed, func(record model.BlockRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if record.Kind() == model.RecordFork {
			if err := r.fork(ctx, record.Block(), &from); err != nil {
				return err
			}
			summary.Forks++
			return nil
		}

		if record.Height < from {
			summary.Skipped++
			return nil
		}
		block := record.Block()
		if err := r.process(ctx, record, block); err != nil {
			return err
		}
		summary.Blocks++
		summary.LastBlock = block
		return nil
	})
	if err != nil {
		return summary, err
	}

	r.logger.Info("replay complete",
		zap.String("extractor", r.extractor.ID()),
		zap.Int("blocks", summary.Blocks),
		zap.Int("forks", summary.Forks),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (r *Runner[T]) startHeight(ctx context.Context) (uint64, error) {
	from := r.cfg.FromHeight
	if !r.cfg.Resume || r.state == nil {
		return from, nil
	}
	last, ok, err := r.state.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return from, nil
	}
	next := last.Height + 1
	if last.Hash == "" {
		next = last.Height
	}
	if next > from {
		from = next
	}
	r.logger.Info("resume from state",
		zap.String("extractor", r.extractor.ID()),
		zap.Uint64("last_height", last.Height),
		zap.String("last_block", last.Hash),
		zap.Uint64("from", from),
	)
	return from, nil
}

func (r *Runner[T]) process(ctx context.Context, record model.BlockRecord, block model.Block) error {
	txs, err := decodeTransactions[T](record.Transactions)
	if err != nil {
		return fmt.Errorf("block %s: %w", block.Hash, err)
	}

	attempts := 0
	err = withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		attempts++
		ok, err := r.extractor.ProcessTransactions(ctx, txs, block)
		if err != nil {
			return permanent(err)
		}
		if !ok {
			r.logger.Warn("block not stored, retrying",
				zap.String("block", block.Hash),
				zap.Uint64("height", block.Height),
				zap.Int("attempt", attempts),
			)
			return errBlockNotStored
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("process block %s after %d attempts: %w", block.Hash, attempts, err)
	}

	if r.state != nil {
		if err := r.state.Save(ctx, block); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	return nil
}

// fork removes the block's observations. When the block is the last one
// recorded in the state, the state is rewound so its replacement is replayed.
func (r *Runner[T]) fork(ctx context.Context, block model.Block, from *uint64) error {
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := r.extractor.ForkBlock(ctx, block.Hash)
		if err != nil {
			r.logger.Warn("fork block failed", zap.String("block", block.Hash), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("fork block %s: %w", block.Hash, err)
	}

	if r.state == nil {
		return nil
	}
	last, ok, err := r.state.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if ok && last.Hash == block.Hash {
		if err := r.state.Save(ctx, model.Block{Height: last.Height}); err != nil {
			return fmt.Errorf("rewind state: %w", err)
		}
		if last.Height < *from {
			*from = last.Height
		}
		r.logger.Info("state rewound", zap.String("block", block.Hash), zap.Uint64("next_height", last.Height))
	}
	return nil
}

func decodeTransactions[T any](raw []json.RawMessage) ([]T, error) {
	txs := make([]T, 0, len(raw))
	for i, item := range raw {
		var tx T
		if err := json.Unmarshal(item, &tx); err != nil {
			return nil, fmt.Errorf("decode transaction %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
