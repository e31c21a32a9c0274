package storage

import (
	"context"
	"errors"

	"rosenIndexer/internal/model"
)

// ErrPersistence wraps every failure to commit a batch. The batch was rolled
// back and may be retried as a whole.
var ErrPersistence = errors.New("persist observations")

// ObservationStore persists observations keyed by (request id, extractor).
type ObservationStore interface {
	// SaveObservations upserts the batch atomically, stamping each row with
	// the block and extractor. An empty batch is a no-op.
	SaveObservations(ctx context.Context, observations []model.Observation, block model.Block, extractor string) error
	// DeleteBlockObservations removes the rows the extractor wrote for a block.
	DeleteBlockObservations(ctx context.Context, blockHash, extractor string) error
}

// ObservationReader reads persisted observations.
type ObservationReader interface {
	ListObservations(ctx context.Context, extractor string) ([]model.PersistedObservation, error)
}

// Sink writes persisted observations somewhere outside the store.
type Sink interface {
	PutObservations(observations []model.PersistedObservation) error
}
