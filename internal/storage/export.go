package storage

import (
	"context"
	"fmt"
)

const exportBatchSize = 500

// Export copies the extractor's persisted observations to sink in id order.
// An empty extractor exports every row.
func Export(ctx context.Context, reader ObservationReader, extractor string, sink Sink) (int, error) {
	rows, err := reader.ListObservations(ctx, extractor)
	if err != nil {
		return 0, err
	}
	written := 0
	for start := 0; start < len(rows); start += exportBatchSize {
		end := min(start+exportBatchSize, len(rows))
		if err := sink.PutObservations(rows[start:end]); err != nil {
			return written, fmt.Errorf("write observations: %w", err)
		}
		written = end
	}
	return written, nil
}
