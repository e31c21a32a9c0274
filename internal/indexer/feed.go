package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"rosenIndexer/internal/model"
)

// ReadFeed decodes block records from a JSON lines stream and hands them to
// fn in order. A missing record type means a block.
func ReadFeed(r io.Reader, fn func(model.BlockRecord) error) error {
	dec := json.NewDecoder(r)
	for index := 0; ; index++ {
		var record model.BlockRecord
		if err := dec.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode record %d: %w", index, err)
		}
		if record.Hash == "" {
			return fmt.Errorf("record %d: block hash is required", index)
		}
		switch record.Kind() {
		case model.RecordBlock, model.RecordFork:
		default:
			return fmt.Errorf("record %d: unknown type %q", index, record.Type)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}
