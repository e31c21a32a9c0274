package ergo

import (
	"rosenIndexer/internal/extractor"
	"rosenIndexer/internal/storage"
	"rosenIndexer/internal/tokens"
)

// DefaultExtractorID is the writer id used when none is configured.
const DefaultExtractorID = "ergo-node-observation-extractor"

// NewExtractor builds the node observation extractor. An empty id selects
// DefaultExtractorID.
func NewExtractor(id string, store storage.ObservationStore, resolver tokens.Resolver, network Network, opts extractor.Options) (*extractor.ObservationExtractor[Transaction], error) {
	if id == "" {
		id = DefaultExtractorID
	}
	return extractor.New[Transaction](id, NewAssembler(resolver, network, opts.Logger), store, opts)
}
