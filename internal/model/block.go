package model

import "encoding/json"

// Block identifies the source-chain block a batch of transactions came from.
type Block struct {
	Hash   string `json:"hash"`
	Height uint64 `json:"height"`
}

// Block record kinds in a replay feed.
const (
	RecordBlock = "block"
	RecordFork  = "fork"
)

// BlockRecord is one line of a replay feed. Transactions stay raw until the
// chain-specific extractor decodes them.
type BlockRecord struct {
	Type         string            `json:"type,omitempty"`
	Hash         string            `json:"hash"`
	Height       uint64            `json:"height"`
	Transactions []json.RawMessage `json:"transactions,omitempty"`
}

// Kind returns the record type, defaulting to RecordBlock.
func (r BlockRecord) Kind() string {
	if r.Type == "" {
		return RecordBlock
	}
	return r.Type
}

// Block returns the block reference of the record.
func (r BlockRecord) Block() Block {
	return Block{Hash: r.Hash, Height: r.Height}
}
