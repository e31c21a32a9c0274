package ergo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChainName is the chain name used in observations and token maps.
const ChainName = "ergo"

// Transaction is an Ergo transaction in node or explorer JSON form.
type Transaction struct {
	ID      string  `json:"id"`
	Inputs  []Input `json:"inputs"`
	Outputs []Box   `json:"outputs"`
}

// Input is a spent box reference. Explorer responses also carry the spent
// box's address and ergoTree.
type Input struct {
	BoxID    string `json:"boxId"`
	Address  string `json:"address,omitempty"`
	ErgoTree string `json:"ergoTree,omitempty"`
}

// Box is a transaction output.
type Box struct {
	BoxID               string              `json:"boxId"`
	TransactionID       string              `json:"transactionId"`
	Index               uint32              `json:"index"`
	Value               uint64              `json:"value"`
	ErgoTree            string              `json:"ergoTree"`
	Assets              []Token             `json:"assets"`
	AdditionalRegisters map[string]Register `json:"additionalRegisters"`
}

// Token is an asset carried by a box.
type Token struct {
	TokenID string `json:"tokenId"`
	Amount  uint64 `json:"amount"`
}

// Register holds a serialized register value. Nodes encode registers as a
// hex string; explorers wrap it in an object with serializedValue.
type Register struct {
	SerializedValue string `json:"serializedValue"`
}

func (r *Register) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.SerializedValue)
	}
	type explorerRegister struct {
		SerializedValue string `json:"serializedValue"`
	}
	var wrapped explorerRegister
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("decode register: %w", err)
	}
	r.SerializedValue = wrapped.SerializedValue
	return nil
}
