package model

// BridgeIntent is the bridge request carried by a transaction's auxiliary data.
type BridgeIntent struct {
	ToChain    string `json:"to_chain"`
	ToAddress  string `json:"to_address"`
	BridgeFee  string `json:"bridge_fee"`
	NetworkFee string `json:"network_fee"`
}

// Observation is the chain-agnostic form of a bridge request seen on a source chain.
type Observation struct {
	FromChain          string `json:"from_chain"`
	ToChain            string `json:"to_chain"`
	FromAddress        string `json:"from_address"`
	ToAddress          string `json:"to_address"`
	Amount             string `json:"amount"`
	BridgeFee          string `json:"bridge_fee"`
	NetworkFee         string `json:"network_fee"`
	SourceChainTokenID string `json:"source_chain_token_id"`
	TargetChainTokenID string `json:"target_chain_token_id"`
	SourceTxID         string `json:"source_tx_id"`
	SourceBlockID      string `json:"source_block_id"`
	RequestID          string `json:"request_id"`
}

// PersistedObservation is an observation row as stored, with block provenance
// and the extractor that wrote it.
type PersistedObservation struct {
	ID                 int64    `json:"id" db:"id"`
	FromChain          string   `json:"from_chain" db:"from_chain"`
	ToChain            string   `json:"to_chain" db:"to_chain"`
	FromAddress        string   `json:"from_address" db:"from_address"`
	ToAddress          string   `json:"to_address" db:"to_address"`
	Height             uint64   `json:"height" db:"height"`
	Amount             string   `json:"amount" db:"amount"`
	NetworkFee         string   `json:"network_fee" db:"network_fee"`
	BridgeFee          string   `json:"bridge_fee" db:"bridge_fee"`
	SourceChainTokenID string   `json:"source_chain_token_id" db:"source_chain_token_id"`
	TargetChainTokenID string   `json:"target_chain_token_id" db:"target_chain_token_id"`
	SourceTxID         string   `json:"source_tx_id" db:"source_tx_id"`
	SourceBlockID      string   `json:"source_block_id" db:"source_block_id"`
	RequestID          string   `json:"request_id" db:"request_id"`
	Block              string   `json:"block" db:"block"`
	Status             TxStatus `json:"status" db:"status"`
	Extractor          string   `json:"extractor" db:"extractor"`
}

// Observation returns the canonical part of the row.
func (p PersistedObservation) Observation() Observation {
	return Observation{
		FromChain:          p.FromChain,
		ToChain:            p.ToChain,
		FromAddress:        p.FromAddress,
		ToAddress:          p.ToAddress,
		Amount:             p.Amount,
		BridgeFee:          p.BridgeFee,
		NetworkFee:         p.NetworkFee,
		SourceChainTokenID: p.SourceChainTokenID,
		TargetChainTokenID: p.TargetChainTokenID,
		SourceTxID:         p.SourceTxID,
		SourceBlockID:      p.SourceBlockID,
		RequestID:          p.RequestID,
	}
}
