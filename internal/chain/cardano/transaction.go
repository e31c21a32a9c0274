package cardano

import "encoding/json"

// ChainName is the chain name used in observations and token maps.
const ChainName = "cardano"

// Transaction is a Koios tx_info transaction.
type Transaction struct {
	TxHash      string          `json:"tx_hash"`
	BlockHash   string          `json:"block_hash,omitempty"`
	BlockHeight uint64          `json:"block_height,omitempty"`
	Inputs      []TxIO          `json:"inputs"`
	Outputs     []TxIO          `json:"outputs"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// TxIO is a transaction input or output.
type TxIO struct {
	PaymentAddr PaymentAddr `json:"payment_addr"`
	TxHash      string      `json:"tx_hash,omitempty"`
	TxIndex     uint32      `json:"tx_index"`
	Value       string      `json:"value"`
	AssetList   []Asset     `json:"asset_list"`
}

// PaymentAddr is the payment part of an address.
type PaymentAddr struct {
	Bech32 string `json:"bech32"`
	Cred   string `json:"cred"`
}

// Asset is a native asset carried by an output.
type Asset struct {
	PolicyID    string `json:"policy_id"`
	AssetName   string `json:"asset_name"`
	Fingerprint string `json:"fingerprint"`
	Quantity    string `json:"quantity"`
}

// MetadataEntry is one labelled metadata value in the Koios list form.
type MetadataEntry struct {
	Key  json.RawMessage `json:"key"`
	JSON json.RawMessage `json:"json"`
}
