package ergo

import (
	"testing"

	"rosenIndexer/internal/model"
	"rosenIndexer/internal/observation"
	"rosenIndexer/internal/tokens"
)

const bridgedToken = "f6a69529b12a7e2326acffee8383e0c44408f87a872886fadf410fe8498006d3"

func observationTx(id string, withToken bool) Transaction {
	var assets []Token
	if withToken {
		assets = []Token{{TokenID: bridgedToken, Amount: 1500}}
	}
	box := lockBox(validR4, assets...)
	box.TransactionID = id
	return Transaction{
		ID:      id,
		Inputs:  []Input{{BoxID: "in1", ErgoTree: p2pkTree}},
		Outputs: []Box{{BoxID: "change", Value: 1000}, box},
	}
}

func TestAssemblerValidTransactions(t *testing.T) {
	assembler := NewAssembler(tokens.Fixed{TokenID: "asset1ada"}, Mainnet, nil)
	block := model.Block{Hash: "block1", Height: 3}

	txs := []Transaction{
		observationTx("tx1", true),
		observationTx("tx2", true),
		observationTx("tx3", false),
	}
	observations, err := assembler.Assemble(txs, block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("observation count mismatch: %d", len(observations))
	}

	want := model.Observation{
		FromChain:          ChainName,
		ToChain:            "cardano",
		FromAddress:        "9gmNsqrqdSppLUBqg2UzREmmivgqh1r3jmNcLAc53hk3YCvAGWE",
		ToAddress:          "addr_test1qz",
		Amount:             "1500",
		BridgeFee:          "1000",
		NetworkFee:         "10000",
		SourceChainTokenID: bridgedToken,
		TargetChainTokenID: "asset1ada",
		SourceTxID:         "tx1",
		SourceBlockID:      "block1",
		RequestID:          observation.RequestID("tx1"),
	}
	if observations[0] != want {
		t.Fatalf("observation mismatch:\n%+v\n%+v", observations[0], want)
	}
	if observations[1].RequestID == observations[0].RequestID {
		t.Fatalf("distinct txs share a request id")
	}
}

func TestAssemblerOneObservationPerTransaction(t *testing.T) {
	tx := observationTx("tx1", true)
	second := lockBox(validR4, Token{TokenID: bridgedToken, Amount: 99})
	tx.Outputs = append(tx.Outputs, second)

	assembler := NewAssembler(tokens.Fixed{TokenID: "asset1ada"}, Mainnet, nil)
	observations, err := assembler.Assemble([]Transaction{tx}, model.Block{Hash: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(observations) != 1 || observations[0].Amount != "1500" {
		t.Fatalf("expected first lock box only: %+v", observations)
	}
}

func TestAssemblerUsesExplorerInputAddress(t *testing.T) {
	tx := observationTx("tx1", true)
	tx.Inputs[0].Address = "9explorerAddress"

	assembler := NewAssembler(tokens.Fixed{TokenID: "asset1ada"}, Mainnet, nil)
	observations, err := assembler.Assemble([]Transaction{tx}, model.Block{Hash: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observations[0].FromAddress != "9explorerAddress" {
		t.Fatalf("from address mismatch: %s", observations[0].FromAddress)
	}
}

func TestAssemblerSkipsUnknownToken(t *testing.T) {
	assembler := NewAssembler(tokens.Fixed{}, Mainnet, nil)
	observations, err := assembler.Assemble([]Transaction{observationTx("tx1", true)}, model.Block{Hash: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(observations) != 0 {
		t.Fatalf("expected no observations, got %d", len(observations))
	}
}

func TestAssemblerBadInputTree(t *testing.T) {
	tx := observationTx("tx1", true)
	tx.Inputs[0].ErgoTree = "not-hex"

	assembler := NewAssembler(tokens.Fixed{TokenID: "asset1ada"}, Mainnet, nil)
	if _, err := assembler.Assemble([]Transaction{tx}, model.Block{Hash: "b"}); err == nil {
		t.Fatalf("expected error for undecodable input tree")
	}
}
