package ergo

import (
	"context"
	"path/filepath"
	"testing"

	"rosenIndexer/internal/extractor"
	"rosenIndexer/internal/model"
	"rosenIndexer/internal/storage/sqlstore"
	"rosenIndexer/internal/tokens"
)

func TestExtractorStoresAndReprocesses(t *testing.T) {
	ctx := context.Background()
	store, err := sqlstore.Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "rosen.db"), sqlstore.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	e, err := NewExtractor("", store, tokens.Fixed{TokenID: "asset1ada"}, Mainnet, extractor.Options{})
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	if e.ID() != DefaultExtractorID {
		t.Fatalf("id mismatch: %s", e.ID())
	}

	txs := []Transaction{observationTx("tx1", true), observationTx("tx2", false)}
	for _, block := range []model.Block{{Hash: "block1", Height: 3}, {Hash: "block1b", Height: 3}} {
		ok, err := e.ProcessTransactions(ctx, txs, block)
		if err != nil || !ok {
			t.Fatalf("process %s: ok=%v err=%v", block.Hash, ok, err)
		}
	}

	rows, err := store.ListObservations(ctx, DefaultExtractorID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count mismatch: %d", len(rows))
	}
	if rows[0].Block != "block1b" || rows[0].SourceBlockID != "block1b" {
		t.Fatalf("row not moved to latest block: %+v", rows[0])
	}
	if rows[0].Status != model.StatusNotCommitted {
		t.Fatalf("status mismatch: %v", rows[0].Status)
	}
}
