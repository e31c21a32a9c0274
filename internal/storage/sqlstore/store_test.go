package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosenIndexer/internal/model"
	"rosenIndexer/internal/storage"
)

const (
	cardanoExtractor = "cardano-koios-observation-extractor"
	ergoExtractor    = "ergo-node-observation-extractor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "observations.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Init(ctx))
	return store
}

func sampleObservation(requestID, toAddress string) model.Observation {
	return model.Observation{
		FromChain:          "cardano",
		ToChain:            "ergo",
		FromAddress:        "addr1sender",
		ToAddress:          toAddress,
		Amount:             "10",
		BridgeFee:          "1000",
		NetworkFee:         "10000",
		SourceChainTokenID: "asset1ada",
		TargetChainTokenID: "erg",
		SourceTxID:         "tx-" + requestID,
		SourceBlockID:      "block1",
		RequestID:          requestID,
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "", Options{})
	require.Error(t, err)

	_, err = Open(context.Background(), "sqlite:", Options{})
	require.Error(t, err)
}

func TestInitIsRepeatable(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Init(context.Background()))
	assert.Equal(t, DialectSQLite, store.Dialect())
}

func TestSaveObservationsNewRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	block := model.Block{Hash: "block1", Height: 3}

	batch := []model.Observation{sampleObservation("req1", "ergoAddr1"), sampleObservation("req2", "ergoAddr2")}
	require.NoError(t, store.SaveObservations(ctx, batch, block, cardanoExtractor))

	rows, err := store.ListObservations(ctx, cardanoExtractor)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for i, row := range rows {
		assert.Equal(t, batch[i], row.Observation())
		assert.Equal(t, "block1", row.Block)
		assert.Equal(t, uint64(3), row.Height)
		assert.Equal(t, model.StatusNotCommitted, row.Status)
		assert.Equal(t, cardanoExtractor, row.Extractor)
	}
	assert.Less(t, rows[0].ID, rows[1].ID)
}

func TestSaveObservationsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	block := model.Block{Hash: "block1", Height: 3}
	batch := []model.Observation{sampleObservation("req1", "ergoAddr1")}

	require.NoError(t, store.SaveObservations(ctx, batch, block, cardanoExtractor))
	first, err := store.ListObservations(ctx, cardanoExtractor)
	require.NoError(t, err)

	require.NoError(t, store.SaveObservations(ctx, batch, block, cardanoExtractor))
	second, err := store.ListObservations(ctx, cardanoExtractor)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSaveObservationsUpdatesExistingRow(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx,
		[]model.Observation{sampleObservation("req1", "A1")},
		model.Block{Hash: "block1", Height: 3}, cardanoExtractor))
	before, ok, err := store.FindObservation(ctx, "req1", cardanoExtractor)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.SaveObservations(ctx,
		[]model.Observation{sampleObservation("req1", "A2")},
		model.Block{Hash: "block2", Height: 4}, cardanoExtractor))

	rows, err := store.ListObservations(ctx, cardanoExtractor)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, before.ID, rows[0].ID)
	assert.Equal(t, "A2", rows[0].ToAddress)
	assert.Equal(t, "block2", rows[0].Block)
	assert.Equal(t, uint64(4), rows[0].Height)
}

func TestSaveObservationsKeepsStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	block := model.Block{Hash: "block1", Height: 3}
	batch := []model.Observation{sampleObservation("req1", "A1")}

	require.NoError(t, store.SaveObservations(ctx, batch, block, cardanoExtractor))
	_, err := store.db.ExecContext(ctx, `UPDATE observations SET status = ? WHERE request_id = ?`,
		int16(model.StatusCommitted), "req1")
	require.NoError(t, err)

	require.NoError(t, store.SaveObservations(ctx, []model.Observation{sampleObservation("req1", "A2")}, block, cardanoExtractor))

	row, ok, err := store.FindObservation(ctx, "req1", cardanoExtractor)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.StatusCommitted, row.Status)
	assert.Equal(t, "A2", row.ToAddress)
}

func TestSaveObservationsKeyedByExtractor(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	block := model.Block{Hash: "block1", Height: 3}
	batch := []model.Observation{sampleObservation("req1", "A1")}

	require.NoError(t, store.SaveObservations(ctx, batch, block, cardanoExtractor))
	require.NoError(t, store.SaveObservations(ctx, batch, block, ergoExtractor))

	all, err := store.ListObservations(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, cardanoExtractor, all[0].Extractor)
	assert.Equal(t, ergoExtractor, all[1].Extractor)
}

func TestSaveObservationsEmptyBatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, nil, model.Block{Hash: "block1", Height: 1}, cardanoExtractor))
	rows, err := store.ListObservations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSaveObservationsRequiresExtractor(t *testing.T) {
	store := openTestStore(t)
	err := store.SaveObservations(context.Background(),
		[]model.Observation{sampleObservation("req1", "A1")}, model.Block{Hash: "block1"}, "")
	require.ErrorIs(t, err, storage.ErrPersistence)
}

func TestSaveObservationsIsAtomic(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	block := model.Block{Hash: "block1", Height: 3}

	bad := sampleObservation("", "A3")
	batch := []model.Observation{sampleObservation("req1", "A1"), sampleObservation("req2", "A2"), bad}
	err := store.SaveObservations(ctx, batch, block, cardanoExtractor)
	require.ErrorIs(t, err, storage.ErrPersistence)

	rows, err := store.ListObservations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSaveObservationsRejectsLongChainName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	obs := sampleObservation("req1", "A1")
	obs.ToChain = strings.Repeat("x", 31)
	err := store.SaveObservations(ctx, []model.Observation{obs}, model.Block{Hash: "block1"}, cardanoExtractor)
	require.ErrorIs(t, err, storage.ErrPersistence)
}

func TestDeleteBlockObservationsScoped(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	block1 := model.Block{Hash: "block1", Height: 3}
	block2 := model.Block{Hash: "block2", Height: 4}

	require.NoError(t, store.SaveObservations(ctx, []model.Observation{sampleObservation("req1", "A1")}, block1, cardanoExtractor))
	require.NoError(t, store.SaveObservations(ctx, []model.Observation{sampleObservation("req2", "A2")}, block2, cardanoExtractor))
	require.NoError(t, store.SaveObservations(ctx, []model.Observation{sampleObservation("req3", "A3")}, block1, ergoExtractor))

	require.NoError(t, store.DeleteBlockObservations(ctx, "block1", cardanoExtractor))

	cardanoRows, err := store.ListObservations(ctx, cardanoExtractor)
	require.NoError(t, err)
	require.Len(t, cardanoRows, 1)
	assert.Equal(t, "req2", cardanoRows[0].RequestID)

	ergoRows, err := store.ListObservations(ctx, ergoExtractor)
	require.NoError(t, err)
	require.Len(t, ergoRows, 1)
	assert.Equal(t, "block1", ergoRows[0].Block)
}

func TestDeleteBlockObservationsUnknownBlock(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.DeleteBlockObservations(context.Background(), "missing", cardanoExtractor))
}

func TestFindObservationMissing(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.FindObservation(context.Background(), "req1", cardanoExtractor)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadState(ctx, cardanoExtractor)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveState(ctx, cardanoExtractor, model.Block{Hash: "block1", Height: 3}))
	require.NoError(t, store.SaveState(ctx, cardanoExtractor, model.Block{Hash: "block2", Height: 4}))

	block, ok, err := store.LoadState(ctx, cardanoExtractor)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.Block{Hash: "block2", Height: 4}, block)
}

func TestSchemaStatementsUnknownDialect(t *testing.T) {
	_, err := schemaStatements(Dialect("oracle"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrPersistence))
}
