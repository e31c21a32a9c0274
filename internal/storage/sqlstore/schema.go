package sqlstore

import "fmt"

// Dialect selects the SQL flavour of the schema.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const observationsTable = `
CREATE TABLE IF NOT EXISTS observations (
	%s,
	from_chain VARCHAR(30) NOT NULL,
	to_chain VARCHAR(30) NOT NULL,
	from_address TEXT NOT NULL,
	to_address TEXT NOT NULL,
	height BIGINT NOT NULL,
	amount TEXT NOT NULL,
	network_fee TEXT NOT NULL,
	bridge_fee TEXT NOT NULL,
	source_chain_token_id TEXT NOT NULL,
	target_chain_token_id TEXT NOT NULL,
	source_tx_id TEXT NOT NULL,
	source_block_id TEXT NOT NULL,
	request_id TEXT NOT NULL,
	block TEXT NOT NULL,
	status SMALLINT NOT NULL DEFAULT 1,
	extractor TEXT NOT NULL,
	CONSTRAINT observations_request_extractor_key UNIQUE (request_id, extractor),
	CONSTRAINT observations_request_id_check CHECK (request_id <> ''),
	CONSTRAINT observations_extractor_check CHECK (extractor <> ''),
	CONSTRAINT observations_chain_check CHECK (
		length(from_chain) BETWEEN 1 AND 30 AND length(to_chain) BETWEEN 1 AND 30
	)
)`

const observationsBlockIndex = `
CREATE INDEX IF NOT EXISTS observations_block_extractor_idx ON observations (block, extractor)`

const stateTable = `
CREATE TABLE IF NOT EXISTS indexer_state (
	name TEXT PRIMARY KEY,
	last_height BIGINT NOT NULL,
	last_block TEXT NOT NULL,
	updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

func schemaStatements(dialect Dialect) ([]string, error) {
	var idColumn, timestampType string
	switch dialect {
	case DialectPostgres:
		idColumn = "id BIGSERIAL PRIMARY KEY"
		timestampType = "TIMESTAMPTZ"
	case DialectSQLite:
		// AUTOINCREMENT keeps ids of deleted rows from being reused.
		idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
		timestampType = "TIMESTAMP"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return []string{
		fmt.Sprintf(observationsTable, idColumn),
		observationsBlockIndex,
		fmt.Sprintf(stateTable, timestampType),
	}, nil
}

const upsertObservationSQL = `
	INSERT INTO observations (
		from_chain, to_chain, from_address, to_address, height, amount, network_fee, bridge_fee,
		source_chain_token_id, target_chain_token_id, source_tx_id, source_block_id,
		request_id, block, status, extractor
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (request_id, extractor)
	DO UPDATE SET
		from_chain = excluded.from_chain,
		to_chain = excluded.to_chain,
		from_address = excluded.from_address,
		to_address = excluded.to_address,
		height = excluded.height,
		amount = excluded.amount,
		network_fee = excluded.network_fee,
		bridge_fee = excluded.bridge_fee,
		source_chain_token_id = excluded.source_chain_token_id,
		target_chain_token_id = excluded.target_chain_token_id,
		source_tx_id = excluded.source_tx_id,
		source_block_id = excluded.source_block_id,
		block = excluded.block
`

const deleteBlockSQL = `DELETE FROM observations WHERE block = ? AND extractor = ?`

const selectObservationColumns = `
	SELECT id, from_chain, to_chain, from_address, to_address, height, amount, network_fee, bridge_fee,
		source_chain_token_id, target_chain_token_id, source_tx_id, source_block_id,
		request_id, block, status, extractor
	FROM observations`

const findObservationSQL = selectObservationColumns + ` WHERE request_id = ? AND extractor = ?`

const listObservationsSQL = selectObservationColumns + ` WHERE extractor = ? ORDER BY id`

const listAllObservationsSQL = selectObservationColumns + ` ORDER BY id`

const loadStateSQL = `SELECT last_height, last_block FROM indexer_state WHERE name = ?`

const saveStateSQL = `
	INSERT INTO indexer_state (name, last_height, last_block, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (name) DO UPDATE
	SET last_height = excluded.last_height, last_block = excluded.last_block, updated_at = CURRENT_TIMESTAMP
`
