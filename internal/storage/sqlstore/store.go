package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"rosenIndexer/internal/model"
	"rosenIndexer/internal/storage"
)

const defaultTimeout = 30 * time.Second

// Options tune a Store.
type Options struct {
	// Timeout bounds every store operation. Zero uses 30s.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Store persists observations and indexer progress in Postgres or SQLite.
type Store struct {
	db        *sqlx.DB
	pool      *pgxpool.Pool
	dialect   Dialect
	isolation sql.IsolationLevel
	timeout   time.Duration
	logger    *zap.Logger

	upsertQuery    string
	deleteQuery    string
	findQuery      string
	listQuery      string
	listAllQuery   string
	loadStateQuery string
	saveStateQuery string
}

var _ storage.ObservationStore = (*Store)(nil)
var _ storage.ObservationReader = (*Store)(nil)

// Open connects to the database named by dsn. A dsn with a "sqlite:" prefix
// opens the SQLite file that follows it; anything else is a Postgres dsn.
func Open(ctx context.Context, dsn string, opts Options) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db dsn is required")
	}
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		if path == "" {
			return nil, fmt.Errorf("sqlite dsn %q has no path", dsn)
		}
		db, err := sqlx.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite allows one writer; a single connection keeps the busy
		// handler out of the way.
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		return New(db, DialectSQLite, opts), nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := New(sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"), DialectPostgres, opts)
	store.pool = pool
	return store, nil
}

// New wraps an open database handle.
func New(db *sqlx.DB, dialect Dialect, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	isolation := sql.LevelDefault
	if dialect == DialectPostgres {
		isolation = sql.LevelReadCommitted
	}
	return &Store{
		db:             db,
		dialect:        dialect,
		isolation:      isolation,
		timeout:        timeout,
		logger:         logger,
		upsertQuery:    db.Rebind(upsertObservationSQL),
		deleteQuery:    db.Rebind(deleteBlockSQL),
		findQuery:      db.Rebind(findObservationSQL),
		listQuery:      db.Rebind(listObservationsSQL),
		listAllQuery:   db.Rebind(listAllObservationsSQL),
		loadStateQuery: db.Rebind(loadStateSQL),
		saveStateQuery: db.Rebind(saveStateSQL),
	}
}

// Dialect reports the SQL flavour of the store.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Init creates the tables and indexes when they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	statements, err := schemaStatements(s.dialect)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// SaveObservations upserts the batch in one transaction keyed by
// (request id, extractor). Existing rows keep their id and status.
func (s *Store) SaveObservations(ctx context.Context, observations []model.Observation, block model.Block, extractor string) error {
	if len(observations) == 0 {
		return nil
	}
	if extractor == "" {
		return fmt.Errorf("%w: extractor id is required", storage.ErrPersistence)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.saveTx(ctx, observations, block, extractor); err != nil {
		s.logger.Warn("save observations failed",
			zap.String("extractor", extractor),
			zap.String("block", block.Hash),
			zap.Uint64("height", block.Height),
			zap.Int("observations", len(observations)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", storage.ErrPersistence, err)
	}
	s.logger.Debug("observations saved",
		zap.String("extractor", extractor),
		zap.String("block", block.Hash),
		zap.Int("observations", len(observations)),
	)
	return nil
}

func (s *Store) saveTx(ctx context.Context, observations []model.Observation, block model.Block, extractor string) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: s.isolation})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, s.upsertQuery)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, obs := range observations {
		if _, err = stmt.ExecContext(ctx,
			obs.FromChain,
			obs.ToChain,
			obs.FromAddress,
			obs.ToAddress,
			int64(block.Height),
			obs.Amount,
			obs.NetworkFee,
			obs.BridgeFee,
			obs.SourceChainTokenID,
			obs.TargetChainTokenID,
			obs.SourceTxID,
			obs.SourceBlockID,
			obs.RequestID,
			block.Hash,
			int16(model.StatusNotCommitted),
			extractor,
		); err != nil {
			return fmt.Errorf("upsert request %q: %w", obs.RequestID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteBlockObservations removes every row the extractor wrote for the block.
// Rows of other extractors with the same block hash are kept.
func (s *Store) DeleteBlockObservations(ctx context.Context, blockHash, extractor string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, s.deleteQuery, blockHash, extractor)
	if err != nil {
		return fmt.Errorf("%w: delete block %s: %w", storage.ErrPersistence, blockHash, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		removed = -1
	}
	s.logger.Info("block observations removed",
		zap.String("extractor", extractor),
		zap.String("block", blockHash),
		zap.Int64("rows", removed),
	)
	return nil
}

// FindObservation returns the row for the request written by the extractor.
func (s *Store) FindObservation(ctx context.Context, requestID, extractor string) (model.PersistedObservation, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var row model.PersistedObservation
	if err := s.db.GetContext(ctx, &row, s.findQuery, requestID, extractor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PersistedObservation{}, false, nil
		}
		return model.PersistedObservation{}, false, fmt.Errorf("find observation %q: %w", requestID, err)
	}
	return row, true, nil
}

// ListObservations returns the extractor's rows in insertion order. An empty
// extractor lists every row.
func (s *Store) ListObservations(ctx context.Context, extractor string) ([]model.PersistedObservation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var rows []model.PersistedObservation
	var err error
	if extractor == "" {
		err = s.db.SelectContext(ctx, &rows, s.listAllQuery)
	} else {
		err = s.db.SelectContext(ctx, &rows, s.listQuery, extractor)
	}
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	return rows, nil
}

// LoadState returns the last block recorded under name.
func (s *Store) LoadState(ctx context.Context, name string) (model.Block, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var state struct {
		Height int64  `db:"last_height"`
		Hash   string `db:"last_block"`
	}
	if err := s.db.GetContext(ctx, &state, s.loadStateQuery, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Block{}, false, nil
		}
		return model.Block{}, false, fmt.Errorf("load state %q: %w", name, err)
	}
	return model.Block{Hash: state.Hash, Height: uint64(state.Height)}, true, nil
}

// SaveState records block as the last one processed under name.
func (s *Store) SaveState(ctx context.Context, name string, block model.Block) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, s.saveStateQuery, name, int64(block.Height), block.Hash); err != nil {
		return fmt.Errorf("save state %q: %w", name, err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
