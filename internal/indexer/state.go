package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rosenIndexer/internal/model"
)

// StateStore persists the last block the runner processed.
//
// A state with an empty hash marks a rewind after a fork of the last block:
// its height is the next height to process.
type StateStore interface {
	Load(ctx context.Context) (model.Block, bool, error)
	Save(ctx context.Context, block model.Block) error
}

type fileState struct {
	LastHeight uint64 `json:"last_height"`
	LastBlock  string `json:"last_block"`
	UpdatedAt  string `json:"updated_at"`
}

// FileStateStore keeps the state in a JSON file, replaced atomically.
type FileStateStore struct {
	path string
}

func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

func (f *FileStateStore) Load(_ context.Context) (model.Block, bool, error) {
	stat, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Block{}, false, nil
		}
		return model.Block{}, false, fmt.Errorf("stat state: %w", err)
	}
	if stat.IsDir() {
		return model.Block{}, false, fmt.Errorf("state path is a directory")
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return model.Block{}, false, fmt.Errorf("read state: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.Block{}, false, fmt.Errorf("parse state: %w", err)
	}
	return model.Block{Hash: state.LastBlock, Height: state.LastHeight}, true, nil
}

func (f *FileStateStore) Save(_ context.Context, block model.Block) error {
	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.Marshal(fileState{
		LastHeight: block.Height,
		LastBlock:  block.Hash,
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

// StateBackend is a store that keeps named progress records.
type StateBackend interface {
	LoadState(ctx context.Context, name string) (model.Block, bool, error)
	SaveState(ctx context.Context, name string, block model.Block) error
}

// DBStateStore keeps the state in the database under the extractor's name.
type DBStateStore struct {
	backend StateBackend
	name    string
}

func NewDBStateStore(backend StateBackend, name string) *DBStateStore {
	return &DBStateStore{backend: backend, name: name}
}

func (d *DBStateStore) Load(ctx context.Context) (model.Block, bool, error) {
	return d.backend.LoadState(ctx, d.name)
}

func (d *DBStateStore) Save(ctx context.Context, block model.Block) error {
	return d.backend.SaveState(ctx, d.name, block)
}
