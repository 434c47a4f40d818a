// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lmtune/core"
	"github.com/poiesic/lmtune/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) *RunRepository {
	return &RunRepository{
		backend: backend,
	}
}

// OpenRunRepository opens the archive at path and returns a repository over it.
// The caller owns the returned backend and must close it.
func OpenRunRepository(path string) (*RunRepository, *Backend, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, nil, err
	}
	return NewRunRepository(backend), backend, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *RunRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *RunRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveRun stores a run, replacing an earlier run with the same ID.
func (r *RunRepository) SaveRun(ctx context.Context, run *core.Run) (*core.Run, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunKey(run.Id)

		// Drop the index entry of a run being replaced
		old, err := r.readRun(tx, key)
		if err != nil {
			return err
		}
		if old != nil {
			if err := tx.Delete(makeRunDateKey(old.InsertedAt, old.Id)); err != nil {
				return err
			}
		}

		if run.InsertedAt.IsZero() {
			run.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
		}

		if err := tx.Set(key, storage.MarshalRun(run)); err != nil {
			return err
		}

		dateKey := makeRunDateKey(run.InsertedAt, run.Id)
		if err := tx.Set(dateKey, storage.MarshalID(run.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("archived run", "id", run.Id, "groups", len(run.Group))
	return run, nil
}

// GetRun retrieves a single run by ID.
func (r *RunRepository) GetRun(ctx context.Context, id core.ID) (*core.Run, error) {
	var result *core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readRun(tx, makeRunKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListRuns retrieves runs ordered by insertion time, most recent first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*core.Run, error) {
	var results []*core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent runs first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(runDatePrefix + ":")

		for iter.Seek(makeRunDateSeekKey()); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			key := iter.Item().Key()

			// Check if we're still in the run date index
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Read the ID from the index
			var runID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				runID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full run
			run, err := r.readRun(tx, makeRunKey(runID))
			if err != nil {
				return err
			}
			if run != nil {
				results = append(results, run)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteRun removes a run by ID.
func (r *RunRepository) DeleteRun(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunKey(id)

		// Read run to get metadata for index cleanup
		run, err := r.readRun(tx, key)
		if err != nil {
			return err
		}
		if run == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeRunDateKey(run.InsertedAt, run.Id)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readRun reads a run from the transaction.
// Returns nil, nil if the key doesn't exist.
func (r *RunRepository) readRun(tx *badger.Txn, key []byte) (*core.Run, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var run *core.Run
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		run, unmarshalErr = storage.UnmarshalRun(val)
		return unmarshalErr
	})
	return run, err
}
