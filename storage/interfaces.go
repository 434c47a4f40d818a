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

package storage

import (
	"context"

	"github.com/poiesic/lmtune/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// RunRepository archives search runs.
type RunRepository interface {
	Repository
	// SaveRun stores a run under its ID, replacing any earlier run with the same ID.
	// Sets InsertedAt if not already set.
	SaveRun(ctx context.Context, run *core.Run) (*core.Run, error)

	// GetRun retrieves a run by ID.
	// Returns ErrNotFound if the run doesn't exist.
	GetRun(ctx context.Context, id core.ID) (*core.Run, error)

	// ListRuns returns up to limit runs, most recently inserted first.
	// A limit <= 0 returns every run.
	ListRuns(ctx context.Context, limit int) ([]*core.Run, error)

	// DeleteRun removes a run and its index entries.
	// Returns ErrNotFound if the run doesn't exist.
	DeleteRun(ctx context.Context, id core.ID) error
}

// ConfigStore loads base and search configurations and persists sampled groups.
type ConfigStore interface {
	// Load reads a base configuration and merges it onto the defaults of its model type.
	Load(path string) (*core.HParams, error)

	// LoadSearchConfig reads and validates a search config.
	LoadSearchConfig(path string) (*core.SearchConfig, error)

	// SaveGroup writes every member of group to outputDir.
	SaveGroup(group core.Group, outputDir string) error
}
