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

package lmtune

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/lmtune/core"
	"github.com/poiesic/lmtune/search"
	"github.com/poiesic/lmtune/storage"
	"github.com/poiesic/lmtune/storage/badger"
	"github.com/poiesic/lmtune/storage/file"
)

// Workspace ties together the configuration store, the searcher and an
// optional run archive.
type Workspace struct {
	store    storage.ConfigStore
	searcher *search.Searcher
	backend  *badger.Backend
	runs     storage.RunRepository
	logger   *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	archivePath   string
	memoryArchive bool
	poolSize      int
	logger        *slog.Logger
}

// WithArchive opens a run archive at path.
func WithArchive(path string) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.archivePath = path
	}
}

// WithMemoryArchive uses an in-memory run archive.
func WithMemoryArchive() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.memoryArchive = true
	}
}

// WithPoolSize sets the worker pool size used by Sweep.
func WithPoolSize(size int) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.poolSize = size
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		o.logger = logger
	}
}

// NewWorkspace creates a workspace. Without WithArchive or WithMemoryArchive
// runs are not archived.
func NewWorkspace(opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := file.NewStore(file.WithLogger(logger.With("component", "config_store")))
	if err != nil {
		return nil, err
	}

	searchOpts := []search.Option{search.WithLogger(logger)}
	if options.poolSize > 0 {
		searchOpts = append(searchOpts, search.WithPoolSize(options.poolSize))
	}
	searcher, err := search.NewSearcher(searchOpts...)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		store:    store,
		searcher: searcher,
		logger:   logger,
	}

	if options.archivePath != "" || options.memoryArchive {
		backend, err := badger.OpenBackend(options.archivePath, options.archivePath == "")
		if err != nil {
			searcher.Release()
			return nil, err
		}
		ws.backend = backend
		ws.runs = badger.NewRunRepository(backend)
	}

	return ws, nil
}

// Close releases the worker pool and closes the archive.
func (w *Workspace) Close() error {
	w.searcher.Release()

	if w.runs == nil {
		return nil
	}
	if err := w.runs.Close(); err != nil {
		w.logger.Error("error closing run repository", "err", err)
		return err
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing archive storage", "err", err)
		return err
	}
	return nil
}

// RunRepository returns the run archive, or nil when none is open.
func (w *Workspace) RunRepository() storage.RunRepository {
	return w.runs
}

// Searcher returns the workspace's searcher.
func (w *Workspace) Searcher() *search.Searcher {
	return w.searcher
}

// SearchRequest names the inputs and output of one search.
type SearchRequest struct {
	BaseConfigPath   string
	SearchConfigPath string
	OutputDir        string
	NumGroups        int
	Seed             int64

	// Monitor, if set, observes group generation in Search.
	Monitor search.SearchMonitor
}

// SearchResult describes a completed search.
type SearchResult struct {
	RunID     core.ID
	Seed      int64
	OutputDir string
	Group     core.Group
	Archived  bool
}

// Search loads the base and search configs, samples a group, writes it to
// the output directory and, when an archive is open, records the run.
func (w *Workspace) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.OutputDir == "" {
		return nil, ErrOutputDirRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, cfg, err := w.loadConfigs(req)
	if err != nil {
		return nil, err
	}

	group, err := w.searcher.SampleGroupsWithMonitor(base, cfg, req.NumGroups, req.Seed, req.Monitor)
	if err != nil {
		return nil, err
	}

	return w.finish(ctx, base, cfg, group, req.NumGroups, req.Seed, req.OutputDir)
}

// Sweep runs one search per seed concurrently and writes each group to
// <OutputDir>/seed_<seed>. Results are ordered like seeds.
func (w *Workspace) Sweep(ctx context.Context, req SearchRequest, seeds []int64) ([]*SearchResult, error) {
	if req.OutputDir == "" {
		return nil, ErrOutputDirRequired
	}

	base, cfg, err := w.loadConfigs(req)
	if err != nil {
		return nil, err
	}

	groups, err := w.searcher.Sweep(ctx, base, cfg, req.NumGroups, seeds)
	if err != nil {
		return nil, err
	}

	results := make([]*SearchResult, len(seeds))
	for i, seed := range seeds {
		dir := filepath.Join(req.OutputDir, fmt.Sprintf("seed_%d", seed))
		results[i], err = w.finish(ctx, base, cfg, groups[i], req.NumGroups, seed, dir)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (w *Workspace) loadConfigs(req SearchRequest) (*core.HParams, *core.SearchConfig, error) {
	base, err := w.store.Load(req.BaseConfigPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := w.store.LoadSearchConfig(req.SearchConfigPath)
	if err != nil {
		return nil, nil, err
	}
	return base, cfg, nil
}

func (w *Workspace) finish(
	ctx context.Context,
	base *core.HParams,
	cfg *core.SearchConfig,
	group core.Group,
	numGroups int,
	seed int64,
	outputDir string,
) (*SearchResult, error) {
	if err := w.store.SaveGroup(group, outputDir); err != nil {
		return nil, err
	}

	runID, err := core.RunID(base, cfg, numGroups, seed)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{
		RunID:     runID,
		Seed:      seed,
		OutputDir: outputDir,
		Group:     group,
	}

	if w.runs != nil {
		if err := w.archive(ctx, base, cfg, result, numGroups); err != nil {
			return nil, err
		}
		result.Archived = true
	}

	w.logger.Info("search complete", "run", runID, "groups", len(group), "dir", outputDir, "archived", result.Archived)
	return result, nil
}

func (w *Workspace) archive(ctx context.Context, base *core.HParams, cfg *core.SearchConfig, result *SearchResult, numGroups int) error {
	cfgID, err := cfg.Fingerprint()
	if err != nil {
		return err
	}
	baseID, err := base.Fingerprint()
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(result.OutputDir)
	if err != nil {
		absDir = result.OutputDir
	}
	_, err = w.runs.SaveRun(ctx, &core.Run{
		Id:        result.RunID,
		Seed:      result.Seed,
		NumGroups: numGroups,
		ConfigId:  cfgID,
		BaseId:    baseID,
		OutputDir: absDir,
		Group:     result.Group,
	})
	if err != nil {
		return fmt.Errorf("archive run %s: %w", result.RunID, err)
	}
	return nil
}

// Runs lists archived runs, most recent first. A limit <= 0 lists all.
func (w *Workspace) Runs(ctx context.Context, limit int) ([]*core.Run, error) {
	if w.runs == nil {
		return nil, ErrArchiveRequired
	}
	return w.runs.ListRuns(ctx, limit)
}

// Run retrieves one archived run.
func (w *Workspace) Run(ctx context.Context, id core.ID) (*core.Run, error) {
	if w.runs == nil {
		return nil, ErrArchiveRequired
	}
	return w.runs.GetRun(ctx, id)
}

// Export writes the group of an archived run to dir.
func (w *Workspace) Export(ctx context.Context, id core.ID, dir string) error {
	if dir == "" {
		return ErrOutputDirRequired
	}
	run, err := w.Run(ctx, id)
	if err != nil {
		return err
	}
	return w.store.SaveGroup(run.Group, dir)
}
