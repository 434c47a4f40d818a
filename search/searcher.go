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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lmtune/core"
	"github.com/poiesic/lmtune/sampling"
)

// Searcher generates configuration groups from a base set and a search config.
type Searcher struct {
	pool   *ants.Pool
	root   *slog.Logger // handed to samplers, which add their own component
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithPoolSize sets the worker pool size used by Sweep.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.root = logger
		s.logger = logger.With("component", "searcher")
		return nil
	}
}

// NewSearcher creates a new searcher. Call Release when done.
func NewSearcher(opts ...Option) (*Searcher, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		pool:   pool,
		root:   slog.Default(),
		logger: slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.pool.Release()
			return nil, err
		}
	}

	return s, nil
}

// Release frees the worker pool.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// SampleGroup samples every hyperparameter spec against lookup and merges the
// results onto a copy of base. Sampled values win over base values; keys the
// base does not define are appended. base is not modified.
func (s *Searcher) SampleGroup(
	sampler *sampling.Sampler,
	base *core.HParams,
	hyperparams []core.NamedSpec,
	lookup core.Lookup,
) (*core.HParams, error) {
	if sampler == nil {
		return nil, ErrSamplerRequired
	}
	if base == nil {
		return nil, ErrBaseConfigRequired
	}

	overrides := core.NewHParams()
	for _, hp := range hyperparams {
		v, err := sampler.Sample(hp.Spec, lookup)
		if err != nil {
			return nil, fmt.Errorf("hyperparameter %s: %w", hp.Name, err)
		}
		overrides.Set(hp.Name, v)
	}

	return core.Merge(base, overrides)
}

// SampleGroups generates numGroups configurations from a single generator
// seeded with seed. Each configuration gets a freshly resolved lookup table.
// Any failure aborts the batch and no partial group is returned.
func (s *Searcher) SampleGroups(base *core.HParams, cfg *core.SearchConfig, numGroups int, seed int64) (core.Group, error) {
	return s.SampleGroupsWithMonitor(base, cfg, numGroups, seed, nil)
}

// SampleGroupsWithMonitor is SampleGroups with progress callbacks.
func (s *Searcher) SampleGroupsWithMonitor(
	base *core.HParams,
	cfg *core.SearchConfig,
	numGroups int,
	seed int64,
	monitor SearchMonitor,
) (core.Group, error) {
	if base == nil {
		return nil, ErrBaseConfigRequired
	}
	if cfg == nil {
		return nil, ErrSearchConfigRequired
	}
	if numGroups < 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidGroupCount, numGroups)
	}
	if err := core.ValidateSearchConfig(cfg); err != nil {
		return nil, err
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(numGroups, seed)
	sampler := sampling.NewSampler(seed, sampling.WithLogger(s.root))

	group := make(core.Group, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		lookup, err := sampler.ResolveVariables(cfg.Variables)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		monitor.AfterVariables(i, lookup)

		hparams, err := s.SampleGroup(sampler, base, cfg.Hyperparams, lookup)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		monitor.AfterGroup(i, hparams)
		group = append(group, hparams)
	}

	s.logger.Debug("sampled group", "size", len(group), "seed", seed)
	monitor.Finish(group)
	return group, nil
}

// Sweep runs one independent SampleGroups batch per seed on the worker pool.
// Results are ordered like seeds. The first failing seed, in seed order,
// determines the returned error.
func (s *Searcher) Sweep(
	ctx context.Context,
	base *core.HParams,
	cfg *core.SearchConfig,
	numGroups int,
	seeds []int64,
) ([]core.Group, error) {
	if base == nil {
		return nil, ErrBaseConfigRequired
	}
	if cfg == nil {
		return nil, ErrSearchConfigRequired
	}

	results := make([]core.Group, len(seeds))
	errs := make([]error, len(seeds))

	var wg sync.WaitGroup
	for i, seed := range seeds {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = s.SampleGroups(base, cfg, numGroups, seed)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seeds[i], err)
		}
	}

	s.logger.Info("sweep complete", "seeds", len(seeds), "groups", numGroups)
	return results, nil
}
