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

// Package search generates configuration groups from a base hyperparameter
// set and a search config.
//
// For each group the Searcher resolves the config's variables into a lookup
// table, samples every hyperparameter spec against that table, and merges the
// sampled overrides onto a copy of the base set. One random generator, seeded
// once per batch, is threaded through every group, so a fixed seed reproduces
// the whole batch.
//
// Sweep runs several independent batches, one per seed, on a worker pool.
// Each batch owns its generator, so results do not depend on scheduling.
package search
