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

// Package sampling draws hyperparameter values from declarative search specs.
//
// A Sampler owns its random generator. Every draw consumes the generator in a
// fixed order, so two Samplers created from the same seed and fed the same
// sequence of specs produce the same values. Nothing here touches the
// process-wide generator in math/rand.
//
// # Distributions
//
//   - uniform: ints from [start, end), floats from [start, end)
//   - log: floats sampled uniformly in log10 space over [start, end]
//   - discrete: one element of the candidate set, picked by index
//   - lookup: the value already resolved for a variable in the group
//
// After drawing, numeric value types get scale*raw + shift and every value is
// cast to the spec's value type. Scale and shift do nothing for string,
// boolean and list value types.
//
// # Variables
//
// ResolveVariables samples a group's variables in declaration order and
// returns the lookup table later hyperparameter specs read from. Variables
// are resolved against an empty table and cannot reference each other.
package sampling
