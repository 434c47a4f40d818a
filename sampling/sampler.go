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

package sampling

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/poiesic/lmtune/core"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler is the distribution sampler. It is not safe for concurrent use;
// give each goroutine its own Sampler.
type Sampler struct {
	src    rand.Source
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "sampler")
	}
}

// NewSampler creates a Sampler backed by a PCG generator seeded with seed.
func NewSampler(seed int64, opts ...Option) *Sampler {
	return NewSamplerFromSource(rand.NewPCG(uint64(seed), 0), opts...)
}

// NewSamplerFromSource creates a Sampler that draws from src.
func NewSamplerFromSource(src rand.Source, opts ...Option) *Sampler {
	s := &Sampler{
		src:    src,
		rng:    rand.New(src),
		logger: slog.Default().With("component", "sampler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample draws one value for spec. Lookup specs read from lookup, which may be nil.
func (s *Sampler) Sample(spec core.SearchSpec, lookup core.Lookup) (core.Value, error) {
	raw, err := s.draw(spec, lookup)
	if err != nil {
		return core.Value{}, err
	}
	return cast(spec, raw)
}

// draw produces the raw sample before scale, shift and cast.
func (s *Sampler) draw(spec core.SearchSpec, lookup core.Lookup) (core.Value, error) {
	switch spec.Distribution {
	case core.DistributionUniform:
		return s.drawUniform(spec)
	case core.DistributionLog:
		return s.drawLog(spec)
	case core.DistributionDiscrete:
		if len(spec.Set) == 0 {
			return core.Value{}, fmt.Errorf("%w: discrete set is empty", core.ErrInvalidRange)
		}
		return spec.Set[s.rng.IntN(len(spec.Set))], nil
	case core.DistributionLookup:
		v, ok := lookup[spec.Key]
		if !ok {
			return core.Value{}, fmt.Errorf("%w: %q", core.ErrKeyNotFound, spec.Key)
		}
		return v, nil
	default:
		return core.Value{}, fmt.Errorf("%w: search type %q", core.ErrUnsupportedType, spec.Distribution)
	}
}

func (s *Sampler) drawUniform(spec core.SearchSpec) (core.Value, error) {
	switch spec.ValueType {
	case core.ValueTypeInt:
		start, end, err := intBounds(spec.Range)
		if err != nil {
			return core.Value{}, err
		}
		if end <= start {
			return core.Value{}, fmt.Errorf("%w: empty int range [%d, %d)", core.ErrInvalidRange, start, end)
		}
		return core.Int(start + s.rng.Int64N(end-start)), nil
	case core.ValueTypeFloat:
		start, end, err := floatBounds(spec.Range)
		if err != nil {
			return core.Value{}, err
		}
		u := distuv.Uniform{Min: start, Max: end, Src: s.src}
		return core.Float(u.Rand()), nil
	default:
		return core.Value{}, fmt.Errorf("%w: uniform cannot produce %s", core.ErrUnsupportedType, spec.ValueType)
	}
}

func (s *Sampler) drawLog(spec core.SearchSpec) (core.Value, error) {
	if spec.ValueType != core.ValueTypeFloat {
		return core.Value{}, fmt.Errorf("%w: log cannot produce %s", core.ErrUnsupportedType, spec.ValueType)
	}
	start, end, err := floatBounds(spec.Range)
	if err != nil {
		return core.Value{}, err
	}
	if start <= 0 || end <= 0 {
		return core.Value{}, fmt.Errorf("%w: log bounds must be positive, got [%v, %v]", core.ErrInvalidRange, start, end)
	}

	u := distuv.Uniform{Min: math.Log10(start), Max: math.Log10(end), Src: s.src}
	v := math.Pow(10, u.Rand())

	// Pow(10, Log10(x)) can land an ulp outside the declared bounds.
	lo, hi := math.Min(start, end), math.Max(start, end)
	return core.Float(math.Min(math.Max(v, lo), hi)), nil
}

func floatBounds(r []core.Value) (float64, float64, error) {
	if len(r) != 2 {
		return 0, 0, fmt.Errorf("%w: range needs 2 bounds, got %d", core.ErrInvalidRange, len(r))
	}
	start, ok := r[0].Number()
	if !ok || !r[0].IsNumeric() {
		return 0, 0, fmt.Errorf("%w: range start %s is not a number", core.ErrInvalidRange, r[0])
	}
	end, ok := r[1].Number()
	if !ok || !r[1].IsNumeric() {
		return 0, 0, fmt.Errorf("%w: range end %s is not a number", core.ErrInvalidRange, r[1])
	}
	return start, end, nil
}

func intBounds(r []core.Value) (int64, int64, error) {
	if len(r) != 2 {
		return 0, 0, fmt.Errorf("%w: range needs 2 bounds, got %d", core.ErrInvalidRange, len(r))
	}
	var bounds [2]int64
	for i, v := range r {
		iv, err := core.Coerce(core.KindInt, v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %w", core.ErrInvalidRange, err)
		}
		bounds[i], _ = iv.AsInt()
	}
	return bounds[0], bounds[1], nil
}
