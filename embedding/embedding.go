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

package embedding

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Config describes an embedding table.
type Config struct {
	VocabSize   int
	EmbedDim    int
	Trainable   bool
	Seed        int64
	Regularizer Regularizer
}

func (c Config) validate() error {
	if c.VocabSize <= 0 || c.EmbedDim <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidShape, c.VocabSize, c.EmbedDim)
	}
	return nil
}

// Embedding is a token embedding table. It is not safe for concurrent use
// while Feed may be called.
type Embedding struct {
	cfg      Config
	weights  *mat.Dense
	feedable bool
}

// New creates a table initialized with Glorot-uniform values in
// [-limit, limit], limit = sqrt(6 / (vocab + dim)).
func New(cfg Config) (*Embedding, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	limit := math.Sqrt(6.0 / float64(cfg.VocabSize+cfg.EmbedDim))
	dist := distuv.Uniform{
		Min: -limit,
		Max: limit,
		Src: rand.NewPCG(uint64(cfg.Seed), 0),
	}

	data := make([]float64, cfg.VocabSize*cfg.EmbedDim)
	for i := range data {
		data[i] = dist.Rand()
	}

	return &Embedding{
		cfg:     cfg,
		weights: mat.NewDense(cfg.VocabSize, cfg.EmbedDim, data),
	}, nil
}

// NewPretrained creates a table holding a copy of weights, or zeros when
// weights is nil. A feedable table accepts replacement weights through Feed.
func NewPretrained(cfg Config, weights mat.Matrix, feedable bool) (*Embedding, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Embedding{
		cfg:      cfg,
		weights:  mat.NewDense(cfg.VocabSize, cfg.EmbedDim, nil),
		feedable: feedable,
	}
	if weights != nil {
		if err := e.assign(weights); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Feed replaces the table with weights.
func (e *Embedding) Feed(weights mat.Matrix) error {
	if !e.feedable {
		return ErrNotFeedable
	}
	return e.assign(weights)
}

func (e *Embedding) assign(weights mat.Matrix) error {
	r, c := weights.Dims()
	if r != e.cfg.VocabSize || c != e.cfg.EmbedDim {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrInvalidShape, r, c, e.cfg.VocabSize, e.cfg.EmbedDim)
	}
	e.weights.Copy(weights)
	return nil
}

// Lookup returns a len(ids) x dim matrix whose row i is the embedding of ids[i].
func (e *Embedding) Lookup(ids []int) (*mat.Dense, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}

	out := mat.NewDense(len(ids), e.cfg.EmbedDim, nil)
	for i, id := range ids {
		if id < 0 || id >= e.cfg.VocabSize {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, id, e.cfg.VocabSize)
		}
		out.SetRow(i, e.weights.RawRowView(id))
	}
	return out, nil
}

// Weights returns a copy of the table.
func (e *Embedding) Weights() *mat.Dense {
	return mat.DenseCopyOf(e.weights)
}

// Dims returns the vocabulary size and embedding dimension.
func (e *Embedding) Dims() (vocab, dim int) {
	return e.cfg.VocabSize, e.cfg.EmbedDim
}

// Trainable reports whether the table takes part in training.
func (e *Embedding) Trainable() bool {
	return e.cfg.Trainable
}

// Placeholder reports whether the table expects its weights to be fed.
func (e *Embedding) Placeholder() bool {
	return e.feedable
}

// Regularizer returns the configured regularizer, or nil for frozen tables.
func (e *Embedding) Regularizer() Regularizer {
	if !e.cfg.Trainable {
		return nil
	}
	return e.cfg.Regularizer
}

// Penalty returns the regularization loss of the current weights.
func (e *Embedding) Penalty() float64 {
	reg := e.Regularizer()
	if reg == nil {
		return 0
	}
	return reg.Penalty(e.weights)
}
