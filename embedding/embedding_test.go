package embedding

import (
	"math"
	"testing"

	"github.com/poiesic/lmtune/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	cfg := Config{VocabSize: 50, EmbedDim: 10, Trainable: true, Seed: 7}
	e, err := New(cfg)
	require.NoError(t, err)

	vocab, dim := e.Dims()
	assert.Equal(t, 50, vocab)
	assert.Equal(t, 10, dim)
	assert.False(t, e.Placeholder())

	limit := math.Sqrt(6.0 / 60.0)
	w := e.Weights()
	nonZero := 0
	for i := 0; i < vocab; i++ {
		for j := 0; j < dim; j++ {
			v := w.At(i, j)
			assert.GreaterOrEqual(t, v, -limit)
			assert.LessOrEqual(t, v, limit)
			if v != 0 {
				nonZero++
			}
		}
	}
	assert.Greater(t, nonZero, 0)
}

func TestNew_SeedIsDeterministic(t *testing.T) {
	cfg := Config{VocabSize: 20, EmbedDim: 4, Seed: 3}
	a, err := New(cfg)
	require.NoError(t, err)
	b, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a.Weights(), b.Weights()))

	cfg.Seed = 4
	c, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, mat.Equal(a.Weights(), c.Weights()))
}

func TestNew_InvalidShape(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero vocab", Config{VocabSize: 0, EmbedDim: 4}},
		{"zero dim", Config{VocabSize: 4, EmbedDim: 0}},
		{"negative vocab", Config{VocabSize: -1, EmbedDim: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidShape)
			_, err = NewPretrained(tt.cfg, nil, false)
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}

func TestLookup(t *testing.T) {
	weights := mat.NewDense(3, 2, []float64{
		0, 1,
		10, 11,
		20, 21,
	})
	e, err := NewPretrained(Config{VocabSize: 3, EmbedDim: 2}, weights, false)
	require.NoError(t, err)

	t.Run("rows follow ids", func(t *testing.T) {
		out, err := e.Lookup([]int{2, 0, 2})
		require.NoError(t, err)
		r, c := out.Dims()
		assert.Equal(t, 3, r)
		assert.Equal(t, 2, c)
		assert.Equal(t, []float64{20, 21}, out.RawRowView(0))
		assert.Equal(t, []float64{0, 1}, out.RawRowView(1))
		assert.Equal(t, []float64{20, 21}, out.RawRowView(2))
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := e.Lookup([]int{0, 3})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = e.Lookup([]int{-1})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("no ids", func(t *testing.T) {
		_, err := e.Lookup(nil)
		assert.ErrorIs(t, err, ErrNoIDs)
	})

	t.Run("lookup result is a copy", func(t *testing.T) {
		out, err := e.Lookup([]int{1})
		require.NoError(t, err)
		out.Set(0, 0, -5)
		assert.Equal(t, 10.0, e.Weights().At(1, 0))
	})
}

func TestNewPretrained(t *testing.T) {
	cfg := Config{VocabSize: 2, EmbedDim: 3}

	t.Run("nil weights start at zero", func(t *testing.T) {
		e, err := NewPretrained(cfg, nil, true)
		require.NoError(t, err)
		assert.True(t, e.Placeholder())
		assert.Equal(t, 0.0, mat.Sum(e.Weights()))
	})

	t.Run("weights are copied", func(t *testing.T) {
		weights := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
		e, err := NewPretrained(cfg, weights, false)
		require.NoError(t, err)
		weights.Set(0, 0, 100)
		assert.Equal(t, 1.0, e.Weights().At(0, 0))
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := NewPretrained(cfg, mat.NewDense(3, 2, nil), false)
		assert.ErrorIs(t, err, ErrInvalidShape)
	})
}

func TestFeed(t *testing.T) {
	cfg := Config{VocabSize: 2, EmbedDim: 2}

	t.Run("feedable table accepts weights", func(t *testing.T) {
		e, err := NewPretrained(cfg, nil, true)
		require.NoError(t, err)
		require.NoError(t, e.Feed(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))

		out, err := e.Lookup([]int{1})
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 4}, out.RawRowView(0))
	})

	t.Run("wrong shape", func(t *testing.T) {
		e, err := NewPretrained(cfg, nil, true)
		require.NoError(t, err)
		assert.ErrorIs(t, e.Feed(mat.NewDense(1, 2, nil)), ErrInvalidShape)
	})

	t.Run("not feedable", func(t *testing.T) {
		e, err := NewPretrained(cfg, nil, false)
		require.NoError(t, err)
		assert.ErrorIs(t, e.Feed(mat.NewDense(2, 2, nil)), ErrNotFeedable)
	})
}

func TestRegularizer(t *testing.T) {
	weights := mat.NewDense(2, 2, []float64{1, -2, 3, -4})

	t.Run("trainable table keeps regularizer", func(t *testing.T) {
		e, err := NewPretrained(Config{VocabSize: 2, EmbedDim: 2, Trainable: true, Regularizer: L2{Scale: 0.5}}, weights, false)
		require.NoError(t, err)
		require.NotNil(t, e.Regularizer())
		assert.InDelta(t, 0.5*30/2, e.Penalty(), 1e-9)
	})

	t.Run("frozen table drops regularizer", func(t *testing.T) {
		e, err := NewPretrained(Config{VocabSize: 2, EmbedDim: 2, Trainable: false, Regularizer: L2{Scale: 0.5}}, weights, false)
		require.NoError(t, err)
		assert.Nil(t, e.Regularizer())
		assert.Equal(t, 0.0, e.Penalty())
	})

	t.Run("l1 penalty", func(t *testing.T) {
		assert.InDelta(t, 2.0*10, L1{Scale: 2}.Penalty(weights), 1e-9)
	})

	t.Run("by name", func(t *testing.T) {
		r, err := NewRegularizer("l1", 1)
		require.NoError(t, err)
		assert.IsType(t, L1{}, r)
		r, err = NewRegularizer("l2", 1)
		require.NoError(t, err)
		assert.IsType(t, L2{}, r)
		_, err = NewRegularizer("dropout", 1)
		assert.ErrorIs(t, err, ErrUnknownRegularizer)
	})
}

func TestConfigFromHParams(t *testing.T) {
	h, err := core.DefaultHParams(core.ModelTypeSeqLM)
	require.NoError(t, err)

	t.Run("word defaults", func(t *testing.T) {
		cfg, err := ConfigFromHParams(h, "word")
		require.NoError(t, err)
		assert.Equal(t, 1000000, cfg.VocabSize)
		assert.Equal(t, 300, cfg.EmbedDim)
		assert.False(t, cfg.Trainable)
		assert.Equal(t, int64(100), cfg.Seed)
		assert.Nil(t, cfg.Regularizer)
	})

	t.Run("char with regularization", func(t *testing.T) {
		reg := h.Clone()
		reg.Set("train_regularization_enable", core.Bool(true))
		cfg, err := ConfigFromHParams(reg, "char")
		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.VocabSize)
		assert.Equal(t, 16, cfg.EmbedDim)
		assert.True(t, cfg.Trainable)
		assert.Equal(t, L2{Scale: 3e-7}, cfg.Regularizer)
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := ConfigFromHParams(core.NewHParams(), "word")
		assert.ErrorIs(t, err, core.ErrKeyNotFound)
	})
}
