package search

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/poiesic/lmtune/core"
	"github.com/poiesic/lmtune/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(t *testing.T, opts ...Option) *Searcher {
	t.Helper()
	s, err := NewSearcher(opts...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func seqLMBase(t *testing.T) *core.HParams {
	t.Helper()
	base, err := core.DefaultHParams(core.ModelTypeSeqLM)
	require.NoError(t, err)
	return base
}

func batchSizeConfig() *core.SearchConfig {
	return &core.SearchConfig{
		Hyperparams: []core.NamedSpec{
			{Name: "train_batch_size", Spec: core.DiscreteSpec(core.ValueTypeInt, core.Int(32), core.Int(64), core.Int(128))},
		},
	}
}

func TestNewSearcher(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher()
		require.NoError(t, err)
		defer s.Release()
		assert.NotNil(t, s)
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		s, err := NewSearcher(WithLogger(logger))
		require.NoError(t, err)
		defer s.Release()
		assert.Equal(t, logger, s.root)
		assert.NotEqual(t, logger, s.logger)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		s, err := NewSearcher(WithLogger(nil))
		require.NoError(t, err)
		defer s.Release()
		assert.NotNil(t, s.logger)
	})

	t.Run("with pool size", func(t *testing.T) {
		s, err := NewSearcher(WithPoolSize(4))
		require.NoError(t, err)
		defer s.Release()
		assert.Equal(t, 4, s.pool.Cap())
	})

	t.Run("with pool size zero defaults to 1", func(t *testing.T) {
		s, err := NewSearcher(WithPoolSize(0))
		require.NoError(t, err)
		defer s.Release()
		assert.Equal(t, 1, s.pool.Cap())
	})
}

func TestSampleGroup(t *testing.T) {
	s := newTestSearcher(t)
	base := seqLMBase(t)

	t.Run("overrides win and other keys keep base values", func(t *testing.T) {
		hyperparams := []core.NamedSpec{
			{Name: "train_batch_size", Spec: core.DiscreteSpec(core.ValueTypeInt, core.Int(32))},
			{Name: "extra_knob", Spec: core.DiscreteSpec(core.ValueTypeString, core.String("on"))},
		}
		got, err := s.SampleGroup(sampling.NewSampler(1), base, hyperparams, nil)
		require.NoError(t, err)

		v, _ := got.Get("train_batch_size")
		assert.True(t, v.Equal(core.Int(32)))
		keys := got.Keys()
		assert.Equal(t, "extra_knob", keys[len(keys)-1])
		assert.Equal(t, base.Len()+1, got.Len())

		orig, _ := base.Get("train_batch_size")
		assert.True(t, orig.Equal(core.Int(64)), "base must not be modified")
	})

	t.Run("float sample on int default is coerced", func(t *testing.T) {
		hyperparams := []core.NamedSpec{
			{Name: "train_batch_size", Spec: core.DiscreteSpec(core.ValueTypeFloat, core.Float(16))},
		}
		got, err := s.SampleGroup(sampling.NewSampler(1), base, hyperparams, nil)
		require.NoError(t, err)
		v, _ := got.Get("train_batch_size")
		assert.True(t, v.Equal(core.Int(16)))
	})

	t.Run("lookup reads the table", func(t *testing.T) {
		hyperparams := []core.NamedSpec{
			{Name: "model_word_embed_dim", Spec: core.LookupSpec(core.ValueTypeInt, "dim")},
		}
		got, err := s.SampleGroup(sampling.NewSampler(1), base, hyperparams, core.Lookup{"dim": core.Int(512)})
		require.NoError(t, err)
		v, _ := got.Get("model_word_embed_dim")
		assert.True(t, v.Equal(core.Int(512)))
	})

	t.Run("missing lookup key", func(t *testing.T) {
		hyperparams := []core.NamedSpec{
			{Name: "model_word_embed_dim", Spec: core.LookupSpec(core.ValueTypeInt, "dim")},
		}
		_, err := s.SampleGroup(sampling.NewSampler(1), base, hyperparams, core.Lookup{})
		assert.ErrorIs(t, err, core.ErrKeyNotFound)
	})

	t.Run("nil sampler", func(t *testing.T) {
		_, err := s.SampleGroup(nil, base, nil, nil)
		assert.Equal(t, ErrSamplerRequired, err)
	})

	t.Run("nil base", func(t *testing.T) {
		_, err := s.SampleGroup(sampling.NewSampler(1), nil, nil, nil)
		assert.Equal(t, ErrBaseConfigRequired, err)
	})
}

func TestSampleGroups_BatchSizeScenario(t *testing.T) {
	s := newTestSearcher(t)
	base := seqLMBase(t)

	group, err := s.SampleGroups(base, batchSizeConfig(), 2, 100)
	require.NoError(t, err)
	require.Len(t, group, 2)

	allowed := []core.Value{core.Int(32), core.Int(64), core.Int(128)}
	for _, h := range group {
		v, ok := h.Get("train_batch_size")
		require.True(t, ok)
		assert.Contains(t, allowed, v)

		assert.Equal(t, base.Keys(), h.Keys())
		for _, k := range base.Keys() {
			if k == "train_batch_size" {
				continue
			}
			want, _ := base.Get(k)
			got, _ := h.Get(k)
			assert.True(t, want.Equal(got), "key %s changed", k)
		}
	}
}

func TestSampleGroups_ScaleShiftScenario(t *testing.T) {
	s := newTestSearcher(t)
	cfg := &core.SearchConfig{
		Hyperparams: []core.NamedSpec{
			{Name: "train_num_epoch", Spec: core.UniformSpec(core.ValueTypeInt, core.Int(0), core.Int(10)).WithAffine(2, 1)},
		},
	}

	group, err := s.SampleGroups(seqLMBase(t), cfg, 50, 7)
	require.NoError(t, err)
	require.Len(t, group, 50)

	for _, h := range group {
		v, _ := h.Get("train_num_epoch")
		n, ok := v.AsInt()
		require.True(t, ok)
		assert.GreaterOrEqual(t, n, int64(1))
		assert.LessOrEqual(t, n, int64(19))
		assert.Equal(t, int64(1), n%2)
	}
}

func TestSampleGroups_Deterministic(t *testing.T) {
	s := newTestSearcher(t)
	base := seqLMBase(t)
	cfg := &core.SearchConfig{
		Variables: []core.NamedSpec{
			{Name: "dim", Spec: core.DiscreteSpec(core.ValueTypeInt, core.Int(128), core.Int(256), core.Int(512))},
		},
		Hyperparams: []core.NamedSpec{
			{Name: "model_word_embed_dim", Spec: core.LookupSpec(core.ValueTypeInt, "dim")},
			{Name: "train_optimizer_learning_rate", Spec: core.LogSpec(1e-5, 1e-2)},
			{Name: "model_word_dropout", Spec: core.UniformSpec(core.ValueTypeFloat, core.Float(0), core.Float(0.5))},
		},
	}

	first, err := s.SampleGroups(base, cfg, 5, 42)
	require.NoError(t, err)
	second, err := s.SampleGroups(base, cfg, 5, 42)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "group member %d differs", i)
	}
}

func TestSampleGroups_LookupSharedWithinMember(t *testing.T) {
	s := newTestSearcher(t)
	cfg := &core.SearchConfig{
		Variables: []core.NamedSpec{
			{Name: "hidden", Spec: core.DiscreteSpec(core.ValueTypeInt, core.Int(128), core.Int(256))},
		},
		Hyperparams: []core.NamedSpec{
			{Name: "encoder_hidden", Spec: core.LookupSpec(core.ValueTypeInt, "hidden")},
			{Name: "decoder_hidden", Spec: core.LookupSpec(core.ValueTypeInt, "hidden").WithAffine(2, 0)},
		},
	}

	group, err := s.SampleGroups(seqLMBase(t), cfg, 10, 3)
	require.NoError(t, err)
	for _, h := range group {
		enc, _ := h.Get("encoder_hidden")
		dec, _ := h.Get("decoder_hidden")
		e, _ := enc.AsInt()
		d, _ := dec.AsInt()
		assert.Equal(t, 2*e, d)
	}
}

func TestSampleGroups_Errors(t *testing.T) {
	s := newTestSearcher(t)
	base := seqLMBase(t)

	t.Run("zero groups", func(t *testing.T) {
		group, err := s.SampleGroups(base, batchSizeConfig(), 0, 1)
		require.NoError(t, err)
		assert.Empty(t, group)
	})

	t.Run("negative groups", func(t *testing.T) {
		group, err := s.SampleGroups(base, batchSizeConfig(), -1, 1)
		assert.ErrorIs(t, err, core.ErrInvalidGroupCount)
		assert.Nil(t, group)
	})

	t.Run("undeclared lookup", func(t *testing.T) {
		cfg := &core.SearchConfig{
			Hyperparams: []core.NamedSpec{
				{Name: "encoder_hidden", Spec: core.LookupSpec(core.ValueTypeInt, "hidden")},
			},
		}
		group, err := s.SampleGroups(base, cfg, 2, 1)
		assert.ErrorIs(t, err, core.ErrKeyNotFound)
		assert.Nil(t, group)
	})

	t.Run("type mismatch aborts batch", func(t *testing.T) {
		cfg := &core.SearchConfig{
			Hyperparams: []core.NamedSpec{
				{Name: "train_batch_size", Spec: core.DiscreteSpec(core.ValueTypeString, core.String("big"))},
			},
		}
		group, err := s.SampleGroups(base, cfg, 3, 1)
		assert.ErrorIs(t, err, core.ErrTypeMismatch)
		assert.Nil(t, group)
	})

	t.Run("nil base", func(t *testing.T) {
		_, err := s.SampleGroups(nil, batchSizeConfig(), 1, 1)
		assert.Equal(t, ErrBaseConfigRequired, err)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := s.SampleGroups(base, nil, 1, 1)
		assert.Equal(t, ErrSearchConfigRequired, err)
	})
}

type recordingMonitor struct {
	started   int
	variables []int
	groups    []int
	finished  core.Group
}

func (m *recordingMonitor) Start(numGroups int, _ int64)        { m.started = numGroups }
func (m *recordingMonitor) AfterVariables(i int, _ core.Lookup) { m.variables = append(m.variables, i) }
func (m *recordingMonitor) AfterGroup(i int, _ *core.HParams)   { m.groups = append(m.groups, i) }
func (m *recordingMonitor) Finish(group core.Group)             { m.finished = group }

func TestSampleGroupsWithMonitor(t *testing.T) {
	s := newTestSearcher(t)
	monitor := &recordingMonitor{}

	group, err := s.SampleGroupsWithMonitor(seqLMBase(t), batchSizeConfig(), 3, 9, monitor)
	require.NoError(t, err)

	assert.Equal(t, 3, monitor.started)
	assert.Equal(t, []int{0, 1, 2}, monitor.variables)
	assert.Equal(t, []int{0, 1, 2}, monitor.groups)
	assert.Len(t, monitor.finished, len(group))
}

func TestSweep(t *testing.T) {
	s := newTestSearcher(t, WithPoolSize(3))
	base := seqLMBase(t)
	cfg := &core.SearchConfig{
		Hyperparams: []core.NamedSpec{
			{Name: "train_optimizer_learning_rate", Spec: core.LogSpec(1e-5, 1e-1)},
		},
	}
	seeds := []int64{5, 1, 9, 5, 2}

	results, err := s.Sweep(context.Background(), base, cfg, 4, seeds)
	require.NoError(t, err)
	require.Len(t, results, len(seeds))

	for i, seed := range seeds {
		want, err := s.SampleGroups(base, cfg, 4, seed)
		require.NoError(t, err)
		require.Len(t, results[i], 4)
		for j := range want {
			assert.True(t, want[j].Equal(results[i][j]), "seed %d member %d", seed, j)
		}
	}
}

func TestSweep_Cancelled(t *testing.T) {
	s := newTestSearcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := s.Sweep(ctx, seqLMBase(t), batchSizeConfig(), 2, []int64{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestSweep_Error(t *testing.T) {
	s := newTestSearcher(t)
	results, err := s.Sweep(context.Background(), seqLMBase(t), batchSizeConfig(), -2, []int64{1, 2})
	assert.ErrorIs(t, err, core.ErrInvalidGroupCount)
	assert.Nil(t, results)
}

func TestSampleGroups_LogComponents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := newTestSearcher(t, WithLogger(logger))

	cfg := &core.SearchConfig{
		Variables: []core.NamedSpec{
			{Name: "hidden", Spec: core.DiscreteSpec(core.ValueTypeInt, core.Int(128))},
		},
		Hyperparams: []core.NamedSpec{
			{Name: "model_word_embed_dim", Spec: core.LookupSpec(core.ValueTypeInt, "hidden")},
		},
	}
	_, err := s.SampleGroups(seqLMBase(t), cfg, 1, 100)
	require.NoError(t, err)

	var sawSampler, sawSearcher bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
		sawSampler = sawSampler || strings.Contains(line, `"component":"sampler"`)
		sawSearcher = sawSearcher || strings.Contains(line, `"component":"searcher"`)
	}
	assert.True(t, sawSampler)
	assert.True(t, sawSearcher)
}
