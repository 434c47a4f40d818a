package file

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lmtune/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	require.NoError(t, err)
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewStore(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewStore()
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		s, err := NewStore(WithLogger(logger))
		require.NoError(t, err)
		assert.Equal(t, logger, s.logger)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		s, err := NewStore(WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, s.logger)
	})
}

func TestLoad(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	t.Run("overrides defaults and appends unknown keys", func(t *testing.T) {
		path := writeFile(t, dir, "base.json", `{
			"model_type": "seq_lm",
			"zz_custom": "x",
			"train_batch_size": 32,
			"train_optimizer_learning_rate": 1
		}`)
		h, err := s.Load(path)
		require.NoError(t, err)

		defaults, err := core.DefaultHParams(core.ModelTypeSeqLM)
		require.NoError(t, err)
		assert.Equal(t, append(defaults.Keys(), "zz_custom"), h.Keys())

		v, _ := h.Get("train_batch_size")
		assert.True(t, v.Equal(core.Int(32)))
		v, _ = h.Get("train_optimizer_learning_rate")
		assert.True(t, v.Equal(core.Float(1)))
		v, _ = h.Get("train_num_epoch")
		assert.True(t, v.Equal(core.Int(3)))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := s.Load(filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, core.ErrConfigNotFound)
	})

	t.Run("missing model type", func(t *testing.T) {
		path := writeFile(t, dir, "no_type.json", `{"train_batch_size": 32}`)
		_, err := s.Load(path)
		assert.ErrorIs(t, err, core.ErrUnsupportedModelType)
	})

	t.Run("unknown model type", func(t *testing.T) {
		path := writeFile(t, dir, "cnn.json", `{"model_type": "cnn"}`)
		_, err := s.Load(path)
		assert.ErrorIs(t, err, core.ErrUnsupportedModelType)
	})

	t.Run("incompatible override", func(t *testing.T) {
		path := writeFile(t, dir, "mismatch.json", `{"model_type": "seq_lm", "train_batch_size": "big"}`)
		_, err := s.Load(path)
		assert.ErrorIs(t, err, core.ErrTypeMismatch)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, dir, "bad.json", `{"model_type": `)
		_, err := s.Load(path)
		assert.Error(t, err)
	})
}

const searchJSON = `{
	"variables": {
		"hidden": {"stype": "discrete", "dtype": "int", "set": [128, 256]}
	},
	"hyperparams": {
		"train_batch_size": {"stype": "discrete", "dtype": "int", "set": [32, 64, 128]},
		"model_word_dropout": {"stype": "uniform", "dtype": "float", "range": [0.0, 0.5]},
		"train_optimizer_learning_rate": {"stype": "log", "dtype": "float", "range": [1e-5, 1.0]},
		"model_word_embed_dim": {"stype": "lookup", "dtype": "int", "key": "hidden", "scale": 2, "shift": 1},
		"train_optimizer_type": {"stype": "discrete", "dtype": "string", "set": ["adam", "sgd"]}
	}
}`

const searchHCL = `
variable "hidden" {
  stype = "discrete"
  dtype = "int"
  set   = [128, 256]
}

hyperparam "train_batch_size" {
  stype = "discrete"
  dtype = "int"
  set   = [32, 64, 128]
}

hyperparam "model_word_dropout" {
  stype = "uniform"
  dtype = "float"
  range = [0, 0.5]
}

hyperparam "train_optimizer_learning_rate" {
  stype = "log"
  dtype = "float"
  range = [1e-5, 1]
}

hyperparam "model_word_embed_dim" {
  stype = "lookup"
  dtype = "int"
  key   = "hidden"
  scale = 2
  shift = 1
}

hyperparam "train_optimizer_type" {
  stype = "discrete"
  dtype = "string"
  set   = ["adam", "sgd"]
}
`

func TestLoadSearchConfig(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	t.Run("json keeps declaration order", func(t *testing.T) {
		cfg, err := s.LoadSearchConfig(writeFile(t, dir, "search.json", searchJSON))
		require.NoError(t, err)

		require.Len(t, cfg.Variables, 1)
		assert.Equal(t, "hidden", cfg.Variables[0].Name)

		var names []string
		for _, h := range cfg.Hyperparams {
			names = append(names, h.Name)
		}
		assert.Equal(t, []string{
			"train_batch_size",
			"model_word_dropout",
			"train_optimizer_learning_rate",
			"model_word_embed_dim",
			"train_optimizer_type",
		}, names)

		lookup := cfg.Hyperparams[3].Spec
		assert.Equal(t, 2.0, lookup.Scale)
		assert.Equal(t, 1.0, lookup.Shift)
		assert.Equal(t, 1.0, cfg.Hyperparams[0].Spec.Scale)
	})

	t.Run("hcl matches json", func(t *testing.T) {
		fromJSON, err := s.LoadSearchConfig(writeFile(t, dir, "same.json", searchJSON))
		require.NoError(t, err)
		fromHCL, err := s.LoadSearchConfig(writeFile(t, dir, "same.hcl", searchHCL))
		require.NoError(t, err)

		jsonID, err := fromJSON.Fingerprint()
		require.NoError(t, err)
		hclID, err := fromHCL.Fingerprint()
		require.NoError(t, err)
		assert.Equal(t, jsonID, hclID)
	})

	t.Run("missing sections are empty", func(t *testing.T) {
		cfg, err := s.LoadSearchConfig(writeFile(t, dir, "empty.json", `{}`))
		require.NoError(t, err)
		assert.Empty(t, cfg.Variables)
		assert.Empty(t, cfg.Hyperparams)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := s.LoadSearchConfig(filepath.Join(dir, "missing.hcl"))
		assert.ErrorIs(t, err, core.ErrConfigNotFound)
	})

	t.Run("invalid spec", func(t *testing.T) {
		path := writeFile(t, dir, "invalid.json", `{"hyperparams": {"x": {"stype": "discrete", "dtype": "int", "set": []}}}`)
		_, err := s.LoadSearchConfig(path)
		assert.ErrorIs(t, err, core.ErrInvalidSearchSpec)
	})

	t.Run("undeclared lookup", func(t *testing.T) {
		path := writeFile(t, dir, "undeclared.hcl", `
hyperparam "x" {
  stype = "lookup"
  dtype = "int"
  key   = "missing"
}
`)
		_, err := s.LoadSearchConfig(path)
		assert.ErrorIs(t, err, core.ErrKeyNotFound)
	})

	t.Run("hcl object in set", func(t *testing.T) {
		path := writeFile(t, dir, "object.hcl", `
hyperparam "x" {
  stype = "discrete"
  dtype = "list"
  set   = [{ a = 1 }]
}
`)
		_, err := s.LoadSearchConfig(path)
		assert.ErrorIs(t, err, core.ErrUnsupportedType)
	})

	t.Run("hcl syntax error", func(t *testing.T) {
		path := writeFile(t, dir, "broken.hcl", `hyperparam "x" {`)
		_, err := s.LoadSearchConfig(path)
		assert.Error(t, err)
	})
}

func TestSaveGroup(t *testing.T) {
	s := newTestStore(t)

	base, err := core.DefaultHParams(core.ModelTypeSeqLM)
	require.NoError(t, err)
	second := base.Clone()
	second.Set("train_batch_size", core.Int(128))
	group := core.Group{base, second}

	t.Run("round trip", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		require.NoError(t, s.SaveGroup(group, dir))

		for i, want := range group {
			got, err := s.Load(GroupFilePath(dir, i))
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "member %d", i)
		}
	})

	t.Run("file format", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, s.SaveGroup(group, dir))

		data, err := os.ReadFile(filepath.Join(dir, "config_hyperparams_0.json"))
		require.NoError(t, err)
		text := string(data)
		assert.True(t, strings.HasPrefix(text, "{\n    \"data_train_file\": \"\""))
		assert.Contains(t, text, `"data_word_sos": "<s>"`)
		assert.Contains(t, text, `"train_clip_norm": 5.0`)
	})

	t.Run("idempotent directory creation", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, s.SaveGroup(group, dir))
		require.NoError(t, s.SaveGroup(group, dir))
	})

	t.Run("empty group", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "empty")
		require.NoError(t, s.SaveGroup(nil, dir))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("earlier files survive a failed write", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(GroupFilePath(dir, 1), 0755))

		err := s.SaveGroup(group, dir)
		require.Error(t, err)

		_, err = os.Stat(GroupFilePath(dir, 0))
		assert.NoError(t, err)
	})
}
