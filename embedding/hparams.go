package embedding

import (
	"fmt"

	"github.com/poiesic/lmtune/core"
)

// ConfigFromHParams builds the Config of a feature table ("word" or "char")
// from a hyperparameter set. It reads data_<feature>_vocab_size,
// model_<feature>_embed_dim, model_<feature>_feat_trainable,
// train_random_seed and the train_regularization_* entries.
func ConfigFromHParams(h *core.HParams, feature string) (Config, error) {
	var cfg Config

	vocab, err := intParam(h, "data_"+feature+"_vocab_size")
	if err != nil {
		return cfg, err
	}
	dim, err := intParam(h, "model_"+feature+"_embed_dim")
	if err != nil {
		return cfg, err
	}
	trainable, err := boolParam(h, "model_"+feature+"_feat_trainable")
	if err != nil {
		return cfg, err
	}
	seed, err := intParam(h, "train_random_seed")
	if err != nil {
		return cfg, err
	}

	cfg = Config{
		VocabSize: int(vocab),
		EmbedDim:  int(dim),
		Trainable: trainable,
		Seed:      seed,
	}

	enabled, err := boolParam(h, "train_regularization_enable")
	if err != nil || !enabled {
		return cfg, err
	}
	v, ok := h.Get("train_regularization_type")
	if !ok {
		return cfg, fmt.Errorf("%w: train_regularization_type", core.ErrKeyNotFound)
	}
	scaleVal, ok := h.Get("train_regularization_scale")
	if !ok {
		return cfg, fmt.Errorf("%w: train_regularization_scale", core.ErrKeyNotFound)
	}
	scale, ok := scaleVal.Number()
	if !ok {
		return cfg, fmt.Errorf("train_regularization_scale: %w", core.ErrTypeMismatch)
	}
	cfg.Regularizer, err = NewRegularizer(v.String(), scale)
	return cfg, err
}

func intParam(h *core.HParams, name string) (int64, error) {
	v, ok := h.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", core.ErrKeyNotFound, name)
	}
	coerced, err := core.Coerce(core.KindInt, v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	n, _ := coerced.AsInt()
	return n, nil
}

func boolParam(h *core.HParams, name string) (bool, error) {
	v, ok := h.Get(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", core.ErrKeyNotFound, name)
	}
	b, ok := v.AsBool()
	if !ok {
		return false, fmt.Errorf("%s: %w", name, core.ErrTypeMismatch)
	}
	return b, nil
}
