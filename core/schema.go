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

package core

import "fmt"

// ModelTypeKey is the hyperparameter that selects the default schema.
const ModelTypeKey = "model_type"

// ModelType selects which default hyperparameter schema a config starts from.
type ModelType int

const (
	// ModelTypeUnknown is the zero ModelType.
	ModelTypeUnknown ModelType = iota
	// ModelTypeSeqLM is the sequence language model.
	ModelTypeSeqLM
)

// String returns the model_type discriminator used in config files.
func (m ModelType) String() string {
	switch m {
	case ModelTypeSeqLM:
		return "seq_lm"
	default:
		return "unknown"
	}
}

// ParseModelType maps a model_type discriminator to a ModelType.
func ParseModelType(s string) (ModelType, error) {
	switch s {
	case "seq_lm":
		return ModelTypeSeqLM, nil
	default:
		return ModelTypeUnknown, fmt.Errorf("%w: %q", ErrUnsupportedModelType, s)
	}
}

type schemaEntry struct {
	name  string
	value Value
}

// DefaultHParams returns a fresh copy of the default schema for m.
func DefaultHParams(m ModelType) (*HParams, error) {
	var entries []schemaEntry
	switch m {
	case ModelTypeSeqLM:
		entries = seqLMDefaults()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModelType, m)
	}

	h := NewHParams()
	for _, e := range entries {
		h.Set(e.name, e.value)
	}
	return h, nil
}

func seqLMDefaults() []schemaEntry {
	return []schemaEntry{
		{"data_train_file", String("")},
		{"data_eval_file", String("")},
		{"data_embedding_file", String("")},
		{"data_full_embedding_file", String("")},
		{"data_max_word_size", Int(100)},
		{"data_max_char_size", Int(16)},
		{"data_word_vocab_file", String("")},
		{"data_word_vocab_size", Int(1000000)},
		{"data_word_vocab_threshold", Int(0)},
		{"data_word_sos", String("<s>")},
		{"data_word_eos", String("</s>")},
		{"data_word_unk", String("<unk>")},
		{"data_word_pad", String("<pad>")},
		{"data_char_vocab_file", String("")},
		{"data_char_vocab_size", Int(1000)},
		{"data_char_vocab_threshold", Int(0)},
		{"data_char_unk", String("*")},
		{"data_char_pad", String("#")},
		{"data_log_output_dir", String("")},
		{"data_result_output_dir", String("")},
		{"train_random_seed", Int(100)},
		{"train_enable_shuffle", Bool(true)},
		{"train_shuffle_buffer_size", Int(50000)},
		{"train_batch_size", Int(64)},
		{"train_eval_batch_size", Int(100)},
		{"train_encode_batch_size", Int(100)},
		{"train_decode_sample_size", Int(3)},
		{"train_num_epoch", Int(3)},
		{"train_ckpt_output_dir", String("")},
		{"train_summary_output_dir", String("")},
		{"train_step_per_stat", Int(10)},
		{"train_step_per_ckpt", Int(1000)},
		{"train_step_per_eval", Int(1000)},
		{"train_clip_norm", Float(5.0)},
		{"train_ema_enable", Bool(false)},
		{"train_ema_decay_rate", Float(0.999)},
		{"train_regularization_enable", Bool(false)},
		{"train_regularization_type", String("l2")},
		{"train_regularization_scale", Float(3e-7)},
		{"train_optimizer_type", String("adam")},
		{"train_optimizer_learning_rate", Float(0.001)},
		{"train_optimizer_warmup_enable", Bool(false)},
		{"train_optimizer_warmup_mode", String("exponential_warmup")},
		{"train_optimizer_warmup_rate", Float(0.01)},
		{"train_optimizer_warmup_end_step", Int(1000)},
		{"train_optimizer_decay_enable", Bool(false)},
		{"train_optimizer_decay_mode", String("exponential_decay")},
		{"train_optimizer_decay_rate", Float(0.95)},
		{"train_optimizer_decay_step", Int(1000)},
		{"train_optimizer_decay_start_step", Int(10000)},
		{"train_optimizer_momentum_beta", Float(0.9)},
		{"train_optimizer_rmsprop_beta", Float(0.999)},
		{"train_optimizer_rmsprop_epsilon", Float(1e-8)},
		{"train_optimizer_adadelta_rho", Float(0.95)},
		{"train_optimizer_adadelta_epsilon", Float(1e-8)},
		{"train_optimizer_adagrad_init_accumulator", Float(0.1)},
		{"train_optimizer_adam_beta_1", Float(0.9)},
		{"train_optimizer_adam_beta_2", Float(0.999)},
		{"train_optimizer_adam_epsilon", Float(1e-08)},
		{"model_type", String("seq_lm")},
		{"model_scope", String("language_model")},
		{"model_word_embed_dim", Int(300)},
		{"model_word_dropout", Float(0.1)},
		{"model_word_embed_pretrained", Bool(true)},
		{"model_word_feat_trainable", Bool(false)},
		{"model_word_feat_enable", Bool(true)},
		{"model_char_embed_dim", Int(16)},
		{"model_char_unit_dim", Int(100)},
		{"model_char_window_size", List(Int(3), Int(5))},
		{"model_char_hidden_activation", String("relu")},
		{"model_char_dropout", Float(0.1)},
		{"model_char_pooling_type", String("max")},
		{"model_char_feat_trainable", Bool(true)},
		{"model_char_feat_enable", Bool(true)},
		{"model_fusion_type", String("highway")},
		{"model_fusion_num_layer", Int(2)},
		{"model_fusion_unit_dim", Int(500)},
		{"model_fusion_hidden_activation", String("relu")},
		{"model_fusion_dropout", Float(0.1)},
		{"model_fusion_trainable", Bool(true)},
		{"model_sequence_num_layer", Int(2)},
		{"model_sequence_unit_dim", Int(1024)},
		{"model_sequence_unit_type", String("lstm")},
		{"model_sequence_hidden_activation", String("tanh")},
		{"model_sequence_dropout", Float(0.1)},
		{"model_sequence_forget_bias", Float(1.0)},
		{"model_sequence_residual_connect", Bool(false)},
		{"model_projection_dropout", Float(0.1)},
		{"model_projection_trainable", Bool(true)},
		{"model_encode_type", String("average")},
		{"model_encode_layer_list", List(Int(0), Int(1))},
		{"device_num_gpus", Int(1)},
		{"device_default_gpu_id", Int(0)},
		{"device_log_device_placement", Bool(false)},
		{"device_allow_soft_placement", Bool(false)},
		{"device_allow_growth", Bool(false)},
		{"device_per_process_gpu_memory_fraction", Float(0.8)},
	}
}
