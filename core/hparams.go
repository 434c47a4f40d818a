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

// HParams is an ordered set of hyperparameters: a mapping from name to Value
// that remembers insertion order. The order is kept through Clone, Merge and
// JSON encoding so generated config files list keys the same way every time.
type HParams struct {
	keys   []string
	values map[string]Value
}

// NewHParams returns an empty hyperparameter set.
func NewHParams() *HParams {
	return &HParams{values: make(map[string]Value)}
}

// Set stores v under name. A new name is appended to the key order; an
// existing name keeps its position.
func (h *HParams) Set(name string, v Value) {
	if h.values == nil {
		h.values = make(map[string]Value)
	}
	if _, ok := h.values[name]; !ok {
		h.keys = append(h.keys, name)
	}
	h.values[name] = v
}

// Get returns the value stored under name.
func (h *HParams) Get(name string) (Value, bool) {
	v, ok := h.values[name]
	return v, ok
}

// Has reports whether name is present.
func (h *HParams) Has(name string) bool {
	_, ok := h.values[name]
	return ok
}

// Keys returns the names in insertion order.
func (h *HParams) Keys() []string {
	keys := make([]string, len(h.keys))
	copy(keys, h.keys)
	return keys
}

// Len returns the number of hyperparameters.
func (h *HParams) Len() int {
	return len(h.keys)
}

// Clone returns an independent copy of h.
func (h *HParams) Clone() *HParams {
	out := &HParams{
		keys:   make([]string, len(h.keys)),
		values: make(map[string]Value, len(h.values)),
	}
	copy(out.keys, h.keys)
	for k, v := range h.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether h and other hold the same keys, in the same order,
// with equal values.
func (h *HParams) Equal(other *HParams) bool {
	if h == nil || other == nil {
		return h == other
	}
	if len(h.keys) != len(other.keys) {
		return false
	}
	for i, k := range h.keys {
		if other.keys[i] != k {
			return false
		}
		if !h.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

// ModelType returns the parsed model_type entry.
func (h *HParams) ModelType() (ModelType, error) {
	v, ok := h.Get(ModelTypeKey)
	if !ok {
		return ModelTypeUnknown, ErrUnsupportedModelType
	}
	s, ok := v.AsString()
	if !ok {
		return ModelTypeUnknown, ErrUnsupportedModelType
	}
	return ParseModelType(s)
}

// Group is the ordered batch of hyperparameter sets produced by one search invocation.
type Group []*HParams
