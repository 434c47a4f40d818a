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

import (
	"fmt"
	"math"
)

// Merge returns a copy of base with every entry of overrides applied in
// override order. An override of an existing key replaces the base value
// after coercion to the base value's kind; keys unknown to base are appended.
// Neither argument is modified.
func Merge(base, overrides *HParams) (*HParams, error) {
	out := base.Clone()
	if overrides == nil {
		return out, nil
	}
	for _, name := range overrides.keys {
		v := overrides.values[name]
		if current, ok := out.values[name]; ok {
			coerced, err := Coerce(current.Kind(), v)
			if err != nil {
				return nil, fmt.Errorf("hyperparameter %s: %w", name, err)
			}
			v = coerced
		}
		out.Set(name, v)
	}
	return out, nil
}

// Coerce converts v to kind. Ints widen to floats and integral floats narrow
// to ints; any other kind change fails with ErrTypeMismatch.
func Coerce(kind Kind, v Value) (Value, error) {
	if v.kind == kind {
		return v, nil
	}
	switch {
	case kind == KindFloat && v.kind == KindInt:
		return Float(float64(v.i)), nil
	case kind == KindInt && v.kind == KindFloat:
		if v.f == math.Trunc(v.f) && !math.IsInf(v.f, 0) {
			return Int(int64(v.f)), nil
		}
		return Value{}, fmt.Errorf("%w: %s is not an integer", ErrTypeMismatch, v)
	default:
		return Value{}, fmt.Errorf("%w: cannot use %s value as %s", ErrTypeMismatch, v.kind, kind)
	}
}
