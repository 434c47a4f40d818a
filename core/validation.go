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

// ValidateSearchSpec validates a SearchSpec according to the sampling rules.
//
// Validation rules:
//   - Distribution must be uniform, log, discrete or lookup
//   - ValueType must be int, float, string, boolean or list
//   - uniform accepts int and float value types, log only float
//   - uniform and log need a two-element numeric Range
//   - discrete needs a non-empty Set
//   - lookup needs a Key
//
// NOT validated (checked while sampling):
//   - Range ordering and log bounds positivity
//   - whether discrete set members can be cast to ValueType
func ValidateSearchSpec(spec SearchSpec) error {
	if err := ValidateValueType(spec.ValueType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSearchSpec, err)
	}

	switch spec.Distribution {
	case DistributionUniform:
		if !spec.ValueType.IsNumeric() {
			return fmt.Errorf("%w: %w: uniform cannot produce %s", ErrInvalidSearchSpec, ErrUnsupportedType, spec.ValueType)
		}
		if err := validateRange(spec.Range); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSearchSpec, err)
		}
	case DistributionLog:
		if spec.ValueType != ValueTypeFloat {
			return fmt.Errorf("%w: %w: log cannot produce %s", ErrInvalidSearchSpec, ErrUnsupportedType, spec.ValueType)
		}
		if err := validateRange(spec.Range); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSearchSpec, err)
		}
	case DistributionDiscrete:
		if len(spec.Set) == 0 {
			return fmt.Errorf("%w: %w: discrete set is empty", ErrInvalidSearchSpec, ErrInvalidRange)
		}
	case DistributionLookup:
		if spec.Key == "" {
			return fmt.Errorf("%w: lookup key is empty", ErrInvalidSearchSpec)
		}
	default:
		return fmt.Errorf("%w: %w: distribution %q", ErrInvalidSearchSpec, ErrUnsupportedType, spec.Distribution)
	}

	return nil
}

// ValidateValueType validates that a ValueType is one of the supported casts.
func ValidateValueType(vt ValueType) error {
	switch vt {
	case ValueTypeInt, ValueTypeFloat, ValueTypeString, ValueTypeBool, ValueTypeList:
		return nil
	default:
		return fmt.Errorf("%w: value type %q", ErrUnsupportedType, vt)
	}
}

func validateRange(r []Value) error {
	if len(r) != 2 {
		return fmt.Errorf("%w: range needs 2 bounds, got %d", ErrInvalidRange, len(r))
	}
	for _, bound := range r {
		if !bound.IsNumeric() {
			return fmt.Errorf("%w: range bound %s is not a number", ErrInvalidRange, bound)
		}
	}
	return nil
}

// ValidateSearchConfig validates every spec in cfg.
//
// Validation rules:
//   - names are non-empty and unique within each section
//   - every spec passes ValidateSearchSpec
//   - variables cannot be lookups, since the table is empty while they resolve
//   - hyperparameter lookups reference a declared variable
func ValidateSearchConfig(cfg *SearchConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: search config is nil", ErrInvalidSearchSpec)
	}

	variables := make(map[string]struct{}, len(cfg.Variables))
	for _, v := range cfg.Variables {
		if err := validateNamed(v, variables); err != nil {
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
		if v.Spec.Distribution == DistributionLookup {
			return fmt.Errorf("variable %q: %w: variables cannot reference %q", v.Name, ErrKeyNotFound, v.Spec.Key)
		}
	}

	hyperparams := make(map[string]struct{}, len(cfg.Hyperparams))
	for _, h := range cfg.Hyperparams {
		if err := validateNamed(h, hyperparams); err != nil {
			return fmt.Errorf("hyperparam %q: %w", h.Name, err)
		}
		if h.Spec.Distribution == DistributionLookup {
			if _, ok := variables[h.Spec.Key]; !ok {
				return fmt.Errorf("hyperparam %q: %w: %q", h.Name, ErrKeyNotFound, h.Spec.Key)
			}
		}
	}

	return nil
}

func validateNamed(ns NamedSpec, seen map[string]struct{}) error {
	if ns.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSearchSpec)
	}
	if _, dup := seen[ns.Name]; dup {
		return fmt.Errorf("%w: duplicate name", ErrInvalidSearchSpec)
	}
	seen[ns.Name] = struct{}{}
	return ValidateSearchSpec(ns.Spec)
}
