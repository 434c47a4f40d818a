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

// DistributionType names how a Search Spec draws its raw sample.
type DistributionType string

const (
	DistributionUniform  DistributionType = "uniform"
	DistributionLog      DistributionType = "log"
	DistributionDiscrete DistributionType = "discrete"
	DistributionLookup   DistributionType = "lookup"
)

// ValueType names the type a sampled value is cast to.
type ValueType string

const (
	ValueTypeInt    ValueType = "int"
	ValueTypeFloat  ValueType = "float"
	ValueTypeString ValueType = "string"
	ValueTypeBool   ValueType = "boolean"
	ValueTypeList   ValueType = "list"
)

// IsNumeric reports whether scale and shift apply to this value type.
func (t ValueType) IsNumeric() bool {
	return t == ValueTypeInt || t == ValueTypeFloat
}

// SearchSpec describes how to sample one variable or hyperparameter.
//
// Range is used by uniform and log distributions, Set by discrete and Key by
// lookup. Scale and Shift are applied to numeric value types as
// scale*raw + shift. The zero SearchSpec has Scale 0; build specs with the
// constructors below or decode them from JSON/HCL to get the 1.0 default.
type SearchSpec struct {
	Distribution DistributionType
	ValueType    ValueType
	Range        []Value
	Set          []Value
	Key          string
	Scale        float64
	Shift        float64
}

// UniformSpec samples uniformly from [start, end).
func UniformSpec(vt ValueType, start, end Value) SearchSpec {
	return SearchSpec{
		Distribution: DistributionUniform,
		ValueType:    vt,
		Range:        []Value{start, end},
		Scale:        1.0,
	}
}

// LogSpec samples a float log-uniformly from [start, end].
func LogSpec(start, end float64) SearchSpec {
	return SearchSpec{
		Distribution: DistributionLog,
		ValueType:    ValueTypeFloat,
		Range:        []Value{Float(start), Float(end)},
		Scale:        1.0,
	}
}

// DiscreteSpec picks one element of set uniformly.
func DiscreteSpec(vt ValueType, set ...Value) SearchSpec {
	cp := make([]Value, len(set))
	copy(cp, set)
	return SearchSpec{
		Distribution: DistributionDiscrete,
		ValueType:    vt,
		Set:          cp,
		Scale:        1.0,
	}
}

// LookupSpec reuses the value of the variable named key.
func LookupSpec(vt ValueType, key string) SearchSpec {
	return SearchSpec{
		Distribution: DistributionLookup,
		ValueType:    vt,
		Key:          key,
		Scale:        1.0,
	}
}

// WithAffine returns a copy of s with the given scale and shift.
func (s SearchSpec) WithAffine(scale, shift float64) SearchSpec {
	s.Scale = scale
	s.Shift = shift
	return s
}

// NamedSpec pairs a Search Spec with the name it populates.
type NamedSpec struct {
	Name string
	Spec SearchSpec
}

// SearchConfig is a parsed search document. Variables are resolved first, in
// declaration order, then Hyperparams, also in declaration order; the order
// fixes how the random stream is consumed.
type SearchConfig struct {
	Variables   []NamedSpec
	Hyperparams []NamedSpec
}

// Lookup maps variable names to the values sampled for the current group.
type Lookup map[string]Value
