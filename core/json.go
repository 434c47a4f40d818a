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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return fmt.Errorf("%w: %v has no JSON form", ErrUnsupportedType, v.f)
		}
		buf.WriteString(formatFloat(v.f))
	case KindString:
		return writeJSONString(buf, v.s)
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("%w: invalid value", ErrUnsupportedType)
	}
	return nil
}

// writeJSONString quotes s without HTML escaping so tokens like "<unk>" stay readable.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Numbers without a fraction or
// exponent decode as ints, everything else numeric as floats. Objects and
// null are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Number:
		return parseNumber(t)
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Delim:
		if t != '[' {
			return Value{}, fmt.Errorf("%w: objects are not hyperparameter values", ErrUnsupportedType)
		}
		items := []Value{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		// closing ']'
		if _, err := dec.Token(); err != nil {
			return Value{}, err
		}
		return Value{kind: KindList, list: items}, nil
	default:
		return Value{}, fmt.Errorf("%w: null is not a hyperparameter value", ErrUnsupportedType)
	}
}

func parseNumber(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return Value{}, err
	}
	return Float(f), nil
}

// WalkObject calls fn for every member of the JSON object in data, in
// document order.
func WalkObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes h as a JSON object with keys in insertion order.
func (h *HParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range h.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := h.values[k].writeJSON(&buf); err != nil {
			return nil, fmt.Errorf("hyperparameter %s: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of h with the members of a flat JSON
// object, keeping document order.
func (h *HParams) UnmarshalJSON(data []byte) error {
	h.keys = nil
	h.values = make(map[string]Value)
	return WalkObject(data, func(key string, raw json.RawMessage) error {
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("hyperparameter %s: %w", key, err)
		}
		h.Set(key, v)
		return nil
	})
}

type searchSpecJSON struct {
	SType DistributionType `json:"stype"`
	DType ValueType        `json:"dtype"`
	Range []Value          `json:"range,omitempty"`
	Set   []Value          `json:"set,omitempty"`
	Key   string           `json:"key,omitempty"`
	Scale *float64         `json:"scale,omitempty"`
	Shift *float64         `json:"shift,omitempty"`
}

// MarshalJSON implements json.Marshaler using the search document field names.
func (s SearchSpec) MarshalJSON() ([]byte, error) {
	scale, shift := s.Scale, s.Shift
	return json.Marshal(searchSpecJSON{
		SType: s.Distribution,
		DType: s.ValueType,
		Range: s.Range,
		Set:   s.Set,
		Key:   s.Key,
		Scale: &scale,
		Shift: &shift,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Missing scale defaults to 1.0
// and missing shift to 0.0.
func (s *SearchSpec) UnmarshalJSON(data []byte) error {
	var raw searchSpecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SearchSpec{
		Distribution: raw.SType,
		ValueType:    raw.DType,
		Range:        raw.Range,
		Set:          raw.Set,
		Key:          raw.Key,
		Scale:        1.0,
	}
	if raw.Scale != nil {
		s.Scale = *raw.Scale
	}
	if raw.Shift != nil {
		s.Shift = *raw.Shift
	}
	return nil
}

// MarshalJSON encodes c as {"variables": {...}, "hyperparams": {...}} with
// declaration order preserved.
func (c *SearchConfig) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"variables":`)
	if err := writeNamedSpecs(&buf, c.Variables); err != nil {
		return nil, err
	}
	buf.WriteString(`,"hyperparams":`)
	if err := writeNamedSpecs(&buf, c.Hyperparams); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeNamedSpecs(buf *bytes.Buffer, specs []NamedSpec) error {
	buf.WriteByte('{')
	for i, ns := range specs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, ns.Name); err != nil {
			return err
		}
		buf.WriteByte(':')
		b, err := json.Marshal(ns.Spec)
		if err != nil {
			return fmt.Errorf("search spec %s: %w", ns.Name, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON decodes a search document. Missing sections are empty;
// unknown top-level members are ignored.
func (c *SearchConfig) UnmarshalJSON(data []byte) error {
	*c = SearchConfig{}
	return WalkObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "variables":
			specs, err := decodeNamedSpecs(raw)
			if err != nil {
				return fmt.Errorf("variables: %w", err)
			}
			c.Variables = specs
		case "hyperparams":
			specs, err := decodeNamedSpecs(raw)
			if err != nil {
				return fmt.Errorf("hyperparams: %w", err)
			}
			c.Hyperparams = specs
		}
		return nil
	})
}

func decodeNamedSpecs(data []byte) ([]NamedSpec, error) {
	var specs []NamedSpec
	err := WalkObject(data, func(name string, raw json.RawMessage) error {
		var spec SearchSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		specs = append(specs, NamedSpec{Name: name, Spec: spec})
		return nil
	})
	return specs, err
}
