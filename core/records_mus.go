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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Binary MUS codecs for archived records. Config files use the JSON codecs.
var (
	IDMUS      = idMUS{}
	ValueMUS   = valueMUS{}
	HParamsMUS = hparamsMUS{}
	RunMUS     = runMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return raw.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := raw.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s idMUS) Size(v ID) (size int) {
	return raw.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return raw.Uint64.Skip(bs)
}

// valueMUS writes the kind followed by its payload; lists carry a length and
// then each item.
type valueMUS struct{}

func (s valueMUS) Marshal(v Value, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.kind), bs)
	switch v.kind {
	case KindInt:
		n += varint.Int64.Marshal(v.i, bs[n:])
	case KindFloat:
		n += raw.Float64.Marshal(v.f, bs[n:])
	case KindString:
		n += ord.String.Marshal(v.s, bs[n:])
	case KindBool:
		n += ord.Bool.Marshal(v.b, bs[n:])
	case KindList:
		n += varint.Int.Marshal(len(v.list), bs[n:])
		for _, item := range v.list {
			n += s.Marshal(item, bs[n:])
		}
	}
	return
}

func (s valueMUS) Unmarshal(bs []byte) (v Value, n int, err error) {
	kind, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	switch Kind(kind) {
	case KindInvalid:
	case KindInt:
		v.i, n1, err = varint.Int64.Unmarshal(bs[n:])
	case KindFloat:
		v.f, n1, err = raw.Float64.Unmarshal(bs[n:])
	case KindString:
		v.s, n1, err = ord.String.Unmarshal(bs[n:])
	case KindBool:
		v.b, n1, err = ord.Bool.Unmarshal(bs[n:])
	case KindList:
		v.list, n1, err = s.unmarshalList(bs[n:])
	default:
		return Value{}, n, fmt.Errorf("%w: value kind %d", ErrInvalidRecord, kind)
	}
	n += n1
	if err != nil {
		return Value{}, n, err
	}
	v.kind = Kind(kind)
	return
}

func (s valueMUS) unmarshalList(bs []byte) (list []Value, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	// Every item takes at least one byte.
	if length < 0 || length > len(bs)-n {
		return nil, n, fmt.Errorf("%w: list length %d", ErrInvalidRecord, length)
	}
	list = make([]Value, length)
	var n1 int
	for i := range list {
		list[i], n1, err = s.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return
}

func (s valueMUS) Size(v Value) (size int) {
	size = varint.Int.Size(int(v.kind))
	switch v.kind {
	case KindInt:
		size += varint.Int64.Size(v.i)
	case KindFloat:
		size += raw.Float64.Size(v.f)
	case KindString:
		size += ord.String.Size(v.s)
	case KindBool:
		size += ord.Bool.Size(v.b)
	case KindList:
		size += varint.Int.Size(len(v.list))
		for _, item := range v.list {
			size += s.Size(item)
		}
	}
	return
}

func (s valueMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// hparamsMUS writes the key count followed by name/value pairs in key order.
type hparamsMUS struct{}

func (s hparamsMUS) Marshal(h *HParams, bs []byte) (n int) {
	n = varint.Int.Marshal(len(h.keys), bs)
	for _, name := range h.keys {
		n += ord.String.Marshal(name, bs[n:])
		n += ValueMUS.Marshal(h.values[name], bs[n:])
	}
	return
}

func (s hparamsMUS) Unmarshal(bs []byte) (h *HParams, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, fmt.Errorf("%w: hyperparameter count %d", ErrInvalidRecord, length)
	}
	h = NewHParams()
	var (
		n1    int
		name  string
		value Value
	)
	for range length {
		name, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		if h.Has(name) {
			return nil, n, fmt.Errorf("%w: duplicate hyperparameter %q", ErrInvalidRecord, name)
		}
		value, n1, err = ValueMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		h.Set(name, value)
	}
	return
}

func (s hparamsMUS) Size(h *HParams) (size int) {
	size = varint.Int.Size(len(h.keys))
	for _, name := range h.keys {
		size += ord.String.Size(name)
		size += ValueMUS.Size(h.values[name])
	}
	return
}

func (s hparamsMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// runMUS encodes InsertedAt as Unix microseconds.
type runMUS struct{}

func (s runMUS) Marshal(v Run, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += varint.Int64.Marshal(v.Seed, bs[n:])
	n += varint.Int.Marshal(v.NumGroups, bs[n:])
	n += IDMUS.Marshal(v.ConfigId, bs[n:])
	n += IDMUS.Marshal(v.BaseId, bs[n:])
	n += ord.String.Marshal(v.OutputDir, bs[n:])
	n += varint.Int64.Marshal(v.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(len(v.Group), bs[n:])
	for _, h := range v.Group {
		n += HParamsMUS.Marshal(h, bs[n:])
	}
	return
}

func (s runMUS) Unmarshal(bs []byte) (v Run, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Seed, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.NumGroups, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ConfigId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.BaseId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.OutputDir, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt = time.UnixMicro(micros).UTC()
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		return Run{}, n, fmt.Errorf("%w: group size %d", ErrInvalidRecord, length)
	}
	v.Group = make(Group, length)
	for i := range v.Group {
		v.Group[i], n1, err = HParamsMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return Run{}, n, err
		}
	}
	return
}

func (s runMUS) Size(v Run) (size int) {
	size = IDMUS.Size(v.Id)
	size += varint.Int64.Size(v.Seed)
	size += varint.Int.Size(v.NumGroups)
	size += IDMUS.Size(v.ConfigId)
	size += IDMUS.Size(v.BaseId)
	size += ord.String.Size(v.OutputDir)
	size += varint.Int64.Size(v.InsertedAt.UnixMicro())
	size += varint.Int.Size(len(v.Group))
	for _, h := range v.Group {
		size += HParamsMUS.Size(h)
	}
	return
}

func (s runMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
