package sampling

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/lmtune/core"
)

// cast applies scale and shift to numeric value types and converts raw to
// spec.ValueType.
func cast(spec core.SearchSpec, raw core.Value) (core.Value, error) {
	switch spec.ValueType {
	case core.ValueTypeInt:
		// keep exact int64 arithmetic when there is nothing to transform
		if i, ok := raw.AsInt(); ok && spec.Scale == 1 && spec.Shift == 0 {
			return core.Int(i), nil
		}
		f, err := affine(spec, raw)
		if err != nil {
			return core.Value{}, err
		}
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return core.Value{}, fmt.Errorf("%w: %v overflows int", core.ErrInvalidRange, f)
		}
		return core.Int(int64(f)), nil
	case core.ValueTypeFloat:
		f, err := affine(spec, raw)
		if err != nil {
			return core.Value{}, err
		}
		return core.Float(f), nil
	case core.ValueTypeString:
		return core.String(text(raw)), nil
	case core.ValueTypeBool:
		return core.Bool(raw.Truthy()), nil
	case core.ValueTypeList:
		if items, ok := raw.AsList(); ok {
			return core.List(items...), nil
		}
		if s, ok := raw.AsString(); ok {
			chars := make([]core.Value, 0, len(s))
			for _, r := range s {
				chars = append(chars, core.String(string(r)))
			}
			return core.List(chars...), nil
		}
		return core.Value{}, fmt.Errorf("%w: cannot cast %s value to list", core.ErrUnsupportedType, raw.Kind())
	default:
		return core.Value{}, fmt.Errorf("%w: data type %q", core.ErrUnsupportedType, spec.ValueType)
	}
}

func affine(spec core.SearchSpec, raw core.Value) (float64, error) {
	n, ok := raw.Number()
	if !ok {
		return 0, fmt.Errorf("%w: cannot cast %s value to %s", core.ErrUnsupportedType, raw.Kind(), spec.ValueType)
	}
	v := spec.Scale*n + spec.Shift
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", core.ErrInvalidRange, v)
	}
	return v, nil
}

// text is the string cast. Booleans render as True and False, also inside lists.
func text(v core.Value) string {
	switch v.Kind() {
	case core.KindBool:
		if b, _ := v.AsBool(); b {
			return "True"
		}
		return "False"
	case core.KindList:
		items, _ := v.AsList()
		parts := make([]string, len(items))
		for i, item := range items {
			if s, ok := item.AsString(); ok {
				parts[i] = strconv.Quote(s)
				continue
			}
			parts[i] = text(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.String()
	}
}
