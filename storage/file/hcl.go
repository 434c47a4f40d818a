package file

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/poiesic/lmtune/core"
	"github.com/zclconf/go-cty/cty"
)

// hclSearchFile represents the top-level structure of an HCL search config.
type hclSearchFile struct {
	Variables   []*hclSpecBlock `hcl:"variable,block"`
	Hyperparams []*hclSpecBlock `hcl:"hyperparam,block"`
}

// hclSpecBlock is one variable or hyperparam block. Range and Set stay
// expressions so mixed-type tuples survive decoding.
type hclSpecBlock struct {
	Name  string         `hcl:"name,label"`
	SType string         `hcl:"stype"`
	DType string         `hcl:"dtype"`
	Range hcl.Expression `hcl:"range,optional"`
	Set   hcl.Expression `hcl:"set,optional"`
	Key   *string        `hcl:"key,optional"`
	Scale *float64       `hcl:"scale,optional"`
	Shift *float64       `hcl:"shift,optional"`
}

func decodeHCLSearchConfig(data []byte, filename string) (*core.SearchConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	var parsed hclSearchFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}

	variables, err := namedSpecsFromHCL(parsed.Variables)
	if err != nil {
		return nil, fmt.Errorf("variables: %w", err)
	}
	hyperparams, err := namedSpecsFromHCL(parsed.Hyperparams)
	if err != nil {
		return nil, fmt.Errorf("hyperparams: %w", err)
	}

	return &core.SearchConfig{
		Variables:   variables,
		Hyperparams: hyperparams,
	}, nil
}

func namedSpecsFromHCL(blocks []*hclSpecBlock) ([]core.NamedSpec, error) {
	specs := make([]core.NamedSpec, 0, len(blocks))
	for _, b := range blocks {
		spec, err := b.toSpec()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name, err)
		}
		specs = append(specs, core.NamedSpec{Name: b.Name, Spec: spec})
	}
	return specs, nil
}

func (b *hclSpecBlock) toSpec() (core.SearchSpec, error) {
	spec := core.SearchSpec{
		Distribution: core.DistributionType(b.SType),
		ValueType:    core.ValueType(b.DType),
		Scale:        1.0,
	}
	if b.Key != nil {
		spec.Key = *b.Key
	}
	if b.Scale != nil {
		spec.Scale = *b.Scale
	}
	if b.Shift != nil {
		spec.Shift = *b.Shift
	}

	// Float specs keep whole numbers as floats, matching "1.0" in JSON.
	asFloat := spec.ValueType == core.ValueTypeFloat

	var err error
	if spec.Range, err = valuesFromExpr(b.Range, asFloat); err != nil {
		return spec, fmt.Errorf("range: %w", err)
	}
	if spec.Set, err = valuesFromExpr(b.Set, asFloat); err != nil {
		return spec, fmt.Errorf("set: %w", err)
	}
	return spec, nil
}

// valuesFromExpr evaluates a tuple or list expression. A missing attribute
// evaluates to null and yields no values.
func valuesFromExpr(expr hcl.Expression, asFloat bool) ([]core.Value, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, fmt.Errorf("%w: expected a list, got %s", core.ErrUnsupportedType, ty.FriendlyName())
	}

	var out []core.Value
	it := v.ElementIterator()
	for it.Next() {
		_, elem := it.Element()
		cv, err := ctyToValue(elem)
		if err != nil {
			return nil, err
		}
		if asFloat && cv.Kind() == core.KindInt {
			n, _ := cv.AsInt()
			cv = core.Float(float64(n))
		}
		out = append(out, cv)
	}
	return out, nil
}

// ctyToValue recursively converts a cty.Value to a core.Value. Whole
// numbers become ints, other numbers floats.
func ctyToValue(v cty.Value) (core.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return core.Value{}, fmt.Errorf("%w: null or unknown value", core.ErrUnsupportedType)
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return core.String(v.AsString()), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if n, acc := bf.Int64(); acc == big.Exact {
				return core.Int(n), nil
			}
		}
		f, _ := bf.Float64()
		return core.Float(f), nil

	case ty == cty.Bool:
		return core.Bool(v.True()), nil

	case ty.IsListType() || ty.IsTupleType():
		var items []core.Value
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			item, err := ctyToValue(elem)
			if err != nil {
				return core.Value{}, err
			}
			items = append(items, item)
		}
		return core.List(items...), nil

	default:
		return core.Value{}, fmt.Errorf("%w: %s", core.ErrUnsupportedType, ty.FriendlyName())
	}
}
