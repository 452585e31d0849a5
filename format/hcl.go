package format

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/ehsanranjbar/flatkv"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// DecodeHCL decodes the top level attributes of an HCL file into a Map.
// Attributes and object constructor items keep their source order.
// Blocks are not supported.
func DecodeHCL(src []byte, filename string) (*flatkv.Map, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	slices.SortFunc(ordered, func(a, b *hcl.Attribute) int {
		return a.Range.Start.Byte - b.Range.Start.Byte
	})

	m := flatkv.NewMap()
	for _, attr := range ordered {
		v, err := exprToValue(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("in attribute %q: %w", attr.Name, err)
		}
		m.Set(attr.Name, v)
	}
	return m, nil
}

func exprToValue(e hcl.Expression) (any, error) {
	switch e := e.(type) {
	case *hclsyntax.ObjectConsExpr:
		m := flatkv.NewMap()
		for _, item := range e.Items {
			kv, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			if kv.IsNull() || !kv.Type().Equals(cty.String) {
				return nil, fmt.Errorf("object key at %s is not a string", item.KeyExpr.Range())
			}

			v, err := exprToValue(item.ValueExpr)
			if err != nil {
				return nil, fmt.Errorf("in key %q: %w", kv.AsString(), err)
			}
			m.Set(kv.AsString(), v)
		}
		return m, nil
	case *hclsyntax.TupleConsExpr:
		l := make(flatkv.List, 0, len(e.Exprs))
		for _, ee := range e.Exprs {
			v, err := exprToValue(ee)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return l, nil
	}

	v, diags := e.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyToValue(v)
}

func ctyToValue(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		l := make(flatkv.List, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			nv, err := ctyToValue(ev)
			if err != nil {
				return nil, err
			}
			l = append(l, nv)
		}
		return l, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := flatkv.NewMap()
		it := v.ElementIterator()
		for it.Next() {
			k, ev := it.Element()
			nv, err := ctyToValue(ev)
			if err != nil {
				return nil, fmt.Errorf("in key %q: %w", k.AsString(), err)
			}
			m.Set(k.AsString(), nv)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
