package parse

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/standardbeagle/configtpl/internal/merge"
	"github.com/zclconf/go-cty/cty"
)

// HCL parses HCL native syntax. Attributes become keys. A block becomes a
// mapping nested under its type and then under each of its labels, so
//
//	server "web" { port = 80 }
//
// yields {"server": {"web": {"port": 80}}}. Repeated blocks at the same
// position are deep-merged. Expressions are evaluated without variables or
// functions.
type HCL struct{}

// Parse implements Parser.
func (HCL) Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	file, diags := hclparse.NewParser().ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, syntaxError(FormatHCL, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, syntaxError(FormatHCL, errors.New("unexpected body type"))
	}

	out, err := hclBody(body)
	if err != nil {
		return nil, syntaxError(FormatHCL, err)
	}
	return out, nil
}

func hclBody(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		v, err := ctyToValue(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = v
	}

	for _, block := range body.Blocks {
		if _, isAttr := body.Attributes[block.Type]; isAttr {
			return nil, fmt.Errorf("block %q conflicts with an attribute of the same name", block.Type)
		}

		inner, err := hclBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}

		var nested any = inner
		for i := len(block.Labels) - 1; i >= 0; i-- {
			nested = map[string]any{block.Labels[i]: nested}
		}

		patch := map[string]any{block.Type: nested}
		out = merge.Merge(out, patch)
	}

	return out, nil
}

func ctyToValue(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, errors.New("value is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			item, err := ctyToValue(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			out[k.AsString()] = item
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			item, err := ctyToValue(v)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
