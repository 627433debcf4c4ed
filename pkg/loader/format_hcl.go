package loader

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// HCLFormat parses HCL descriptions.
//
// Top-level attributes map to description fields. Labeled blocks build the
// repeated sections, with the label as the entry's identifying field:
//
//	pin "PA0" { signals = ["ADC_IN0"] }        -> pins[i].name
//	peripheral "ADC" { config_file = "adc" }   -> peripherals[i].name
//	memory "flash" { start = 0x08000000 }      -> memory[i].kind
//
// Unlabeled blocks such as platform { ... } become nested mappings.
type HCLFormat struct{}

// blockList describes a labeled block type collected into a list.
type blockList struct {
	key   string
	label string
}

var hclBlockLists = map[string]blockList{
	"pin":        {key: "pins", label: "name"},
	"peripheral": {key: "peripherals", label: "name"},
	"memory":     {key: "memory", label: "kind"},
}

// Name implements Format.
func (HCLFormat) Name() string { return "hcl" }

// Extensions implements Format.
func (HCLFormat) Extensions() []string { return []string{".hcl"} }

// Parse implements Format.
func (h HCLFormat) Parse(filename string, data []byte) (*Tree, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, convertDiagnostics(filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, newParseError(filename, 0, 0, "unexpected HCL body type", nil)
	}

	tree := NewTree(filename, nil)
	tree.SetPos("", 1, 1)

	root, err := h.body(tree, "", body, true)
	if err != nil {
		return nil, err
	}
	tree.Root = root
	return tree, nil
}

// body converts an HCL body into a mapping. Block lists are only collected
// at the top level.
func (h HCLFormat) body(t *Tree, path string, body *hclsyntax.Body, top bool) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes))

	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	for _, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, convertDiagnostics(t.File, diags)
		}
		attrPath := keyPath(path, attr.Name)
		recordExprPos(t, attrPath, attr.Expr)

		v, err := ctyToNative(val)
		if err != nil {
			start := attr.Expr.Range().Start
			return nil, newParseError(t.File, start.Line, start.Column,
				fmt.Sprintf("%s: %v", attrPath, err), err)
		}
		out[attr.Name] = v
	}

	for _, block := range body.Blocks {
		def := block.DefRange().Start

		if list, ok := hclBlockLists[block.Type]; ok && top {
			if len(block.Labels) != 1 {
				return nil, newParseError(t.File, def.Line, def.Column,
					fmt.Sprintf("%s block requires exactly one label", block.Type), nil)
			}

			existing, present := out[list.key]
			entries, isList := existing.([]any)
			if present && !isList {
				return nil, newParseError(t.File, def.Line, def.Column,
					fmt.Sprintf("%s blocks conflict with the %s attribute", block.Type, list.key), nil)
			}

			listPath := keyPath(path, list.key)
			if !present {
				t.SetPos(listPath, def.Line, def.Column)
			}
			entryPath := indexPath(listPath, len(entries))

			entry, err := h.body(t, entryPath, block.Body, false)
			if err != nil {
				return nil, err
			}
			entry[list.label] = block.Labels[0]
			t.SetPos(entryPath, def.Line, def.Column)
			if len(block.LabelRanges) > 0 {
				lr := block.LabelRanges[0].Start
				t.SetPos(keyPath(entryPath, list.label), lr.Line, lr.Column)
			}

			out[list.key] = append(entries, entry)
			continue
		}

		if len(block.Labels) > 0 {
			return nil, newParseError(t.File, def.Line, def.Column,
				fmt.Sprintf("unexpected labeled block %q", block.Type), nil)
		}
		if _, dup := out[block.Type]; dup {
			return nil, newParseError(t.File, def.Line, def.Column,
				fmt.Sprintf("%q is defined more than once", block.Type), nil)
		}

		blockPath := keyPath(path, block.Type)
		nested, err := h.body(t, blockPath, block.Body, false)
		if err != nil {
			return nil, err
		}
		t.SetPos(blockPath, def.Line, def.Column)
		out[block.Type] = nested
	}

	return out, nil
}

// recordExprPos records positions for expr and the elements of tuple and
// object constructors nested in it.
func recordExprPos(t *Tree, path string, expr hclsyntax.Expression) {
	start := expr.Range().Start
	t.SetPos(path, start.Line, start.Column)

	switch e := expr.(type) {
	case *hclsyntax.TupleConsExpr:
		for i, x := range e.Exprs {
			recordExprPos(t, indexPath(path, i), x)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			key, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() || !key.Type().Equals(cty.String) || key.IsNull() {
				continue
			}
			recordExprPos(t, keyPath(path, key.AsString()), item.ValueExpr)
		}
	}
}

// ctyToNative converts a cty value into a tree value. Whole numbers become
// int64, other numbers float64.
func ctyToNative(v cty.Value) (any, error) {
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, acc := bf.Int64()
			if acc != big.Exact {
				return nil, fmt.Errorf("integer %s out of range", bf.Text('f', 0))
			}
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

// convertDiagnostics converts the first error diagnostic into a parse error.
func convertDiagnostics(filename string, diags hcl.Diagnostics) *Error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		var line, column int
		if d.Subject != nil {
			line = d.Subject.Start.Line
			column = d.Subject.Start.Column
		}
		msg := d.Summary
		if d.Detail != "" {
			msg = d.Summary + ": " + d.Detail
		}
		return newParseError(filename, line, column, msg, diags)
	}
	return newParseError(filename, 0, 0, diags.Error(), diags)
}
