package loader

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

// CUEFormat parses CUE descriptions. The evaluated value must be concrete.
type CUEFormat struct{}

// Name implements Format.
func (CUEFormat) Name() string { return "cue" }

// Extensions implements Format.
func (CUEFormat) Extensions() []string { return []string{".cue"} }

// Parse implements Format.
func (CUEFormat) Parse(filename string, data []byte) (*Tree, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, convertCUEError(filename, err)
	}
	return cueTree(filename, val)
}

// JSONFormat parses JSON descriptions through the CUE JSON decoder.
type JSONFormat struct{}

// Name implements Format.
func (JSONFormat) Name() string { return "json" }

// Extensions implements Format.
func (JSONFormat) Extensions() []string { return []string{".json"} }

// Parse implements Format.
func (JSONFormat) Parse(filename string, data []byte) (*Tree, error) {
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return nil, convertCUEError(filename, err)
	}

	ctx := cuecontext.New()
	val := ctx.BuildExpr(expr, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, convertCUEError(filename, err)
	}
	return cueTree(filename, val)
}

// cueTree walks an evaluated CUE value into a Tree.
func cueTree(filename string, val cue.Value) (*Tree, error) {
	tree := NewTree(filename, nil)
	if val.IncompleteKind() != cue.StructKind {
		line, col := cuePos(val)
		return nil, newParseError(filename, line, col,
			"description must be a struct at the top level", nil)
	}

	v, err := walkCUE(tree, "", val)
	if err != nil {
		return nil, err
	}
	tree.Root = v.(map[string]any)
	return tree, nil
}

// walkCUE converts val into a tree value, recording positions under path.
func walkCUE(t *Tree, path string, val cue.Value) (any, error) {
	line, col := cuePos(val)
	t.SetPos(path, line, col)

	switch val.Kind() {
	case cue.StructKind:
		iter, err := val.Fields()
		if err != nil {
			return nil, convertCUEError(t.File, err)
		}
		out := make(map[string]any)
		for iter.Next() {
			key := iter.Selector().Unquoted()
			v, err := walkCUE(t, keyPath(path, key), iter.Value())
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil

	case cue.ListKind:
		iter, err := val.List()
		if err != nil {
			return nil, convertCUEError(t.File, err)
		}
		out := []any{}
		for i := 0; iter.Next(); i++ {
			v, err := walkCUE(t, indexPath(path, i), iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case cue.IntKind:
		i, err := val.Int64()
		if err != nil {
			return nil, newParseError(t.File, line, col, fmt.Sprintf("%s: %v", path, err), err)
		}
		return i, nil

	case cue.FloatKind, cue.NumberKind:
		f, err := val.Float64()
		if err != nil {
			return nil, newParseError(t.File, line, col, fmt.Sprintf("%s: %v", path, err), err)
		}
		return f, nil

	case cue.StringKind:
		return val.String()

	case cue.BytesKind:
		b, err := val.Bytes()
		return string(b), err

	case cue.BoolKind:
		return val.Bool()

	case cue.NullKind:
		return nil, nil

	default:
		if err := val.Err(); err != nil {
			return nil, convertCUEError(t.File, err)
		}
		return nil, newParseError(t.File, line, col,
			fmt.Sprintf("%s: value is not concrete", path), nil)
	}
}

// cuePos returns the source position of val, or zeros.
func cuePos(val cue.Value) (int, int) {
	pos := val.Pos()
	if !pos.IsValid() {
		return 0, 0
	}
	return pos.Line(), pos.Column()
}

// convertCUEError converts the first CUE error into a parse error with its
// position.
func convertCUEError(filename string, err error) *Error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return newParseError(filename, 0, 0, err.Error(), err)
	}

	first := errs[0]
	var line, column int
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		line = pos[0].Line()
		column = pos[0].Column()
	}

	return newParseError(filename, line, column, first.Error(), err)
}
