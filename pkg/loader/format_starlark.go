package loader

import (
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// DefaultStarlarkSteps bounds the work a Starlark description may do.
const DefaultStarlarkSteps = 1_000_000

// maxStarlarkDepth bounds nesting when converting values. Lists and dicts
// may contain themselves.
const maxStarlarkDepth = 64

// StarlarkFormat evaluates Starlark descriptions. Every global whose name
// does not start with "_" becomes a top-level field, so a script can build
// repetitive pin lists procedurally:
//
//	name = "STM32F030C6Tx"
//	pins = [pin("PA%d" % i, position = 10 + i) for i in range(8)]
//
// Predeclared: struct and pin(name, **attrs). Only syntax and evaluation
// errors are located.
type StarlarkFormat struct {
	// MaxSteps caps execution steps; zero means DefaultStarlarkSteps.
	MaxSteps uint64
}

// Name implements Format.
func (StarlarkFormat) Name() string { return "starlark" }

// Extensions implements Format.
func (StarlarkFormat) Extensions() []string { return []string{".star"} }

// Parse implements Format.
func (s StarlarkFormat) Parse(filename string, data []byte) (*Tree, error) {
	steps := s.MaxSteps
	if steps == 0 {
		steps = DefaultStarlarkSteps
	}

	thread := &starlark.Thread{
		Name:  "mcuconf",
		Print: func(*starlark.Thread, string) {},
	}
	thread.SetMaxExecutionSteps(steps)

	predeclared := starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"pin":    starlark.NewBuiltin("pin", builtinPin),
	}

	globals, err := starlark.ExecFile(thread, filename, data, predeclared)
	if err != nil {
		return nil, convertStarlarkError(filename, err)
	}

	root := make(map[string]any, len(globals))
	for name, val := range globals {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if _, ok := val.(starlark.Callable); ok {
			continue
		}
		v, err := fromStarlark(val, 0)
		if err != nil {
			return nil, newParseError(filename, 0, 0, fmt.Sprintf("%s: %v", name, err), err)
		}
		root[name] = v
	}

	return NewTree(filename, root), nil
}

// builtinPin returns a dict holding name and the keyword attributes.
func builtinPin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, nil, 1, &name); err != nil {
		return nil, err
	}

	dict := starlark.NewDict(len(kwargs) + 1)
	if err := dict.SetKey(starlark.String("name"), starlark.String(name)); err != nil {
		return nil, err
	}
	for _, kv := range kwargs {
		if kv[0] == starlark.String("name") {
			return nil, fmt.Errorf("%s: name given twice", b.Name())
		}
		if err := dict.SetKey(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

// fromStarlark converts a Starlark value into a tree value.
func fromStarlark(v starlark.Value, depth int) (any, error) {
	if depth > maxStarlarkDepth {
		return nil, fmt.Errorf("value nested deeper than %d levels", maxStarlarkDepth)
	}

	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", val.String())
		}
		return i, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case *starlark.List, starlark.Tuple:
		seq := val.(starlark.Indexable)
		list := make([]any, seq.Len())
		for i := range list {
			item, err := fromStarlark(seq.Index(i), depth+1)
			if err != nil {
				return nil, err
			}
			list[i] = item
		}
		return list, nil
	case *starlark.Dict:
		dict := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is not a string", item[0].String())
			}
			value, err := fromStarlark(item[1], depth+1)
			if err != nil {
				return nil, err
			}
			dict[string(key)] = value
		}
		return dict, nil
	case *starlarkstruct.Struct:
		dict := make(map[string]any)
		for _, name := range val.AttrNames() {
			attr, err := val.Attr(name)
			if err != nil {
				return nil, err
			}
			value, err := fromStarlark(attr, depth+1)
			if err != nil {
				return nil, err
			}
			dict[name] = value
		}
		return dict, nil
	}
	return nil, fmt.Errorf("unsupported starlark type %s", v.Type())
}

// convertStarlarkError locates syntax, resolve and evaluation errors.
func convertStarlarkError(filename string, err error) *Error {
	var (
		synErr  syntax.Error
		resErrs resolve.ErrorList
		evalErr *starlark.EvalError
	)

	switch {
	case errors.As(err, &synErr):
		return newParseError(filename, int(synErr.Pos.Line), int(synErr.Pos.Col), synErr.Msg, err)

	case errors.As(err, &resErrs) && len(resErrs) > 0:
		first := resErrs[0]
		return newParseError(filename, int(first.Pos.Line), int(first.Pos.Col), first.Msg, err)

	case errors.As(err, &evalErr):
		for i := len(evalErr.CallStack) - 1; i >= 0; i-- {
			pos := evalErr.CallStack[i].Pos
			if pos.Line > 0 {
				return newParseError(filename, int(pos.Line), int(pos.Col), evalErr.Msg, err)
			}
		}
		return newParseError(filename, 0, 0, evalErr.Msg, err)
	}

	return newParseError(filename, 0, 0, err.Error(), err)
}
