package loader

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"time"
)

// Position is a line and column in a description file. Both are 1-based.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Tree is a parsed description: a generic value tree plus a locator
// mapping value paths to source positions.
//
// Values are normalized to string, bool, int64, float64, nil, []any and
// map[string]any regardless of the format they came from.
type Tree struct {
	// Root is the top-level mapping.
	Root map[string]any

	// File is the file name the tree was parsed from.
	File string

	positions map[string]Position
}

// NewTree creates an empty tree for file.
func NewTree(file string, root map[string]any) *Tree {
	if root == nil {
		root = make(map[string]any)
	}
	return &Tree{
		Root:      root,
		File:      file,
		positions: make(map[string]Position),
	}
}

// Pos returns the position recorded for path.
func (t *Tree) Pos(path string) (Position, bool) {
	p, ok := t.positions[path]
	return p, ok
}

// Locate returns the position of path, or of its closest recorded parent.
func (t *Tree) Locate(path string) Position {
	for p := path; p != ""; p = parentPath(p) {
		if pos, ok := t.positions[p]; ok {
			return pos
		}
	}
	return t.positions[""]
}

// SetPos records the position of path. The root is the empty path.
func (t *Tree) SetPos(path string, line, column int) {
	if line <= 0 {
		return
	}
	t.positions[path] = Position{Line: line, Column: column}
}

// Paths returns every located path in source order.
func (t *Tree) Paths() []string {
	paths := make([]string, 0, len(t.positions))
	for p := range t.positions {
		paths = append(paths, p)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := t.positions[paths[i]], t.positions[paths[j]]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return paths[i] < paths[j]
	})
	return paths
}

// keyPath appends a mapping key to parent.
func keyPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// indexPath appends a list index to parent.
func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// parentPath strips the last key or index from path.
func parentPath(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[:i]
		case '[':
			return path[:i]
		}
	}
	return ""
}

// normalize converts a decoded value into the tree value set.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", x)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", x)
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	case *big.Int:
		if !x.IsInt64() {
			return nil, fmt.Errorf("integer %s out of range", x)
		}
		return x.Int64(), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return x.String(), nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// typeName names a tree value's type for messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int64:
		return "integer"
	case float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
