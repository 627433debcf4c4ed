package loader

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLFormat parses YAML descriptions. Every value is located.
type YAMLFormat struct{}

// Name implements Format.
func (YAMLFormat) Name() string { return "yaml" }

// Extensions implements Format.
func (YAMLFormat) Extensions() []string { return []string{".yaml", ".yml"} }

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// MaxYAMLAliasNodes caps the nodes reachable through aliases in one document.
const MaxYAMLAliasNodes = 10_000

// Parse implements Format.
func (YAMLFormat) Parse(filename string, data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		line := 0
		if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
		}
		return nil, newParseError(filename, line, 0, err.Error(), err)
	}

	tree := NewTree(filename, nil)
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty document.
		return tree, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.AliasNode {
		root = root.Alias
	}
	if root.Kind != yaml.MappingNode {
		return nil, newParseError(filename, root.Line, root.Column,
			"description must be a mapping at the top level", nil)
	}

	w := &yamlWalker{t: tree, active: make(map[*yaml.Node]bool)}
	v, err := w.walk("", root)
	if err != nil {
		return nil, err
	}
	tree.Root = v.(map[string]any)
	return tree, nil
}

// yamlWalker converts a node graph into tree values. Aliases are expanded
// in place, so it tracks the anchors being expanded and a node budget.
type yamlWalker struct {
	t       *Tree
	active  map[*yaml.Node]bool
	aliased int
}

// walk converts n into a tree value, recording positions under path.
func (w *yamlWalker) walk(path string, n *yaml.Node) (any, error) {
	t := w.t
	t.SetPos(path, n.Line, n.Column)

	if len(w.active) > 0 {
		w.aliased++
		if w.aliased > MaxYAMLAliasNodes {
			return nil, newParseError(t.File, n.Line, n.Column,
				fmt.Sprintf("aliases expand to more than %d nodes", MaxYAMLAliasNodes), nil)
		}
	}

	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil || w.active[n.Alias] {
			return nil, newParseError(t.File, n.Line, n.Column,
				fmt.Sprintf("recursive alias *%s", n.Value), nil)
		}
		w.active[n.Alias] = true
		defer delete(w.active, n.Alias)
		return w.walk(path, n.Alias)

	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode || k.ShortTag() == "!!merge" {
				return nil, newParseError(t.File, k.Line, k.Column,
					"mapping keys must be plain scalars", nil)
			}
			if _, dup := out[k.Value]; dup {
				return nil, newParseError(t.File, k.Line, k.Column,
					fmt.Sprintf("mapping key %q already defined", k.Value), nil)
			}
			val, err := w.walk(keyPath(path, k.Value), v)
			if err != nil {
				return nil, err
			}
			out[k.Value] = val
		}
		return out, nil

	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, e := range n.Content {
			val, err := w.walk(indexPath(path, i), e)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil

	case yaml.ScalarNode:
		return scalarValue(t, n)

	default:
		return nil, newParseError(t.File, n.Line, n.Column, "unexpected YAML node", nil)
	}
}

// scalarValue resolves a scalar node by its tag.
func scalarValue(t *Tree, n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, newParseError(t.File, n.Line, n.Column, err.Error(), err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, newParseError(t.File, n.Line, n.Column,
				fmt.Sprintf("integer %s out of range", n.Value), err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, newParseError(t.File, n.Line, n.Column, err.Error(), err)
		}
		return f, nil
	default:
		return n.Value, nil
	}
}
