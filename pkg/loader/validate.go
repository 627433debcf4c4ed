package loader

import (
	"fmt"
	"sort"
)

// checkStructure verifies the fields every description needs: a non-empty
// name and a list of pins with unique, non-empty names.
func checkStructure(tree *Tree, strict bool) []Finding {
	var findings []Finding
	add := func(field string, reason Reason, format string, args ...any) {
		pos := tree.Locate(field)
		findings = append(findings, Finding{
			Field:   field,
			Reason:  reason,
			Message: fmt.Sprintf(format, args...),
			Line:    pos.Line,
			Column:  pos.Column,
		})
	}

	switch name, ok := tree.Root["name"]; {
	case !ok:
		add("name", ReasonMissingField, "required field is missing")
	case !isString(name):
		add("name", ReasonInvalidType, "expected string, got %s", typeName(name))
	case name.(string) == "":
		add("name", ReasonEmptyField, "must not be empty")
	}

	raw, ok := tree.Root["pins"]
	if !ok {
		add("pins", ReasonMissingField, "required field is missing")
		return sortFindings(findings)
	}
	entries, ok := raw.([]any)
	if !ok {
		add("pins", ReasonInvalidType, "expected list, got %s", typeName(raw))
		return sortFindings(findings)
	}

	firstSeen := make(map[string]int, len(entries))
	for i, e := range entries {
		entryPath := indexPath("pins", i)
		entry, ok := e.(map[string]any)
		if !ok {
			add(entryPath, ReasonInvalidType, "expected mapping, got %s", typeName(e))
			continue
		}

		namePath := keyPath(entryPath, "name")
		switch name, ok := entry["name"]; {
		case !ok:
			add(namePath, ReasonMissingField, "required field is missing")
		case !isString(name):
			add(namePath, ReasonInvalidType, "expected string, got %s", typeName(name))
		case name.(string) == "":
			add(namePath, ReasonEmptyField, "must not be empty")
		default:
			n := name.(string)
			if first, dup := firstSeen[n]; dup {
				add(namePath, ReasonDuplicatePin, "duplicate pin %q (first declared at %s)", n, indexPath("pins", first))
			} else {
				firstSeen[n] = i
			}
		}

		if strict {
			for _, key := range sortedKeys(entry) {
				if key == "name" {
					continue
				}
				if where, found := findNull(keyPath(entryPath, key), entry[key]); found {
					add(where, ReasonInvalidValue, "attribute value must not be null")
				}
			}
		}
	}

	return sortFindings(findings)
}

// findNull returns the path of the first null value nested in v.
func findNull(path string, v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return path, true
	case []any:
		for i, e := range x {
			if where, found := findNull(indexPath(path, i), e); found {
				return where, true
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(x) {
			if where, found := findNull(keyPath(path, k), x[k]); found {
				return where, true
			}
		}
	}
	return "", false
}

// sortFindings orders findings by source position. Unlocated findings keep
// their relative order after the located ones.
func sortFindings(findings []Finding) []Finding {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Line == 0 || b.Line == 0 {
			return a.Line != 0 && b.Line == 0
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return findings
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
