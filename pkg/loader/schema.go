package loader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// SchemaRegistry holds compiled CUE schemas and checks description trees
// against them. A cue.Context is not safe for concurrent use, so every
// evaluation holds the registry lock.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.Mutex
}

// SchemaMCU is the name of the built-in description schema.
const SchemaMCU = "mcu"

// NewSchemaRegistry creates a registry with the built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	sr := &SchemaRegistry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}

	if err := sr.RegisterSchema(SchemaMCU, "#MCU", builtinMCUSchema); err != nil {
		panic(err)
	}
	return sr
}

// RegisterSchema compiles source and registers the definition named def
// under name.
func (sr *SchemaRegistry) RegisterSchema(name, def, source string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	val := sr.ctx.CompileString(source, cue.Filename(name+".cue"))
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	schema := val.LookupPath(cue.ParsePath(def))
	if !schema.Exists() {
		return fmt.Errorf("schema %s does not define %s", name, def)
	}
	if err := schema.Err(); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}

	sr.schemas[name] = schema
	return nil
}

// HasSchema reports whether a schema is registered under name.
func (sr *SchemaRegistry) HasSchema(name string) bool {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	_, ok := sr.schemas[name]
	return ok
}

// ListSchemas returns all registered schema names, sorted.
func (sr *SchemaRegistry) ListSchemas() []string {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check unifies tree with the named schema. Violations are returned as
// findings located through the tree. If out is non-nil and there are no
// violations, the unified value is decoded into it.
func (sr *SchemaRegistry) Check(name string, tree *Tree, out any) ([]Finding, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	schema, ok := sr.schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %s not found", name)
	}

	data := sr.ctx.Encode(tree.Root)
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("failed to encode description: %w", err)
	}

	unified := schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaFindings(tree, err), nil
	}

	if out != nil {
		if err := unified.Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode description: %w", err)
		}
	}
	return nil, nil
}

// schemaFindings maps CUE errors onto tree paths.
func schemaFindings(tree *Tree, err error) []Finding {
	var findings []Finding
	seen := make(map[string]bool)

	for _, e := range cueerrors.Errors(err) {
		field := cuePathString(e.Path())
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)

		key := field + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true

		pos := tree.Locate(field)
		findings = append(findings, Finding{
			Field:   field,
			Reason:  ReasonSchemaViolation,
			Message: msg,
			Line:    pos.Line,
			Column:  pos.Column,
		})
	}
	return findings
}

// cuePathString converts a CUE error path into a tree path, dropping
// definition selectors.
func cuePathString(sels []string) string {
	var b strings.Builder
	for _, s := range sels {
		if strings.HasPrefix(s, "#") {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			b.WriteString("[" + s + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strings.Trim(s, `"`))
	}
	return b.String()
}

// builtinMCUSchema types every recognised field. Unknown keys stay open.
const builtinMCUSchema = `
#Position: int & >=0 & <=65535 | {
	row: int & >=0 & <=255
	col: int & >=0 & <=255
	...
}

// Null in place of a well-known pin key means absent.
#Pin: {
	name:      string
	type?:     string | null
	position?: #Position | null
	signals?: [...string] | null
	signal?: string | null
	...
}

#MemoryRegion: {
	kind:  "flash" | "eeprom" | "ram"
	start: int & >=0 & <=0xFFFFFFFF
	size:  int & >=0 & <=0xFFFFFFFF
	...
}

#Platform: {
	vendor:  "STM32" | "STM8" | "AVR" | "MSP430"
	family?: string
	line?:   string
	...
}

#Peripheral: {
	name:         string
	config_file?: string
	...
}

#MCU: {
	name: string
	pins: [...#Pin]

	"package"?:     string
	core?:          "CortexM0" | "CortexM3" | "CortexM4" | "CortexM7" | "AVR" | "STM8" | "MSP430"
	frequency_mhz?: int & >=0 & <=65535
	memory?: [...#MemoryRegion]
	platform?: #Platform
	peripherals?: [...#Peripheral]
	...
}
`
