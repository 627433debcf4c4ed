package mcu

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Well-known pin attribute keys.
const (
	AttrType     = "type"
	AttrPosition = "position"
	AttrSignals  = "signals"
	AttrSignal   = "signal"
)

// PinKind is the electrical role of a pin as declared by the description.
type PinKind string

const (
	PinKindNC    PinKind = "NC"
	PinKindIO    PinKind = "I/O"
	PinKindBoot  PinKind = "BOOT"
	PinKindReset PinKind = "Reset"
	PinKindPower PinKind = "Power"
)

// ParsePinKind maps a declared type to a PinKind. An empty type means I/O;
// anything unrecognised is treated as not connected.
func ParsePinKind(s string) PinKind {
	switch PinKind(s) {
	case "":
		return PinKindIO
	case PinKindNC, PinKindIO, PinKindBoot, PinKindReset, PinKindPower:
		return PinKind(s)
	default:
		return PinKindNC
	}
}

// PositionKind distinguishes linear (leaded) from grid (BGA/CSP) positions.
type PositionKind int

const (
	PositionNone PositionKind = iota
	PositionLinear
	PositionGrid
)

// Position is the physical location of a pin on its package.
type Position struct {
	kind     PositionKind
	index    uint16
	row, col uint8
}

// LinearPosition returns the position of pin n on a leaded package.
func LinearPosition(n uint16) Position {
	return Position{kind: PositionLinear, index: n}
}

// GridPosition returns the position of a ball on a grid package.
func GridPosition(row, col uint8) Position {
	return Position{kind: PositionGrid, row: row, col: col}
}

// Kind reports whether the position is linear, grid or unset.
func (p Position) Kind() PositionKind { return p.kind }

// Index returns the linear pin number.
func (p Position) Index() uint16 { return p.index }

// Row returns the grid row.
func (p Position) Row() uint8 { return p.row }

// Col returns the grid column.
func (p Position) Col() uint8 { return p.col }

func (p Position) String() string {
	switch p.kind {
	case PositionLinear:
		return fmt.Sprintf("%d", p.index)
	case PositionGrid:
		return fmt.Sprintf("%d:%d", p.row, p.col)
	default:
		return "-"
	}
}

// Pin is one declared pin. It is a value type; its attribute set is never
// shared with the caller.
type Pin struct {
	name     string
	attrs    map[string]any
	kind     PinKind
	position Position
	signals  []string
	signal   string
}

// NewPin builds a pin from its name and attribute set. The attribute set is
// deep-copied. Well-known keys are interpreted leniently here; the loader is
// responsible for rejecting malformed values before a Pin is built.
func NewPin(name string, attrs map[string]any) Pin {
	p := Pin{
		name:  name,
		attrs: cloneMap(attrs),
	}

	kind, _ := attrs[AttrType].(string)
	p.kind = ParsePinKind(kind)
	p.position = positionFromAttr(attrs[AttrPosition])

	if list, ok := attrs[AttrSignals].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				p.signals = append(p.signals, s)
			}
		}
	}
	if s, ok := attrs[AttrSignal].(string); ok && slices.Contains(p.signals, s) {
		p.signal = s
	}

	return p
}

// Name returns the pin name.
func (p Pin) Name() string { return p.name }

// Kind returns the declared electrical role.
func (p Pin) Kind() PinKind { return p.kind }

// Position returns the physical position, if one was declared.
func (p Pin) Position() Position { return p.position }

// Signals returns a copy of the alternate signals the pin can carry.
func (p Pin) Signals() []string { return slices.Clone(p.signals) }

// Signal returns the selected signal, or "" when none is selected.
func (p Pin) Signal() string { return p.signal }

// Attribute returns a copy of a single attribute value.
func (p Pin) Attribute(key string) (any, bool) {
	v, ok := p.attrs[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Attributes returns a deep copy of the full attribute set.
func (p Pin) Attributes() map[string]any {
	return cloneMap(p.attrs)
}

// AttributeKeys returns the attribute keys in sorted order.
func (p Pin) AttributeKeys() []string {
	return slices.Sorted(maps.Keys(p.attrs))
}

// Matches reports whether the pin is named query or carries a signal whose
// name contains query.
func (p Pin) Matches(query string) bool {
	if p.name == query {
		return true
	}
	for _, s := range p.signals {
		if strings.Contains(s, query) {
			return true
		}
	}
	return false
}

func positionFromAttr(v any) Position {
	switch pos := v.(type) {
	case int64:
		if pos >= 0 && pos <= 0xFFFF {
			return LinearPosition(uint16(pos))
		}
	case map[string]any:
		row, rok := pos["row"].(int64)
		col, cok := pos["col"].(int64)
		if rok && cok && row >= 0 && row <= 0xFF && col >= 0 && col <= 0xFF {
			return GridPosition(uint8(row), uint8(col))
		}
	}
	return Position{}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
