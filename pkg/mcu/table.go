package mcu

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrEmptyPinName is returned when a pin has no name.
	ErrEmptyPinName = errors.New("mcu: empty pin name")

	// ErrDuplicatePin is returned when two pins share a name.
	ErrDuplicatePin = errors.New("mcu: duplicate pin")

	// ErrEmptyName is returned when a description has no name.
	ErrEmptyName = errors.New("mcu: empty name")
)

// PinTable is the ordered, name-indexed set of pins of a Config.
//
// The zero value is an empty table. A PinTable is read-only once built and is
// safe for concurrent use.
type PinTable struct {
	pins  []Pin
	index map[string]int
}

// NewPinTable builds a table from pins in declaration order.
func NewPinTable(pins []Pin) (*PinTable, error) {
	t := &PinTable{
		pins:  make([]Pin, 0, len(pins)),
		index: make(map[string]int, len(pins)),
	}

	for i, p := range pins {
		if p.name == "" {
			return nil, fmt.Errorf("%w: pins[%d]", ErrEmptyPinName, i)
		}
		if prev, exists := t.index[p.name]; exists {
			return nil, fmt.Errorf("%w: %q at pins[%d] and pins[%d]", ErrDuplicatePin, p.name, prev, i)
		}
		t.index[p.name] = len(t.pins)
		t.pins = append(t.pins, p)
	}

	return t, nil
}

// Size returns the number of declared pins.
func (t *PinTable) Size() int {
	if t == nil {
		return 0
	}
	return len(t.pins)
}

// Find returns the pin named exactly name.
func (t *PinTable) Find(name string) (Pin, bool) {
	i, ok := t.IndexOf(name)
	if !ok {
		return Pin{}, false
	}
	return t.pins[i], true
}

// IndexOf returns the declaration position of the pin named name.
func (t *PinTable) IndexOf(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[name]
	return i, ok
}

// At returns the pin at declaration position i.
func (t *PinTable) At(i int) (Pin, bool) {
	if t == nil || i < 0 || i >= len(t.pins) {
		return Pin{}, false
	}
	return t.pins[i], true
}

// Pins returns the pins in declaration order.
func (t *PinTable) Pins() []Pin {
	if t == nil {
		return nil
	}
	return slices.Clone(t.pins)
}

// Names returns the pin names in declaration order.
func (t *PinTable) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.pins))
	for i, p := range t.pins {
		names[i] = p.name
	}
	return names
}

// FindSignal returns the positions of every pin named query or carrying a
// signal that contains query, in declaration order.
func (t *PinTable) FindSignal(query string) []int {
	if t == nil || query == "" {
		return nil
	}
	var found []int
	for i, p := range t.pins {
		if p.Matches(query) {
			found = append(found, i)
		}
	}
	return found
}
