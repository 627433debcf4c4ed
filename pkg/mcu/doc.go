// Package mcu defines the in-memory model of a microcontroller description.
//
// # Overview
//
// A Config is one fully loaded board or chip description: a non-empty name, an
// ordered PinTable, and the optional descriptive fields a description file may
// carry (package, core, clock frequency, memory map, platform, peripherals).
//
// Configs are built once, either by the loader package or directly through New,
// and are immutable afterwards. Every accessor returns a copy of any slice or map
// it exposes, so a Config can be shared between goroutines without locking.
//
// # Pin Table
//
// The PinTable keeps pins in declaration order and indexes them by name. The
// index is built when the table is constructed and is never modified:
//
//	table, err := mcu.NewPinTable([]mcu.Pin{
//	    mcu.NewPin("PA0", nil),
//	    mcu.NewPin("PA1", map[string]any{"signals": []any{"USART1_TX"}}),
//	})
//	pin, ok := table.Find("PA1")
//
// Pin names are unique within a table; NewPinTable rejects duplicates and empty
// names so that Find always has a single deterministic answer.
//
// # Attributes
//
// A pin's attribute set is open. The package only interprets a handful of
// well-known keys (type, position, signals, signal) through typed accessors and
// otherwise carries the set verbatim.
package mcu
