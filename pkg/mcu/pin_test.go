package mcu

import (
	"slices"
	"testing"
)

func TestNewPin_WellKnownAttributes(t *testing.T) {
	tests := []struct {
		name     string
		attrs    map[string]any
		kind     PinKind
		position Position
		signals  []string
		signal   string
	}{
		{
			name:  "defaults to I/O",
			attrs: nil,
			kind:  PinKindIO,
		},
		{
			name:     "power pin with linear position",
			attrs:    map[string]any{"type": "Power", "position": int64(47)},
			kind:     PinKindPower,
			position: LinearPosition(47),
		},
		{
			name:     "grid position",
			attrs:    map[string]any{"type": "Reset", "position": map[string]any{"row": int64(4), "col": int64(3)}},
			kind:     PinKindReset,
			position: GridPosition(4, 3),
		},
		{
			name:  "unknown type is not connected",
			attrs: map[string]any{"type": "Analog"},
			kind:  PinKindNC,
		},
		{
			name:    "selected signal",
			attrs:   map[string]any{"signals": []any{"Input", "Output", "EXTI"}, "signal": "Output"},
			kind:    PinKindIO,
			signals: []string{"Input", "Output", "EXTI"},
			signal:  "Output",
		},
		{
			name:    "selected signal not offered",
			attrs:   map[string]any{"signals": []any{"Input"}, "signal": "Missing"},
			kind:    PinKindIO,
			signals: []string{"Input"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPin("PA3", tt.attrs)
			if p.Kind() != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, p.Kind())
			}
			if p.Position() != tt.position {
				t.Errorf("expected position %v, got %v", tt.position, p.Position())
			}
			if !slices.Equal(p.Signals(), tt.signals) {
				t.Errorf("expected signals %v, got %v", tt.signals, p.Signals())
			}
			if p.Signal() != tt.signal {
				t.Errorf("expected signal %q, got %q", tt.signal, p.Signal())
			}
		})
	}
}

func TestPin_AttributesAreCopied(t *testing.T) {
	attrs := map[string]any{
		"label":   "LED",
		"signals": []any{"GPIO"},
		"extra":   map[string]any{"speed": "high"},
	}
	p := NewPin("PC13", attrs)

	attrs["label"] = "changed"
	attrs["signals"].([]any)[0] = "changed"

	if v, _ := p.Attribute("label"); v != "LED" {
		t.Errorf("expected label LED, got %v", v)
	}

	got := p.Attributes()
	got["extra"].(map[string]any)["speed"] = "low"

	extra, _ := p.Attribute("extra")
	if extra.(map[string]any)["speed"] != "high" {
		t.Error("nested attribute was mutated through a copy")
	}

	if keys := p.AttributeKeys(); !slices.Equal(keys, []string{"extra", "label", "signals"}) {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestPosition_String(t *testing.T) {
	if s := LinearPosition(12).String(); s != "12" {
		t.Errorf("expected 12, got %s", s)
	}
	if s := GridPosition(1, 2).String(); s != "1:2" {
		t.Errorf("expected 1:2, got %s", s)
	}
	if s := (Position{}).String(); s != "-" {
		t.Errorf("expected -, got %s", s)
	}
}
