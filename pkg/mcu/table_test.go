package mcu

import (
	"errors"
	"slices"
	"testing"
)

func TestNewPinTable(t *testing.T) {
	tests := []struct {
		name    string
		pins    []Pin
		wantErr error
		size    int
	}{
		{
			name: "three pins",
			pins: []Pin{NewPin("PA0", nil), NewPin("PA1", nil), NewPin("PB3", nil)},
			size: 3,
		},
		{
			name: "no pins",
			pins: nil,
			size: 0,
		},
		{
			name:    "duplicate name",
			pins:    []Pin{NewPin("PA0", nil), NewPin("PA1", nil), NewPin("PA0", nil)},
			wantErr: ErrDuplicatePin,
		},
		{
			name:    "empty name",
			pins:    []Pin{NewPin("PA0", nil), NewPin("", nil)},
			wantErr: ErrEmptyPinName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewPinTable(tt.pins)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if table != nil {
					t.Error("expected no table on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if table.Size() != tt.size {
				t.Errorf("expected size %d, got %d", tt.size, table.Size())
			}
		})
	}
}

func TestPinTable_Find(t *testing.T) {
	table, err := NewPinTable([]Pin{NewPin("PA0", nil), NewPin("PA1", nil), NewPin("PB3", nil)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, name := range []string{"PA0", "PA1", "PB3"} {
		pin, ok := table.Find(name)
		if !ok {
			t.Errorf("expected %s to be found", name)
			continue
		}
		if pin.Name() != name {
			t.Errorf("expected pin %s, got %s", name, pin.Name())
		}
		idx, _ := table.IndexOf(name)
		if idx != i {
			t.Errorf("expected %s at %d, got %d", name, i, idx)
		}
	}

	for _, name := range []string{"PC0", "pa0", "", "PA"} {
		if _, ok := table.Find(name); ok {
			t.Errorf("expected %q not to be found", name)
		}
	}

	// Repeated queries are stable.
	for range 3 {
		if table.Size() != 3 {
			t.Fatalf("size changed: %d", table.Size())
		}
		if _, ok := table.Find("PA1"); !ok {
			t.Fatal("PA1 disappeared")
		}
	}
}

func TestPinTable_Order(t *testing.T) {
	names := []string{"VDD", "PA3", "PA0", "NRST"}
	pins := make([]Pin, len(names))
	for i, n := range names {
		pins[i] = NewPin(n, nil)
	}

	table, err := NewPinTable(pins)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := table.Names(); !slices.Equal(got, names) {
		t.Errorf("expected order %v, got %v", names, got)
	}

	pin, ok := table.At(2)
	if !ok || pin.Name() != "PA0" {
		t.Errorf("expected PA0 at 2, got %v", pin.Name())
	}
	if _, ok := table.At(4); ok {
		t.Error("expected out of range")
	}
	if _, ok := table.At(-1); ok {
		t.Error("expected out of range")
	}
}

func TestPinTable_CopiesAreIndependent(t *testing.T) {
	table, err := NewPinTable([]Pin{NewPin("PA0", nil)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pins := table.Pins()
	pins[0] = NewPin("XX", nil)

	if _, ok := table.Find("PA0"); !ok {
		t.Error("mutating the returned slice changed the table")
	}
	if got, _ := table.At(0); got.Name() != "PA0" {
		t.Errorf("expected PA0, got %s", got.Name())
	}
}

func TestPinTable_FindSignal(t *testing.T) {
	table, err := NewPinTable([]Pin{
		NewPin("PA9", map[string]any{"signals": []any{"USART1_TX", "TIM1_CH2"}}),
		NewPin("PA12", map[string]any{"signals": []any{"USART1_DE", "USART1_RTS"}}),
		NewPin("PB6", map[string]any{"signals": []any{"I2C1_SCL", "USART1_TX"}}),
		NewPin("VDD", map[string]any{"type": "Power"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		query string
		want  []int
	}{
		{"USART1_TX", []int{0, 2}},
		{"USART1_DE", []int{1}},
		{"I2C1", []int{2}},
		{"VDD", []int{3}},
		{"XXXX", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := table.FindSignal(tt.query)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindSignal(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestPinTable_NilIsEmpty(t *testing.T) {
	var table *PinTable
	if table.Size() != 0 {
		t.Errorf("expected size 0, got %d", table.Size())
	}
	if _, ok := table.Find("PA0"); ok {
		t.Error("expected not found on nil table")
	}
}
