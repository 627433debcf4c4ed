package mcu

import (
	"errors"
	"testing"
)

func TestParsePackage(t *testing.T) {
	tests := []struct {
		in      string
		family  PackageFamily
		pins    uint16
		grid    bool
		wantErr bool
	}{
		{in: "LQFP48", family: PackageLQFP, pins: 48},
		{in: "TFBGA144", family: PackageTFBGA, pins: 144, grid: true},
		{in: "WLCSP36", family: PackageWLCSP, pins: 36, grid: true},
		{in: "UFQFPN32", family: PackageUFQFPN, pins: 32},
		{in: "SOIC8", family: PackageUnknown, pins: 8},
		{in: "", wantErr: true},
		{in: "LQFP", wantErr: true},
		{in: "LQFP99999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pkg, err := ParsePackage(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pkg.Family() != tt.family {
				t.Errorf("expected family %s, got %s", tt.family, pkg.Family())
			}
			if pkg.Pins() != tt.pins {
				t.Errorf("expected %d pins, got %d", tt.pins, pkg.Pins())
			}
			if pkg.IsGrid() != tt.grid {
				t.Errorf("expected grid=%v", tt.grid)
			}
			if pkg.String() != tt.in {
				t.Errorf("expected %s, got %s", tt.in, pkg.String())
			}
		})
	}
}

func TestCore_TargetTriple(t *testing.T) {
	tests := map[Core]string{
		CoreCortexM0: "thumbv6m-none-eabi",
		CoreCortexM3: "thumbv7m-none-eabi",
		CoreCortexM4: "thumbv7em-none-eabi",
		CoreCortexM7: "thumbv7em-none-eabi",
		CoreAVR:      "",
		CoreMSP430:   "",
	}
	for core, want := range tests {
		if got := core.TargetTriple(); got != want {
			t.Errorf("%s: expected %q, got %q", core, want, got)
		}
	}
}

func TestNew(t *testing.T) {
	pkg, _ := ParsePackage("LQFP48")
	d := Description{
		Name:         "STM32F030C6Tx",
		Pins:         []Pin{NewPin("PA0", nil), NewPin("PA1", nil)},
		Package:      pkg,
		Core:         CoreCortexM0,
		FrequencyMHz: 48,
		Memory: []MemoryRegion{
			{Kind: MemoryFlash, Start: 0x08000000, Size: 32},
			{Kind: MemoryRAM, Start: 0x20000000, Size: 4},
		},
		Platform:    &Platform{Vendor: "STM32", Family: "STM32F0", Line: "STM32F0x0 Value Line"},
		Peripherals: []Peripheral{{Name: "ADC", ConfigFile: "adc.conf"}},
	}

	cfg, err := New(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.Name = "changed"
	d.Memory[0].Size = 0
	d.Platform.Vendor = "changed"

	if cfg.Name() != "STM32F030C6Tx" {
		t.Errorf("expected name STM32F030C6Tx, got %s", cfg.Name())
	}
	if cfg.Pins().Size() != 2 {
		t.Errorf("expected 2 pins, got %d", cfg.Pins().Size())
	}
	if cfg.Memory()[0].Size != 32 {
		t.Error("memory map shares storage with the description")
	}
	if p, ok := cfg.Platform(); !ok || p.Vendor != "STM32" {
		t.Errorf("unexpected platform %+v", p)
	}
	if cfg.MemorySize(MemoryRAM) != 4 {
		t.Errorf("expected 4 bytes of RAM, got %d", cfg.MemorySize(MemoryRAM))
	}
	if cfg.Memory()[1].End() != 0x20000004 {
		t.Errorf("unexpected end %#x", cfg.Memory()[1].End())
	}
	if cfg.Core().TargetTriple() != "thumbv6m-none-eabi" {
		t.Errorf("unexpected target %s", cfg.Core().TargetTriple())
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(Description{}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	_, err := New(Description{Name: "board-x", Pins: []Pin{NewPin("PA0", nil), NewPin("PA0", nil)}})
	if !errors.Is(err, ErrDuplicatePin) {
		t.Errorf("expected ErrDuplicatePin, got %v", err)
	}
}
