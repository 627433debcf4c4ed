package mcu

import (
	"slices"
)

// Description holds everything needed to build a Config. Only Name is
// required.
type Description struct {
	Name         string
	Pins         []Pin
	Package      Package
	Core         Core
	FrequencyMHz uint16
	Memory       []MemoryRegion
	Platform     *Platform
	Peripherals  []Peripheral
}

// Config is one fully built, immutable MCU description.
type Config struct {
	name         string
	pins         *PinTable
	pkg          Package
	core         Core
	frequencyMHz uint16
	memory       []MemoryRegion
	platform     *Platform
	peripherals  []Peripheral
}

// New builds a Config from d. Either a complete Config is returned or an
// error; d is copied and may be reused by the caller.
func New(d Description) (*Config, error) {
	if d.Name == "" {
		return nil, ErrEmptyName
	}

	pins, err := NewPinTable(d.Pins)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		name:         d.Name,
		pins:         pins,
		pkg:          d.Package,
		core:         d.Core,
		frequencyMHz: d.FrequencyMHz,
		memory:       slices.Clone(d.Memory),
		peripherals:  slices.Clone(d.Peripherals),
	}
	if d.Platform != nil {
		p := *d.Platform
		cfg.platform = &p
	}

	return cfg, nil
}

// Name returns the board or chip identifier.
func (c *Config) Name() string { return c.name }

// Pins returns the pin table. The table is owned by the Config and shares its
// lifetime.
func (c *Config) Pins() *PinTable { return c.pins }

// Package returns the declared package; check IsZero for absence.
func (c *Config) Package() Package { return c.pkg }

// Core returns the declared CPU core, or "".
func (c *Config) Core() Core { return c.core }

// FrequencyMHz returns the maximum core clock, or 0 when undeclared.
func (c *Config) FrequencyMHz() uint16 { return c.frequencyMHz }

// Memory returns the memory map in declaration order.
func (c *Config) Memory() []MemoryRegion { return slices.Clone(c.memory) }

// Platform returns the vendor platform, if declared.
func (c *Config) Platform() (Platform, bool) {
	if c.platform == nil {
		return Platform{}, false
	}
	return *c.platform, true
}

// Peripherals returns the declared peripherals in order.
func (c *Config) Peripherals() []Peripheral { return slices.Clone(c.peripherals) }

// MemorySize returns the total size of all regions of the given kind.
func (c *Config) MemorySize(kind MemoryKind) uint64 {
	var total uint64
	for _, m := range c.memory {
		if m.Kind == kind {
			total += uint64(m.Size)
		}
	}
	return total
}
