package mcu

// Core is the CPU core of a microcontroller.
type Core string

const (
	CoreCortexM0 Core = "CortexM0"
	CoreCortexM3 Core = "CortexM3"
	CoreCortexM4 Core = "CortexM4"
	CoreCortexM7 Core = "CortexM7"
	CoreAVR      Core = "AVR"
	CoreSTM8     Core = "STM8"
	CoreMSP430   Core = "MSP430"
)

// Cores lists every known core.
var Cores = []Core{CoreCortexM0, CoreCortexM3, CoreCortexM4, CoreCortexM7, CoreAVR, CoreSTM8, CoreMSP430}

// IsARM reports whether the core is an ARM Cortex-M.
func (c Core) IsARM() bool {
	switch c {
	case CoreCortexM0, CoreCortexM3, CoreCortexM4, CoreCortexM7:
		return true
	}
	return false
}

// TargetTriple returns the bare-metal cross-compilation target for the core,
// or "" when there is none.
func (c Core) TargetTriple() string {
	// TODO: distinguish hard-float targets (thumbv7em-none-eabihf) once the
	// description carries FPU information.
	switch c {
	case CoreCortexM0:
		return "thumbv6m-none-eabi"
	case CoreCortexM3:
		return "thumbv7m-none-eabi"
	case CoreCortexM4, CoreCortexM7:
		return "thumbv7em-none-eabi"
	default:
		return ""
	}
}

// MemoryKind classifies a memory region.
type MemoryKind string

const (
	MemoryFlash  MemoryKind = "flash"
	MemoryEEPROM MemoryKind = "eeprom"
	MemoryRAM    MemoryKind = "ram"
)

// MemoryRegion is one contiguous region of the memory map.
type MemoryRegion struct {
	Kind  MemoryKind
	Start uint32
	Size  uint32
}

// End returns the first address past the region.
func (m MemoryRegion) End() uint64 {
	return uint64(m.Start) + uint64(m.Size)
}

// Platform identifies the vendor line of a microcontroller.
type Platform struct {
	Vendor string
	Family string
	Line   string
}

// Peripheral is an on-chip peripheral and the file describing its settings.
type Peripheral struct {
	Name       string
	ConfigFile string
}
