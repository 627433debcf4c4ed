package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfroyo/mcuconf/pkg/mcu"
)

const equivalentYAML = `
name: STM32F030C6Tx
package: LQFP48
core: CortexM0
frequency_mhz: 48
memory:
  - kind: flash
    start: 134217728
    size: 32768
  - kind: ram
    start: 536870912
    size: 4096
platform:
  vendor: STM32
  family: STM32F0
  line: STM32F0x0 Value Line
peripherals:
  - name: ADC
    config_file: adc.conf
pins:
  - name: VDD
    type: Power
    position: 1
  - name: PA0
    position: 10
    signals: [ADC_IN0, USART1_CTS]
    signal: ADC_IN0
    label: LED
  - name: NRST
    type: Reset
    position: {row: 2, col: 3}
`

const equivalentJSON = `{
  "name": "STM32F030C6Tx",
  "package": "LQFP48",
  "core": "CortexM0",
  "frequency_mhz": 48,
  "memory": [
    {"kind": "flash", "start": 134217728, "size": 32768},
    {"kind": "ram", "start": 536870912, "size": 4096}
  ],
  "platform": {"vendor": "STM32", "family": "STM32F0", "line": "STM32F0x0 Value Line"},
  "peripherals": [{"name": "ADC", "config_file": "adc.conf"}],
  "pins": [
    {"name": "VDD", "type": "Power", "position": 1},
    {"name": "PA0", "position": 10, "signals": ["ADC_IN0", "USART1_CTS"], "signal": "ADC_IN0", "label": "LED"},
    {"name": "NRST", "type": "Reset", "position": {"row": 2, "col": 3}}
  ]
}
`

const equivalentCUE = `
name:          "STM32F030C6Tx"
"package":     "LQFP48"
core:          "CortexM0"
frequency_mhz: 48

memory: [
	{kind: "flash", start: 0x08000000, size: 32 * 1024},
	{kind: "ram", start: 0x20000000, size: 4 * 1024},
]

platform: {
	vendor: "STM32"
	family: "STM32F0"
	line:   "STM32F0x0 Value Line"
}

peripherals: [{name: "ADC", config_file: "adc.conf"}]

pins: [
	{name: "VDD", type: "Power", position: 1},
	{
		name:     "PA0"
		position: 10
		signals: ["ADC_IN0", "USART1_CTS"]
		signal: signals[0]
		label:  "LED"
	},
	{name: "NRST", type: "Reset", position: {row: 2, col: 3}},
]
`

const equivalentTOML = `
name = "STM32F030C6Tx"
package = "LQFP48"
core = "CortexM0"
frequency_mhz = 48

[platform]
vendor = "STM32"
family = "STM32F0"
line = "STM32F0x0 Value Line"

[[memory]]
kind = "flash"
start = 0x08000000
size = 32768

[[memory]]
kind = "ram"
start = 0x20000000
size = 4096

[[peripherals]]
name = "ADC"
config_file = "adc.conf"

[[pins]]
name = "VDD"
type = "Power"
position = 1

[[pins]]
name = "PA0"
position = 10
signals = ["ADC_IN0", "USART1_CTS"]
signal = "ADC_IN0"
label = "LED"

[[pins]]
name = "NRST"
type = "Reset"
position = { row = 2, col = 3 }
`

const equivalentHCL = `
name          = "STM32F030C6Tx"
package       = "LQFP48"
core          = "CortexM0"
frequency_mhz = 48

platform {
  vendor = "STM32"
  family = "STM32F0"
  line   = "STM32F0x0 Value Line"
}

memory "flash" {
  start = 134217728
  size  = 32768
}

memory "ram" {
  start = 536870912
  size  = 4096
}

peripheral "ADC" {
  config_file = "adc.conf"
}

pin "VDD" {
  type     = "Power"
  position = 1
}

pin "PA0" {
  position = 10
  signals  = ["ADC_IN0", "USART1_CTS"]
  signal   = "ADC_IN0"
  label    = "LED"
}

pin "NRST" {
  type     = "Reset"
  position = { row = 2, col = 3 }
}
`

const equivalentStarlark = `
name = "STM32F030C6Tx"
package = "LQFP48"
core = "CortexM0"
frequency_mhz = 48

_KB = 1024

memory = [
    {"kind": "flash", "start": 0x08000000, "size": 32 * _KB},
    {"kind": "ram", "start": 0x20000000, "size": 4 * _KB},
]

platform = struct(vendor = "STM32", family = "STM32F0", line = "STM32F0x0 Value Line")

peripherals = [{"name": "ADC", "config_file": "adc.conf"}]

_adc = ["ADC_IN0", "USART1_CTS"]

pins = [
    pin("VDD", type = "Power", position = 1),
    pin("PA0", position = 10, signals = _adc, signal = _adc[0], label = "LED"),
    pin("NRST", type = "Reset", position = {"row": 2, "col": 3}),
]
`

// configView is a comparable projection of an mcu.Config.
type configView struct {
	Name        string
	Package     string
	Grid        bool
	Core        mcu.Core
	Frequency   uint16
	Memory      []mcu.MemoryRegion
	Platform    mcu.Platform
	Peripherals []mcu.Peripheral
	Pins        []pinView
}

type pinView struct {
	Name     string
	Kind     mcu.PinKind
	Position string
	Signals  []string
	Signal   string
	Attrs    map[string]any
}

func viewOf(cfg *mcu.Config) configView {
	platform, _ := cfg.Platform()
	v := configView{
		Name:        cfg.Name(),
		Package:     cfg.Package().String(),
		Grid:        cfg.Package().IsGrid(),
		Core:        cfg.Core(),
		Frequency:   cfg.FrequencyMHz(),
		Memory:      cfg.Memory(),
		Platform:    platform,
		Peripherals: cfg.Peripherals(),
	}
	for _, p := range cfg.Pins().Pins() {
		v.Pins = append(v.Pins, pinView{
			Name:     p.Name(),
			Kind:     p.Kind(),
			Position: p.Position().String(),
			Signals:  p.Signals(),
			Signal:   p.Signal(),
			Attrs:    p.Attributes(),
		})
	}
	return v
}

func TestFormats_Equivalent(t *testing.T) {
	sources := map[string]string{
		"board.yaml": equivalentYAML,
		"board.json": equivalentJSON,
		"board.cue":  equivalentCUE,
		"board.toml": equivalentTOML,
		"board.hcl":  equivalentHCL,
		"board.star": equivalentStarlark,
	}

	l := New()

	ref, err := l.LoadBytes(context.Background(), "board.yaml", []byte(equivalentYAML))
	if err != nil {
		t.Fatalf("failed to load reference: %v", err)
	}
	want := viewOf(ref)

	if want.Pins[2].Position != "2:3" || want.Memory[0].Size != 32768 {
		t.Fatalf("unexpected reference %+v", want)
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			cfg, err := l.LoadBytes(context.Background(), name, []byte(src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(want, viewOf(cfg)); diff != "" {
				t.Errorf("%s differs from yaml (-want +got):\n%s", name, diff)
			}
		})
	}
}

func TestFormats_ParseErrorsCarryLines(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{file: "board.yaml", content: "name: board-x\npins: [PA0, PA1\n"},
		{file: "board.json", content: "{\n  \"name\": \"board-x\",\n  \"pins\": [\n"},
		{file: "board.cue", content: "name: \"board-x\"\npins: [\n"},
		{file: "board.toml", content: "name = \"board-x\"\npins = [\n"},
		{file: "board.hcl", content: "name = \"board-x\"\npins = \n"},
		{file: "board.star", content: "name = \"board-x\"\npins = [\n"},
		{file: "board.star", content: "name = \"board-x\"\npins = [pin()]\n"},
	}

	l := New()
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := l.LoadBytes(context.Background(), tt.file, []byte(tt.content))
			if !IsParse(err) {
				t.Fatalf("expected parse error, got %v", err)
			}
			var lerr *Error
			if !errors.As(err, &lerr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if lerr.Line <= 0 {
				t.Errorf("expected a line number, got %+v", lerr)
			}
		})
	}
}

func TestFormats_Registry(t *testing.T) {
	f := DefaultFormats()

	want := []string{".cue", ".hcl", ".json", ".star", ".toml", ".yaml", ".yml"}
	if diff := cmp.Diff(want, f.Extensions()); diff != "" {
		t.Errorf("extensions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"yaml", "json", "cue", "toml", "hcl", "starlark"}, f.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	for path, name := range map[string]string{
		"a/b/board.YAML": "yaml",
		"board.yml":      "yaml",
		"board.Json":     "json",
		"x.hcl":          "hcl",
	} {
		format, ok := f.ForPath(path)
		if !ok || format.Name() != name {
			t.Errorf("ForPath(%q): expected %s", path, name)
		}
	}
	if _, ok := f.ForPath("Makefile"); ok {
		t.Error("expected no format without an extension")
	}
}

func TestHCLFormat_Blocks(t *testing.T) {
	tree, err := HCLFormat{}.Parse("board.hcl", []byte(`
name = "board-x"

pin "PA0" {
  signals = ["GPIO"]

  drive {
    speed = "high"
  }
}

pin "PA1" {}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"name": "board-x",
		"pins": []any{
			map[string]any{
				"name":    "PA0",
				"signals": []any{"GPIO"},
				"drive":   map[string]any{"speed": "high"},
			},
			map[string]any{"name": "PA1"},
		},
	}
	if diff := cmp.Diff(want, tree.Root); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	if pos, ok := tree.Pos("pins[1]"); !ok || pos.Line != 12 {
		t.Errorf("expected pins[1] at line 12, got %+v", pos)
	}
}

func TestHCLFormat_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unlabeled pin", content: "pin {}\n"},
		{name: "unknown labeled block", content: "bus \"spi\" {}\n"},
		{name: "block and attribute", content: "pins = \"PA0\"\npin \"PA0\" {}\n"},
		{name: "variable reference", content: "name = var.board\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HCLFormat{}.Parse("board.hcl", []byte(tt.content))
			if !IsParse(err) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
	}
}

func TestStarlarkFormat_Procedural(t *testing.T) {
	tree, err := StarlarkFormat{}.Parse("board.star", []byte(`
name = "board-x"

def _port(letter, n):
    return [pin("P%s%d" % (letter, i), signals = ["GPIO"]) for i in range(n)]

pins = _port("A", 3) + _port("B", 2)
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pins, _ := tree.Root["pins"].([]any)
	if len(pins) != 5 {
		t.Fatalf("expected 5 pins, got %d", len(pins))
	}
	if diff := cmp.Diff(map[string]any{"name": "PB1", "signals": []any{"GPIO"}}, pins[4]); diff != "" {
		t.Errorf("pin mismatch (-want +got):\n%s", diff)
	}
	if _, ok := tree.Root["_port"]; ok {
		t.Error("expected private globals to be skipped")
	}
}

func TestStarlarkFormat_StepLimit(t *testing.T) {
	_, err := StarlarkFormat{MaxSteps: 1000}.Parse("board.star", []byte(`
def _spin():
    n = 0
    for i in range(1000000):
        n += i
    return n

name = "board-x"
total = _spin()
pins = []
`))
	if !IsParse(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestYAMLFormat_DuplicateKeys(t *testing.T) {
	_, err := YAMLFormat{}.Parse("board.yaml", []byte("name: a\nname: b\npins: []\n"))
	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Kind != KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
	if lerr.Line != 2 {
		t.Errorf("expected line 2, got %d", lerr.Line)
	}
}

func TestYAMLFormat_Empty(t *testing.T) {
	tree, err := YAMLFormat{}.Parse("board.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Root) != 0 {
		t.Errorf("expected empty root, got %v", tree.Root)
	}

	_, err = New().LoadBytes(context.Background(), "board.yaml", nil)
	if ReasonOf(err) != ReasonMissingField {
		t.Errorf("expected MissingField, got %v", err)
	}
}

// mcuFormat reads YAML from .mcu files.
type mcuFormat struct{ YAMLFormat }

func (mcuFormat) Name() string         { return "mcu" }
func (mcuFormat) Extensions() []string { return []string{".mcu"} }

func TestLoader_WithFormats(t *testing.T) {
	l := New(WithFormats(NewFormats(mcuFormat{})))

	cfg, err := l.LoadBytes(context.Background(), "board.MCU", []byte("name: board-x\npins: [{name: PA0}]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pins().Size() != 1 {
		t.Errorf("expected 1 pin, got %d", cfg.Pins().Size())
	}

	if _, err := l.LoadBytes(context.Background(), "board.yaml", []byte("name: x\npins: []\n")); !IsParse(err) {
		t.Errorf("expected yaml to be unsupported, got %v", err)
	}
	if diff := cmp.Diff([]string{".mcu"}, l.Formats().ExtensionsOf("mcu")); diff != "" {
		t.Errorf("extensions mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLFormat_Aliases(t *testing.T) {
	tree, err := YAMLFormat{}.Parse("board.yaml", []byte(`
name: board-x
pins:
  - {name: PA0, signals: &gpio [GPIO, EXTI]}
  - {name: PA1, signals: *gpio}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pins := tree.Root["pins"].([]any)
	if diff := cmp.Diff([]any{"GPIO", "EXTI"}, pins[1].(map[string]any)["signals"]); diff != "" {
		t.Errorf("alias mismatch (-want +got):\n%s", diff)
	}
}

// laughs builds a document whose aliases double in size levels times.
func laughs(levels int) string {
	var b strings.Builder
	b.WriteString("name: board-x\npins: []\nl0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= levels; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d, ", i-1), 10), ", ")
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, refs)
	}
	return b.String()
}

func TestYAMLFormat_AliasAbuse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "self reference", content: "name: board-x\npins: []\nloop: &a [*a]\n", want: "recursive alias"},
		{name: "nested self reference", content: "name: board-x\npins: []\nloop: &a {inner: [1, {again: *a}]}\n", want: "recursive alias"},
		{name: "expansion bomb", content: laughs(9), want: "aliases expand"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().LoadBytes(context.Background(), "board.yaml", []byte(tt.content))
			var lerr *Error
			if !errors.As(err, &lerr) || lerr.Kind != KindParse {
				t.Fatalf("expected parse error, got %v", err)
			}
			if !strings.Contains(lerr.Message, tt.want) {
				t.Errorf("expected %q in %q", tt.want, lerr.Message)
			}
			if lerr.Line <= 0 {
				t.Errorf("expected a line number, got %+v", lerr)
			}
		})
	}
}

func TestStarlarkFormat_UnconvertibleGlobals(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bytes", content: "name = \"board-x\"\npins = []\nblob = b\"ab\"\n"},
		{name: "self containing list", content: "name = \"board-x\"\npins = []\nloop = []\nloop.append(loop)\n"},
		{name: "self containing dict", content: "name = \"board-x\"\npins = []\nloop = {}\nloop[\"me\"] = loop\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().LoadBytes(context.Background(), "board.star", []byte(tt.content))
			if !IsParse(err) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
	}
}

func TestStarlarkFormat_Tuples(t *testing.T) {
	tree, err := StarlarkFormat{}.Parse("board.star", []byte("name = \"board-x\"\npins = (pin(\"PA0\"),)\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{map[string]any{"name": "PA0"}}, tree.Root["pins"]); diff != "" {
		t.Errorf("pins mismatch (-want +got):\n%s", diff)
	}
}
