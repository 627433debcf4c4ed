package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/openfroyo/mcuconf/pkg/mcu"
)

// summary is the inspect view of a Config.
type summary struct {
	Path          string          `json:"path"`
	Name          string          `json:"name"`
	Package       string          `json:"package,omitempty"`
	PackageFamily string          `json:"package_family,omitempty"`
	PackagePins   uint16          `json:"package_pins,omitempty"`
	Grid          bool            `json:"grid"`
	Core          string          `json:"core,omitempty"`
	Target        string          `json:"target,omitempty"`
	FrequencyMHz  uint16          `json:"frequency_mhz,omitempty"`
	Memory        []memorySummary `json:"memory,omitempty"`
	Platform      *mcu.Platform   `json:"platform,omitempty"`
	Peripherals   []string        `json:"peripherals,omitempty"`
	Pins          int             `json:"pins"`
}

type memorySummary struct {
	Kind  mcu.MemoryKind `json:"kind"`
	Start uint32         `json:"start"`
	Size  uint32         `json:"size"`
	End   uint64         `json:"end"`
}

func summarize(path string, cfg *mcu.Config) summary {
	s := summary{
		Path:         path,
		Name:         cfg.Name(),
		Core:         string(cfg.Core()),
		Target:       cfg.Core().TargetTriple(),
		FrequencyMHz: cfg.FrequencyMHz(),
		Pins:         cfg.Pins().Size(),
	}

	if pkg := cfg.Package(); !pkg.IsZero() {
		s.Package = pkg.String()
		s.PackageFamily = string(pkg.Family())
		s.PackagePins = pkg.Pins()
		s.Grid = pkg.IsGrid()
	}
	for _, m := range cfg.Memory() {
		s.Memory = append(s.Memory, memorySummary{Kind: m.Kind, Start: m.Start, Size: m.Size, End: m.End()})
	}
	if p, ok := cfg.Platform(); ok {
		s.Platform = &p
	}
	for _, p := range cfg.Peripherals() {
		s.Peripherals = append(s.Peripherals, p.Name)
	}
	return s
}

func newInspectCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show what a description declares",
		Long: `Load a description and print its name, package, core and cross-compilation
target, memory map, platform, peripherals and pin count.`,
		Example: `  mcuconf inspect boards/stm32f030.yaml
  mcuconf inspect --json boards/stm32f030.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			s := summarize(args[0], cfg)
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}

	return cmd
}

func printSummary(w io.Writer, s summary) {
	fmt.Fprintf(w, "Name:      %s\n", s.Name)
	if s.Package != "" {
		layout := "leaded"
		if s.Grid {
			layout = "grid"
		}
		fmt.Fprintf(w, "Package:   %s (%s, %d pins, %s)\n", s.Package, s.PackageFamily, s.PackagePins, layout)
	}
	if s.Core != "" {
		target := s.Target
		if target == "" {
			target = "none"
		}
		fmt.Fprintf(w, "Core:      %s (target %s)\n", s.Core, target)
	}
	if s.FrequencyMHz > 0 {
		fmt.Fprintf(w, "Frequency: %d MHz\n", s.FrequencyMHz)
	}
	if s.Platform != nil {
		fmt.Fprintf(w, "Platform:  %s %s %s\n", s.Platform.Vendor, s.Platform.Family, s.Platform.Line)
	}
	for _, m := range s.Memory {
		fmt.Fprintf(w, "Memory:    %-6s 0x%08X-0x%08X (%d bytes)\n", m.Kind, m.Start, m.End, m.Size)
	}
	for _, p := range s.Peripherals {
		fmt.Fprintf(w, "Periph:    %s\n", p)
	}
	fmt.Fprintf(w, "Pins:      %d\n", s.Pins)
}
