package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openfroyo/mcuconf/pkg/mcu"
)

// pinSummary is the listing view of a Pin.
type pinSummary struct {
	Index      int            `json:"index"`
	Name       string         `json:"name"`
	Type       mcu.PinKind    `json:"type"`
	Position   string         `json:"position,omitempty"`
	Signals    []string       `json:"signals,omitempty"`
	Signal     string         `json:"signal,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func summarizePins(table *mcu.PinTable, indexes []int) []pinSummary {
	out := make([]pinSummary, 0, len(indexes))
	for _, i := range indexes {
		p, ok := table.At(i)
		if !ok {
			continue
		}
		s := pinSummary{
			Index:      i,
			Name:       p.Name(),
			Type:       p.Kind(),
			Signals:    p.Signals(),
			Signal:     p.Signal(),
			Attributes: p.Attributes(),
		}
		if pos := p.Position(); pos.Kind() != mcu.PositionNone {
			s.Position = pos.String()
		}
		out = append(out, s)
	}
	return out
}

func allIndexes(table *mcu.PinTable) []int {
	indexes := make([]int, table.Size())
	for i := range indexes {
		indexes[i] = i
	}
	return indexes
}

func newPinsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pins <file>",
		Short: "List the pins of a description in declaration order",
		Example: `  mcuconf pins boards/stm32f030.yaml
  mcuconf pins --json boards/stm32f030.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			pins := summarizePins(cfg.Pins(), allIndexes(cfg.Pins()))
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), pins)
			}
			return printPins(cmd.OutOrStdout(), pins)
		},
	}

	return cmd
}

func printPins(w io.Writer, pins []pinSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tTYPE\tPOS\tSIGNAL\tSIGNALS")
	for _, p := range pins {
		pos := p.Position
		if pos == "" {
			pos = "-"
		}
		signal := p.Signal
		if signal == "" {
			signal = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.Index, p.Name, p.Type, pos, signal, strings.Join(p.Signals, ","))
	}
	return tw.Flush()
}
