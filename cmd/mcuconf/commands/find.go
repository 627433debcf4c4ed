package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFindCommand(opts *options) *cobra.Command {
	var signal bool

	cmd := &cobra.Command{
		Use:   "find <file> <name|signal>",
		Short: "Look up a pin by name or signal",
		Long: `Look up a pin by its exact, case-sensitive name. When no pin has that name,
every pin carrying a signal that contains the query is listed instead.`,
		Example: `  # Exact pin lookup
  mcuconf find boards/stm32f030.yaml PA1

  # All pins that can route USART1
  mcuconf find --signal boards/stm32f030.yaml USART1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			table, query := cfg.Pins(), args[1]

			var indexes []int
			if i, ok := table.IndexOf(query); ok && !signal {
				indexes = []int{i}
			} else {
				indexes = table.FindSignal(query)
			}
			if len(indexes) == 0 {
				return fmt.Errorf("no pin matches %q", query)
			}

			pins := summarizePins(table, indexes)
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), pins)
			}
			return printPins(cmd.OutOrStdout(), pins)
		},
	}

	cmd.Flags().BoolVar(&signal, "signal", false, "search signals even when a pin has the exact name")

	return cmd
}
