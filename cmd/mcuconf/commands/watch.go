package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/mcuconf/pkg/loader"
	"github.com/openfroyo/mcuconf/pkg/mcu"
)

func newWatchCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Re-validate descriptions whenever they change",
		Long: `Validate each description, then validate it again every time it is saved,
printing one line per result. Runs until interrupted.

Combine with --metrics-addr to expose load counters while editing.`,
		Example: `  mcuconf watch boards/stm32f030.yaml
  mcuconf watch --metrics-addr :9090 boards/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return opts.loader.Watch(cmd.Context(), args, func(path string, cfg *mcu.Config, err error) {
				if err != nil {
					var lerr *loader.Error
					if errors.As(err, &lerr) {
						printValidateResult(out, validateResult{Path: path, Error: lerr})
						return
					}
					fmt.Fprintf(out, "FAIL  %s\n      %v\n", path, err)
					return
				}
				printValidateResult(out, validateResult{
					Path:  path,
					Valid: true,
					Name:  cfg.Name(),
					Pins:  cfg.Pins().Size(),
				})
			})
		},
	}

	return cmd
}
