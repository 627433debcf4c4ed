package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// formatInfo is one entry of the formats listing.
type formatInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

func newFormatsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the supported description formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := opts.loader.Formats()

			var infos []formatInfo
			for _, name := range formats.Names() {
				infos = append(infos, formatInfo{Name: name, Extensions: formats.ExtensionsOf(name)})
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", info.Name, strings.Join(info.Extensions, " "))
			}
			return nil
		},
	}

	return cmd
}
