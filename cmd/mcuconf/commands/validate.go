package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openfroyo/mcuconf/pkg/loader"
	"github.com/openfroyo/mcuconf/pkg/telemetry"
)

// validateResult is the outcome for one file.
type validateResult struct {
	Path  string        `json:"path"`
	Valid bool          `json:"valid"`
	Name  string        `json:"name,omitempty"`
	Pins  int           `json:"pins"`
	Error *loader.Error `json:"error,omitempty"`
}

func newValidateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate MCU description files",
		Long: `Load each description and report whether it is valid.

This command checks:
  - the file can be read and parses in its format
  - name is present and non-empty
  - pins is a list of entries with unique, non-empty names
  - optional fields match the built-in schema

Every finding of an invalid file is printed, not only the first.`,
		Example: `  # Validate one description
  mcuconf validate boards/stm32f030.yaml

  # Validate several and get machine-readable results
  mcuconf validate --json boards/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := opts.tel.WithContext(cmd.Context())
			op := telemetry.StartOperation(ctx, "mcuconf.validate", attribute.Int("files", len(args)))
			defer func() { op.End(err) }()

			results := make([]validateResult, 0, len(args))
			failed := 0
			for _, path := range args {
				result := validateResult{Path: path}

				cfg, err := opts.loader.Load(op.Ctx, path)
				if err != nil {
					var lerr *loader.Error
					if !errors.As(err, &lerr) {
						return err
					}
					result.Error = lerr
					failed++
				} else {
					result.Valid = true
					result.Name = cfg.Name()
					result.Pins = cfg.Pins().Size()
				}
				results = append(results, result)
			}

			op.Logger.WithFields(map[string]interface{}{
				"files":  len(args),
				"failed": failed,
			}).Debug("validation finished")

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					printValidateResult(out, r)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d descriptions failed validation", failed, len(args))
			}
			return nil
		},
	}

	return cmd
}

func printValidateResult(w io.Writer, r validateResult) {
	if r.Valid {
		fmt.Fprintf(w, "OK    %s  %s (%d pins)\n", r.Path, r.Name, r.Pins)
		return
	}

	fmt.Fprintf(w, "FAIL  %s\n", r.Path)
	if len(r.Error.Findings) == 0 {
		fmt.Fprintf(w, "      %s\n", r.Error.Error())
		return
	}
	for _, f := range r.Error.Findings {
		fmt.Fprintf(w, "      %s [%s]\n", f, f.Reason)
	}
}
