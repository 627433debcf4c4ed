package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openfroyo/mcuconf/pkg/loader"
	"github.com/openfroyo/mcuconf/pkg/telemetry"
)

// options holds the global flags and the state built from them.
type options struct {
	logLevel    string
	logFormat   string
	jsonOutput  bool
	metricsAddr string
	strict      bool

	tel    *telemetry.Telemetry
	loader *loader.Loader
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	opts := &options{}
	rootCmd := newRootCommand(opts, version, commit, buildDate)
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, opts.teardown(ctx))
}

func newRootCommand(opts *options, version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mcuconf",
		Short: "mcuconf - MCU description loader",
		Long: `mcuconf loads microcontroller descriptions: a named board or chip with an
ordered table of pin definitions.

Descriptions can be written in YAML, JSON, CUE, TOML, HCL or Starlark. Every
load checks that the name is present, that pins is a list, and that every pin
has a unique, non-empty name, then checks the optional fields against the
built-in schema.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled); defaults to $MCUCONF_LOG_LEVEL or warn")
	flags.StringVar(&opts.logFormat, "log-format", "console", "log format (console, json)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs")
	flags.BoolVar(&opts.strict, "strict", false, "reject null pin attribute values")

	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newInspectCommand(opts))
	rootCmd.AddCommand(newPinsCommand(opts))
	rootCmd.AddCommand(newFindCommand(opts))
	rootCmd.AddCommand(newWatchCommand(opts))
	rootCmd.AddCommand(newFormatsCommand(opts))

	return rootCmd
}

// setup builds telemetry and the loader from the global flags.
func (o *options) setup(cmd *cobra.Command) error {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = cmd.Root().Version
	cfg.Logging.Level = "warn"
	if level := os.Getenv("MCUCONF_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	cfg.Logging.Format = o.logFormat
	cfg.Metrics.ListenAddress = o.metricsAddr

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		return fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	if err := tel.StartMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	loaderOpts := []loader.Option{
		loader.WithLogger(tel.Logger),
		loader.WithMetrics(tel.Metrics),
		loader.WithTracer(tel.Tracer),
	}
	if o.strict {
		loaderOpts = append(loaderOpts, loader.WithStrictAttributes())
	}

	o.tel = tel
	o.loader = loader.New(loaderOpts...)
	return nil
}

// teardown stops the metrics server and flushes telemetry. It is safe to
// call without setup.
func (o *options) teardown(ctx context.Context) error {
	if o.tel == nil {
		return nil
	}
	tel := o.tel
	o.tel = nil
	return tel.Shutdown(context.WithoutCancel(ctx))
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
