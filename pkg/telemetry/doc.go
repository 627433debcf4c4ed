// Package telemetry provides logging, tracing and metrics for mcuconf.
//
// It combines structured logging (zerolog), tracing (OpenTelemetry) and
// metrics (Prometheus) behind one Telemetry value. Every component accepts
// nil-safe no-op variants so the loader and the handle registry can run
// without any configuration.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	cfg.Metrics.ListenAddress = ":9090"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("loader")
//	logger = logger.WithLoadID(id).WithPath(path)
//	logger.Info("description loaded")
//	logger.WithError(err).Warn("load failed")
//
// Log levels: trace, debug, info, warn, error, fatal, disabled.
// The shared library uses LibraryConfig: JSON on stderr at warn level.
//
// # Tracing
//
// Each load runs inside an "mcu.load" span carrying mcu.load_id, mcu.path
// and mcu.format attributes. Exporters: otlp (gRPC), stdout, none.
//
// # Metrics
//
//	mcuconf_loads_total{format,result}
//	mcuconf_load_duration_seconds{format}
//	mcuconf_load_errors_total{kind,reason}
//	mcuconf_pins_loaded
//	mcuconf_live_handles
//
// Metrics are exposed over HTTP only when Metrics.ListenAddress is set.
package telemetry
