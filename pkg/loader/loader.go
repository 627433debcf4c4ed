package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openfroyo/mcuconf/pkg/mcu"
	"github.com/openfroyo/mcuconf/pkg/telemetry"
)

// Loader reads description files into validated mcu.Config values.
// A Loader is safe for concurrent use.
type Loader struct {
	formats   *Formats
	schemas   *SchemaRegistry
	validator *validator.Validate
	logger    *telemetry.Logger
	metrics   *telemetry.Metrics
	tracer    *telemetry.Tracer
	strict    bool
	debounce  time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *telemetry.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger.NewComponentLogger("loader")
		}
	}
}

// WithMetrics sets the metrics collector. The default records nothing.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(l *Loader) {
		if metrics != nil {
			l.metrics = metrics
		}
	}
}

// WithTracer sets the tracer. The default records no spans.
func WithTracer(tracer *telemetry.Tracer) Option {
	return func(l *Loader) {
		if tracer != nil {
			l.tracer = tracer
		}
	}
}

// WithFormats replaces the format registry.
func WithFormats(formats *Formats) Option {
	return func(l *Loader) {
		if formats != nil {
			l.formats = formats
		}
	}
}

// WithStrictAttributes rejects null pin attribute values.
func WithStrictAttributes() Option {
	return func(l *Loader) {
		l.strict = true
	}
}

// WithWatchDebounce sets how long Watch waits for writes to settle.
func WithWatchDebounce(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.debounce = d
		}
	}
}

// New creates a Loader with the built-in formats and schema.
func New(opts ...Option) *Loader {
	l := &Loader{
		formats:   DefaultFormats(),
		schemas:   NewSchemaRegistry(),
		validator: newValidator(),
		logger:    telemetry.NewNopLogger(),
		metrics:   telemetry.NewNopMetrics(),
		tracer:    telemetry.NewNopTracer(),
		debounce:  DefaultWatchDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLoader = sync.OnceValue(func() *Loader { return New() })

// Load reads path with a default Loader.
func Load(ctx context.Context, path string) (*mcu.Config, error) {
	return defaultLoader().Load(ctx, path)
}

// Formats returns the loader's format registry.
func (l *Loader) Formats() *Formats {
	return l.formats
}

// Load reads, parses and validates the description at path. It returns
// either a complete Config or an *Error; nothing is partially built.
func (l *Loader) Load(ctx context.Context, path string) (*mcu.Config, error) {
	return l.run(ctx, path, func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, newIOError(path, err)
		}
		return data, nil
	})
}

// LoadBytes parses and validates data as if read from filename. The
// extension of filename selects the format.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*mcu.Config, error) {
	return l.run(ctx, filename, func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return data, nil
	})
}

// run wraps one load with its id, span, log lines and metrics.
func (l *Loader) run(ctx context.Context, path string, read func(context.Context) ([]byte, error)) (*mcu.Config, error) {
	loadID := uuid.NewString()
	format := formatLabel(l.formats, path)

	ctx, span := l.tracer.StartLoadSpan(ctx, loadID, path, format)
	defer span.End()

	logger := l.logger.WithLoadID(loadID).WithPath(path).WithTraceID(ctx)
	timer := telemetry.NewTimer()

	cfg, err := l.load(ctx, path, read)
	duration := timer.Duration()

	if err != nil {
		err = withPath(err, path)
		kind, reason := string(KindOf(err)), string(ReasonOf(err))
		if kind == "" {
			kind = "canceled"
		}

		l.metrics.RecordLoad(format, telemetry.ResultFailure, duration, 0)
		l.metrics.RecordLoadError(kind, reason)
		span.SetAttributes(
			telemetry.AttrErrorKind.String(kind),
			telemetry.AttrErrorCause.String(reason),
		)
		telemetry.RecordError(span, err)

		logger.WithFields(map[string]interface{}{
			"format":      format,
			"kind":        kind,
			"reason":      reason,
			"duration_ms": duration.Milliseconds(),
		}).WithError(err).Warn("description load failed")
		return nil, err
	}

	pins := cfg.Pins().Size()
	l.metrics.RecordLoad(format, telemetry.ResultSuccess, duration, pins)
	span.SetAttributes(
		telemetry.AttrName.String(cfg.Name()),
		telemetry.AttrPinCount.Int(pins),
	)
	telemetry.RecordSuccess(span)

	logger.WithFields(map[string]interface{}{
		"format":      format,
		"name":        cfg.Name(),
		"pins":        pins,
		"duration_ms": duration.Milliseconds(),
	}).Debug("description loaded")
	return cfg, nil
}

// load runs the read, parse, validate and build stages.
func (l *Loader) load(ctx context.Context, path string, read func(context.Context) ([]byte, error)) (*mcu.Config, error) {
	data, err := read(ctx)
	if err != nil {
		return nil, err
	}

	format, ok := l.formats.ForPath(path)
	if !ok {
		return nil, newParseError(path, 0, 0, fmt.Sprintf("unsupported description format %q", extensionOf(path)), nil)
	}

	tree, err := format.Parse(path, data)
	if err != nil {
		return nil, err
	}
	telemetry.AddEvent(ctx, "parsed", attribute.Int("bytes", len(data)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if findings := checkStructure(tree, l.strict); len(findings) > 0 {
		return nil, newValidationError(path, findings)
	}

	var doc document
	findings, err := l.schemas.Check(SchemaMCU, tree, &doc)
	if err != nil {
		return nil, newValidationError(path, []Finding{{
			Reason:  ReasonSchemaViolation,
			Message: err.Error(),
		}})
	}
	if len(findings) > 0 {
		return nil, newValidationError(path, sortFindings(findings))
	}

	if findings := validateDocument(l.validator, tree, &doc); len(findings) > 0 {
		return nil, newValidationError(path, sortFindings(findings))
	}

	d, err := description(tree, &doc)
	if err != nil {
		return nil, newValidationError(path, []Finding{{
			Field:   "package",
			Reason:  ReasonInvalidValue,
			Message: err.Error(),
		}})
	}

	cfg, err := mcu.New(d)
	if err != nil {
		return nil, newValidationError(path, []Finding{{
			Reason:  ReasonInvalidValue,
			Message: err.Error(),
		}})
	}
	return cfg, nil
}

// extensionOf returns the extension of path, or the base name when it has none.
func extensionOf(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return filepath.Base(path)
}
