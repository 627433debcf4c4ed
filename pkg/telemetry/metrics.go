package telemetry

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load results used as the result label on load metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics provides Prometheus metrics for description loading and handle
// bookkeeping.
type Metrics struct {
	config MetricsConfig

	// Load metrics
	loadsTotal   *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadErrors   *prometheus.CounterVec
	pinsLoaded   prometheus.Histogram

	// Handle metrics
	liveHandles prometheus.Gauge

	registry *prometheus.Registry

	mu     sync.Mutex
	server *http.Server
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of description loads",
			},
			[]string{"format", "result"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of description loads in seconds",
				Buckets:   buckets,
			},
			[]string{"format"},
		),
		loadErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_errors_total",
				Help:      "Total number of failed loads by error kind and reason",
			},
			[]string{"kind", "reason"},
		),
		pinsLoaded: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pins_loaded",
				Help:      "Number of pins in successfully loaded descriptions",
				Buckets:   prometheus.ExponentialBuckets(8, 2, 8),
			},
		),
		liveHandles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_handles",
				Help:      "Current number of unreleased configuration handles",
			},
		),
	}

	registry.MustRegister(
		m.loadsTotal,
		m.loadDuration,
		m.loadErrors,
		m.pinsLoaded,
		m.liveHandles,
	)

	return m, nil
}

// NewNopMetrics returns a metrics collector that records nothing.
func NewNopMetrics() *Metrics {
	return &Metrics{}
}

// Load Metrics

// RecordLoad records a finished load with its format, result and duration.
// pins is observed only for successful loads.
func (m *Metrics) RecordLoad(format, result string, duration time.Duration, pins int) {
	if m == nil || m.loadsTotal == nil {
		return
	}
	m.loadsTotal.WithLabelValues(format, result).Inc()
	m.loadDuration.WithLabelValues(format).Observe(duration.Seconds())
	if result == ResultSuccess {
		m.pinsLoaded.Observe(float64(pins))
	}
}

// RecordLoadError records a failed load by error kind and reason.
func (m *Metrics) RecordLoadError(kind, reason string) {
	if m == nil || m.loadErrors == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.loadErrors.WithLabelValues(kind, reason).Inc()
}

// Handle Metrics

// SetLiveHandles sets the current number of live configuration handles.
func (m *Metrics) SetLiveHandles(count int) {
	if m == nil || m.liveHandles == nil {
		return
	}
	m.liveHandles.Set(float64(count))
}

// Registry returns the underlying registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Timer measures one operation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time since NewTimer.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics. Serve errors
// are passed to onError, which may be nil.
func (m *Metrics) StartMetricsServer(onError func(error)) error {
	if m == nil || !m.config.Enabled || m.config.ListenAddress == "" {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	m.mu.Lock()
	if m.server != nil {
		m.mu.Unlock()
		return errors.New("metrics server already started")
	}
	m.server = server
	m.mu.Unlock()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if onError != nil {
				onError(err)
			}
		}
	}()

	return nil
}

// Shutdown stops the metrics server if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	server := m.server
	m.server = nil
	m.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
