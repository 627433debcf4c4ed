package handle

import (
	"context"
	"errors"
	"sync"

	"github.com/openfroyo/mcuconf/pkg/loader"
	"github.com/openfroyo/mcuconf/pkg/mcu"
	"github.com/openfroyo/mcuconf/pkg/telemetry"
)

// ConfigHandle is an owned, opaque reference to a loaded Config. Zero is the
// null handle. Config handles are always even.
type ConfigHandle uintptr

// TableHandle is a borrowed view of a Config's pin table. It is valid while
// its Config handle is live and is never released on its own. Table handles
// are always odd, so the two kinds cannot be confused.
type TableHandle uintptr

// ErrInvalidArgument is returned for an empty path.
var ErrInvalidArgument = errors.New("handle: invalid argument")

// Registry owns the Configs behind live handles. Handles are never reused
// within a Registry. A Registry is safe for concurrent use; a Config is
// immutable once registered, so queries only hold the read lock for the
// lookup.
type Registry struct {
	// mu protects configs and next.
	mu sync.RWMutex

	// configs maps live handles to their Config.
	configs map[ConfigHandle]*mcu.Config

	// next is the sequence number of the next handle.
	next uintptr

	loader  *loader.Loader
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoader sets the loader used by Create.
func WithLoader(l *loader.Loader) Option {
	return func(r *Registry) {
		if l != nil {
			r.loader = l
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *telemetry.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger.NewComponentLogger("handle")
		}
	}
}

// WithMetrics sets the collector for the live handle gauge.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(r *Registry) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		configs: make(map[ConfigHandle]*mcu.Config),
		next:    1,
		logger:  telemetry.NewNopLogger(),
		metrics: telemetry.NewNopMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = loader.New()
	}
	return r
}

// Create loads path and returns a handle to the result, or 0 on any failure.
func (r *Registry) Create(path string) ConfigHandle {
	h, _ := r.CreateWithStatus(path)
	return h
}

// CreateWithStatus is Create with the failure class reported as a Status.
func (r *Registry) CreateWithStatus(path string) (ConfigHandle, Status) {
	h, err := r.CreateContext(context.Background(), path)
	if errors.Is(err, ErrInvalidArgument) {
		return 0, StatusInvalidArgument
	}
	return h, StatusOf(err)
}

// CreateContext loads path and registers the result.
func (r *Registry) CreateContext(ctx context.Context, path string) (ConfigHandle, error) {
	if path == "" {
		return 0, ErrInvalidArgument
	}

	cfg, err := r.loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}
	return r.Register(cfg), nil
}

// Register takes ownership of cfg and returns its new handle.
func (r *Registry) Register(cfg *mcu.Config) ConfigHandle {
	r.mu.Lock()
	h := ConfigHandle(r.next << 1)
	r.next++
	r.configs[h] = cfg
	live := len(r.configs)
	r.mu.Unlock()

	r.metrics.SetLiveHandles(live)
	r.logger.WithFields(map[string]interface{}{
		"handle": uint64(h),
		"name":   cfg.Name(),
		"live":   live,
	}).Debug("config handle created")
	return h
}

// Release frees the Config behind h. Releasing 0 is a no-op. Releasing a
// handle that is not live is also a no-op, reported at warn level.
func (r *Registry) Release(h ConfigHandle) {
	if h == 0 {
		return
	}

	r.mu.Lock()
	_, ok := r.configs[h]
	delete(r.configs, h)
	live := len(r.configs)
	r.mu.Unlock()

	if !ok {
		r.logger.WithField("handle", uint64(h)).Warn("release of unknown config handle")
		return
	}

	r.metrics.SetLiveHandles(live)
	r.logger.WithFields(map[string]interface{}{
		"handle": uint64(h),
		"live":   live,
	}).Debug("config handle released")
}

// Live returns the number of live Config handles.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.configs)
}

// Config returns the Config behind h.
func (r *Registry) Config(h ConfigHandle) (*mcu.Config, bool) {
	if h == 0 || h&1 != 0 {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[h]
	return cfg, ok
}

// Name returns the configuration name.
func (r *Registry) Name(h ConfigHandle) (string, bool) {
	cfg, ok := r.Config(h)
	if !ok {
		return "", false
	}
	return cfg.Name(), true
}

// Pins returns the borrowed table handle of h, or 0 if h is not live.
func (r *Registry) Pins(h ConfigHandle) TableHandle {
	if _, ok := r.Config(h); !ok {
		return 0
	}
	return TableHandle(h | 1)
}

// Package returns the package of h. The second result is false when h is
// not live.
func (r *Registry) Package(h ConfigHandle) (mcu.Package, bool) {
	cfg, ok := r.Config(h)
	if !ok {
		return mcu.Package{}, false
	}
	return cfg.Package(), true
}

// table resolves t to its pin table.
func (r *Registry) table(t TableHandle) (*mcu.PinTable, bool) {
	if t&1 == 0 {
		return nil, false
	}
	cfg, ok := r.Config(ConfigHandle(t &^ 1))
	if !ok {
		return nil, false
	}
	return cfg.Pins(), true
}

// TableSize returns the number of pins, or 0 for an invalid handle.
func (r *Registry) TableSize(t TableHandle) uint32 {
	table, ok := r.table(t)
	if !ok {
		return 0
	}
	return uint32(table.Size())
}

// TableFind returns the index of the pin named name.
func (r *Registry) TableFind(t TableHandle, name string) (uint32, bool) {
	table, ok := r.table(t)
	if !ok {
		return 0, false
	}
	i, ok := table.IndexOf(name)
	if !ok {
		return 0, false
	}
	return uint32(i), true
}

// TablePinName returns the name of the pin at index.
func (r *Registry) TablePinName(t TableHandle, index uint32) (string, bool) {
	pin, ok := r.pinAt(t, index)
	if !ok {
		return "", false
	}
	return pin.Name(), true
}

// TablePinAttribute returns a copy of attribute key of the pin at index.
func (r *Registry) TablePinAttribute(t TableHandle, index uint32, key string) (any, bool) {
	pin, ok := r.pinAt(t, index)
	if !ok {
		return nil, false
	}
	return pin.Attribute(key)
}

func (r *Registry) pinAt(t TableHandle, index uint32) (mcu.Pin, bool) {
	table, ok := r.table(t)
	if !ok {
		return mcu.Pin{}, false
	}
	return table.At(int(index))
}
