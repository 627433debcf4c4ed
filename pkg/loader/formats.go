package loader

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Format parses one description syntax into a Tree.
type Format interface {
	// Name is the short format name used in logs and metrics.
	Name() string

	// Extensions lists the lower-case file extensions, with the leading dot.
	Extensions() []string

	// Parse parses data read from filename. Syntax errors are returned as
	// *Error of kind KindParse.
	Parse(filename string, data []byte) (*Tree, error)
}

// Formats is a registry of description formats keyed by file extension.
type Formats struct {
	mu    sync.RWMutex
	byExt map[string]Format
	names []string
}

// NewFormats creates a registry holding formats.
func NewFormats(formats ...Format) *Formats {
	f := &Formats{byExt: make(map[string]Format)}
	for _, format := range formats {
		f.Register(format)
	}
	return f
}

// DefaultFormats returns a registry with every built-in format.
func DefaultFormats() *Formats {
	return NewFormats(
		YAMLFormat{},
		JSONFormat{},
		CUEFormat{},
		TOMLFormat{},
		HCLFormat{},
		StarlarkFormat{},
	)
}

// Register adds format, replacing any format already bound to one of its
// extensions.
func (f *Formats) Register(format Format) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ext := range format.Extensions() {
		f.byExt[strings.ToLower(ext)] = format
	}
	for _, name := range f.names {
		if name == format.Name() {
			return
		}
	}
	f.names = append(f.names, format.Name())
}

// ForPath returns the format for path's extension. Matching is case-insensitive.
func (f *Formats) ForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	format, ok := f.byExt[ext]
	return format, ok
}

// Extensions returns every registered extension, sorted.
func (f *Formats) Extensions() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	exts := make([]string, 0, len(f.byExt))
	for ext := range f.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtensionsOf returns the extensions currently bound to the named format.
func (f *Formats) ExtensionsOf(name string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var exts []string
	for ext, format := range f.byExt {
		if format.Name() == name {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Names returns the registered format names in registration order.
func (f *Formats) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]string(nil), f.names...)
}

// formatLabel returns the metrics label for path.
func formatLabel(formats *Formats, path string) string {
	if format, ok := formats.ForPath(path); ok {
		return format.Name()
	}
	return "unknown"
}
