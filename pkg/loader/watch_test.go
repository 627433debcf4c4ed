package loader

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/openfroyo/mcuconf/pkg/mcu"
)

type watchResult struct {
	path string
	cfg  *mcu.Config
	err  error
}

func TestLoader_Watch(t *testing.T) {
	path := writeFile(t, "board.yaml", "name: board-x\npins:\n  - name: PA0\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan watchResult, 8)
	done := make(chan error, 1)

	l := New(WithWatchDebounce(20 * time.Millisecond))
	go func() {
		done <- l.Watch(ctx, []string{path}, func(path string, cfg *mcu.Config, err error) {
			results <- watchResult{path: path, cfg: cfg, err: err}
		})
	}()

	next := func() watchResult {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a load")
			return watchResult{}
		}
	}

	first := next()
	if first.err != nil || first.cfg.Pins().Size() != 1 || first.path != path {
		t.Fatalf("unexpected initial load: %+v", first)
	}

	if err := os.WriteFile(path, []byte("name: board-x\npins:\n  - name: PA0\n  - name: PA0\n"), 0o600); err != nil {
		t.Fatalf("failed to rewrite: %v", err)
	}
	// A reload may observe the truncated file first.
	broken := next()
	for ReasonOf(broken.err) != ReasonDuplicatePin {
		broken = next()
	}

	if err := os.WriteFile(path, []byte("name: board-x\npins:\n  - name: PA0\n  - name: PA1\n"), 0o600); err != nil {
		t.Fatalf("failed to rewrite: %v", err)
	}
	fixed := next()
	for fixed.err != nil {
		fixed = next()
	}
	if fixed.cfg.Pins().Size() != 2 {
		t.Errorf("expected 2 pins after fix, got %d", fixed.cfg.Pins().Size())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestLoader_WatchMissingDirectory(t *testing.T) {
	err := New().Watch(context.Background(), []string{"/nonexistent/dir/board.yaml"}, func(string, *mcu.Config, error) {})
	if err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}
