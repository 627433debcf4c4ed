package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/openfroyo/mcuconf/pkg/mcu"
)

// DefaultWatchDebounce is how long Watch waits after the last change to a
// file before reloading it.
const DefaultWatchDebounce = 200 * time.Millisecond

// WatchFunc receives the result of every load made by Watch. Exactly one of
// cfg and err is non-nil.
type WatchFunc func(path string, cfg *mcu.Config, err error)

// Watch loads every path once, then reloads a path each time it is written,
// created or renamed into place, calling fn with each result. It blocks until
// ctx is done. Calls to fn are serialized.
//
// The parent directories are watched rather than the files, so editors that
// save by renaming a temporary file over the original keep being followed.
func (l *Loader) Watch(ctx context.Context, paths []string, fn WatchFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// targets maps cleaned absolute paths to the path as given.
	targets := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		targets[abs] = path

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	l.logger.WithField("paths", len(paths)).Info("watching descriptions")

	for _, path := range paths {
		cfg, err := l.Load(ctx, path)
		fn(path, cfg, err)
	}

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	due := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs := filepath.Clean(event.Name)
			if _, ok := targets[abs]; !ok {
				continue
			}

			l.logger.WithFields(map[string]interface{}{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("description changed")

			if t := timers[abs]; t != nil {
				t.Stop()
			}
			timers[abs] = time.AfterFunc(l.debounce, func() {
				select {
				case due <- abs:
				case <-ctx.Done():
				}
			})

		case abs := <-due:
			path := targets[abs]
			cfg, err := l.Load(ctx, path)
			if ctx.Err() != nil {
				return nil
			}
			fn(path, cfg, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.WithError(err).Warn("watcher error")
		}
	}
}
