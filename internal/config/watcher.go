package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the user configuration file when it changes on disk
type Watcher struct {
	loader    *Loader
	watcher   *fsnotify.Watcher
	callbacks []func(*Config)
	mu        sync.Mutex
}

// NewWatcher starts watching the loader's configuration directory. The
// directory is watched rather than the file so editors that replace the file
// on save are picked up.
func NewWatcher(loader *Loader) (*Watcher, error) {
	dir := filepath.Dir(loader.Path())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{loader: loader, watcher: fw}, nil
}

// OnChange registers a callback invoked with the merged configuration after
// every successful reload
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Run processes file events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	target := filepath.Clean(w.loader.Path())
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", "error", err)
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) reload() {
	if err := w.loader.Load(); err != nil {
		// Keep the previous configuration until the file parses again
		slog.Warn("Ignoring invalid config change", "path", w.loader.Path(), "error", err)
		return
	}
	slog.Debug("Config reloaded", "path", w.loader.Path())

	config := w.loader.Get()
	w.mu.Lock()
	callbacks := slices.Clone(w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		callback(config)
	}
}
