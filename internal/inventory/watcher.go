package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Catalog whenever its backing file changes. A file that
// fails to parse is logged and the previous content is kept.
type Watcher struct {
	catalog *Catalog
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// WatchFile watches the directory of path so that a catalog replaced by
// rename is picked up too.
func WatchFile(catalog *Catalog, path string, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{catalog: catalog, path: abs, watcher: fw, logger: logger}, nil
}

// Run blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload() {
	if err := w.catalog.LoadFile(w.path); err != nil {
		w.logger.Warn("catalog reload failed, keeping previous content", "path", w.path, "error", err)
		return
	}

	w.logger.Info("catalog reloaded", "path", w.path, "inventories", len(w.catalog.Inventories()))
}
