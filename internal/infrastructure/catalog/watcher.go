package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/listwise/backend/internal/domain"
)

// Watcher reloads the catalog when its backing file changes and hands the
// fresh product set to the engine. A reload that fails leaves the previous
// snapshot serving.
type Watcher struct {
	path    string
	source  domain.CatalogSource
	apply   func([]domain.CatalogProduct)
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// NewWatcher creates a watcher for the catalog file at path. apply is
// called with each successfully reloaded product set.
func NewWatcher(path string, source domain.CatalogSource, apply func([]domain.CatalogProduct), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:    path,
		source:  source,
		apply:   apply,
		logger:  logger,
		watcher: fsw,
		stop:    make(chan struct{}),
	}, nil
}

// Start begins watching for catalog changes.
//
// The parent directory is watched rather than the file itself so atomic
// replace-by-rename saves keep triggering reloads. Call Stop to clean up.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and cleans up resources
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		// Already stopped
		return
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

// processEvents reloads the catalog on writes to the watched file
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

// reload pulls a fresh product set from the source. On failure the engine
// keeps serving the snapshot it already has.
func (w *Watcher) reload(ctx context.Context) {
	products, err := w.source.LoadProducts(ctx)
	if err != nil {
		w.logger.Warn("catalog reload failed, keeping previous snapshot", "path", w.path, "error", err)
		return
	}
	w.apply(products)
	w.logger.Info("catalog reloaded", "path", w.path, "products", len(products))
}
