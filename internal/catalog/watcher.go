package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/moolen/faultline/internal/logging"
)

// WatcherConfig holds configuration for the catalog file Watcher
type WatcherConfig struct {
	// FilePath is the pattern catalog YAML file to watch
	FilePath string

	// DebounceMillis coalesces bursts of file change events (editor
	// save sequences, atomic-rename writes) into one reload.
	// Default: 500ms.
	DebounceMillis int
}

// Watcher hot-reloads a pattern catalog file into a live Catalog.
// Invalid files during reload are logged and the previous catalog stays
// active; the watcher keeps watching.
type Watcher struct {
	config  WatcherConfig
	catalog *Catalog
	logger  *logging.Logger
	cancel  context.CancelFunc
	stopped chan struct{}
	ready   chan struct{}
	mu      sync.Mutex

	debounceTimer *time.Timer
}

// NewWatcher creates a watcher that reloads catalog into the given
// Catalog whenever the file at cfg.FilePath changes.
func NewWatcher(cfg WatcherConfig, catalog *Catalog) (*Watcher, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("FilePath cannot be empty")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if cfg.DebounceMillis == 0 {
		cfg.DebounceMillis = 500
	}

	return &Watcher{
		config:  cfg,
		catalog: catalog,
		logger:  logging.GetLogger("catalog.watcher"),
		stopped: make(chan struct{}),
		ready:   make(chan struct{}),
	}, nil
}

// Start loads the file once, applies it to the catalog, then watches
// for changes until Stop is called or the context is cancelled.
// Returns an error if the initial load or apply fails.
func (w *Watcher) Start(ctx context.Context) error {
	initial, err := LoadFile(w.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to load initial catalog: %w", err)
	}
	if err := w.catalog.Reload(initial.Patterns); err != nil {
		return fmt.Errorf("initial catalog apply failed: %w", err)
	}

	w.logger.Info("loaded initial catalog from %s (%d patterns)", w.config.FilePath, len(initial.Patterns))

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.watchLoop(watchCtx)

	// Wait until fsnotify is attached so changes right after Start are
	// not missed.
	select {
	case <-w.ready:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for file watcher to initialize")
	}

	return nil
}

// signalReady closes the ready channel exactly once
func (w *Watcher) signalReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)
	defer w.signalReady()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.ErrorWithErr("failed to create file watcher", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.config.FilePath); err != nil {
		w.logger.ErrorWithErr(fmt.Sprintf("failed to watch %s", w.config.FilePath), err)
		return
	}

	w.logger.Info("watching %s for changes (debounce: %dms)", w.config.FilePath, w.config.DebounceMillis)
	w.signalReady()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("context cancelled, stopping")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Write/Create/Rename/Remove are all relevant: atomic
			// writes unlink the old file before renaming the new one
			// into place, so the watch must be re-added.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				// Let the rename/recreate settle before re-adding
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.config.FilePath); err != nil {
					w.logger.Warn("failed to re-add watch after %s: %v", event.Op, err)
				}
			}
			w.handleFileChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.ErrorWithErr("watcher error", err)
		}
	}
}

// handleFileChange debounces by resetting a timer on each event
func (w *Watcher) handleFileChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(
		time.Duration(w.config.DebounceMillis)*time.Millisecond,
		w.reload,
	)
}

// reload loads the file and swaps it into the catalog. Failures keep
// the previous catalog active.
func (w *Watcher) reload() {
	f, err := LoadFile(w.config.FilePath)
	if err != nil {
		w.logger.Warn("failed to load catalog (keeping previous): %v", err)
		return
	}
	if err := w.catalog.Reload(f.Patterns); err != nil {
		w.logger.Warn("failed to apply catalog (keeping previous): %v", err)
		return
	}
	w.logger.InfoWithFields("catalog reloaded",
		logging.Field("path", w.config.FilePath),
		logging.Field("patterns", len(f.Patterns)),
	)
}

// Stop gracefully stops the watcher, waiting up to 5s for the loop to exit
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	select {
	case <-w.stopped:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for watcher to stop")
	}
}
