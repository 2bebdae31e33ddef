package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the schema file watcher.
type WatcherConfig struct {
	// Path is the schema file to watch.
	Path string

	// DebounceDelay is how long to wait for more changes before recompiling.
	DebounceDelay time.Duration

	// Logger for logging events.
	Logger *slog.Logger
}

// WatchEvent is emitted after each recompile of the watched file.
type WatchEvent struct {
	// Path is the watched schema file.
	Path string

	// Schema is the freshly compiled record (nil when Error is set).
	Schema *Schema

	// Error if the file could not be read or compiled. The previously
	// accepted schema remains the active one in that case.
	Error error
}

// Watcher watches a schema file and recompiles it on change. Editors
// commonly replace files on save, so the watch is placed on the parent
// directory and filtered to the target file.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect change notifications before compiling
	pendingMu sync.Mutex
	pending   bool

	// Content hash of the last compiled text, to skip no-op writes
	hashMu   sync.Mutex
	lastHash string

	events chan WatchEvent
}

// NewWatcher creates a watcher for the given schema file.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		events:  make(chan WatchEvent, 16),
	}, nil
}

// Events returns the channel of watch events.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start begins watching and emits an initial compile of the current
// file contents.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Schema watcher started",
		"path", w.config.Path,
		"debounce", w.config.DebounceDelay)

	w.compileAndEmit()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.events)
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent marks the file dirty when the watched path changes.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()
}

// flushPending recompiles if a change was observed since the last tick.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	dirty := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if dirty {
		w.compileAndEmit()
	}
}

// compileAndEmit reads, compiles, and publishes the result. Unchanged
// content is skipped via hash comparison.
func (w *Watcher) compileAndEmit() {
	data, err := os.ReadFile(w.config.Path)
	if err != nil {
		w.logger.Warn("Failed to read schema file", "path", w.config.Path, "error", err)
		w.events <- WatchEvent{Path: w.config.Path, Error: err}
		return
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	w.hashMu.Lock()
	unchanged := hash == w.lastHash
	w.lastHash = hash
	w.hashMu.Unlock()

	if unchanged {
		return
	}

	compiled, err := Compile(string(data))
	if err != nil {
		w.logger.Warn("Schema recompile failed", "path", w.config.Path, "error", err)
		w.events <- WatchEvent{Path: w.config.Path, Error: err}
		return
	}

	w.logger.Debug("Schema recompiled",
		"path", w.config.Path,
		"nodes", compiled.NodeCount(),
		"edges", compiled.EdgeCount())

	w.events <- WatchEvent{Path: w.config.Path, Schema: compiled}
}
