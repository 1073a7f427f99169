// Package watcher reports debounced changes to a fixed set of files, such as
// the SCIP index an index store was built from.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ChangeHandler is called with each debounced batch.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	DebounceMs     int
	IgnorePatterns []string
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		DebounceMs: 500,
		IgnorePatterns: []string{
			"**/*.tmp",
			"**/*.swp",
			"**/.symgraph/**",
		},
	}
}

// Watcher watches individual files. fsnotify watches their parent
// directories so that atomic replace-by-rename is observed.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	handler ChangeHandler

	fs        *fsnotify.Watcher
	debouncer *coalescer

	mu    sync.RWMutex
	files map[string]struct{}
	dirs  map[string]int

	closeOnce sync.Once
}

// New creates a watcher. Call Run to start delivering events.
func New(config Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		config:  config,
		logger:  logger,
		handler: handler,
		fs:      fsw,
		files:   make(map[string]struct{}),
		dirs:    make(map[string]int),
	}
	w.debouncer = newCoalescer(time.Duration(config.DebounceMs)*time.Millisecond, w.emit)
	return w, nil
}

// Add starts watching path. Adding the same path twice is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}

	w.logger.Debug("Watching file", "path", abs)
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; !ok {
		return
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Run delivers events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("Watcher event overflow, forcing change", "error", err)
				w.forceAll()
				continue
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

// Close releases the fsnotify watcher and drops pending events. Safe to call twice.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.debouncer.cancel()
		if err := w.fs.Close(); err != nil {
			w.logger.Debug("Closing fsnotify watcher failed", "error", err)
		}
	})
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !w.IsWatched(path) || w.IsIgnored(path) {
		return
	}

	var typ EventType
	switch {
	case ev.Has(fsnotify.Create):
		typ = EventCreate
	case ev.Has(fsnotify.Write):
		typ = EventModify
	case ev.Has(fsnotify.Remove):
		typ = EventDelete
	case ev.Has(fsnotify.Rename):
		typ = EventRename
	default:
		return
	}

	w.debouncer.add(Event{Type: typ, Path: path, Timestamp: time.Now()})
}

func (w *Watcher) forceAll() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for path := range w.files {
		w.debouncer.add(Event{Type: EventModify, Path: path, Timestamp: time.Now()})
	}
}

func (w *Watcher) emit(events []Event) {
	w.logger.Debug("File changes detected", "eventCount", len(events))
	if w.handler != nil {
		w.handler(events)
	}
}

// IsWatched reports whether path was registered with Add.
func (w *Watcher) IsWatched(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[path]
	return ok
}

// IsIgnored checks if a path matches ignore patterns
func (w *Watcher) IsIgnored(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range w.config.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// WatchedFiles returns the number of registered files.
func (w *Watcher) WatchedFiles() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.files)
}
