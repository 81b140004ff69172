// Package watch re-runs a callback when files in watched directories change.
// Bursts of events, such as an editor saving through a temp file, are
// collapsed into one call by a debounce timer.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for watch operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Watcher observes directories with fsnotify.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	// Filter, when set, drops events for paths it returns false for.
	Filter func(path string) bool

	mu     sync.Mutex
	closed bool
}

// New starts watching dirs. The watches are in place when New returns.
func New(debounce time.Duration, dirs ...string) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		logDebug("[watch] watching %s", dir)
	}

	return &Watcher{watcher: watcher, debounce: debounce}, nil
}

// Run calls onChange once per burst of relevant events until ctx is
// cancelled or the watcher is closed. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logDebug("[watch] %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// relevant drops chmod-only events and paths rejected by Filter.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.Filter != nil && !w.Filter(filepath.Clean(event.Name)) {
		return false
	}
	return true
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
