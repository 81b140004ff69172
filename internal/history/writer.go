package history

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer appends merge runs to the history file of StateDir, keeping at most
// MaxEntries of them. It is safe for concurrent use within one process.
type Writer struct {
	StateDir string
	// MaxEntries caps the retained entries; zero keeps everything.
	MaxEntries int
	// Warn receives non-fatal errors. Defaults to stderr.
	Warn io.Writer

	mu sync.Mutex
}

// NewWriter creates a new history writer.
func NewWriter(stateDir string, maxEntries int) *Writer {
	return &Writer{
		StateDir:   stateDir,
		MaxEntries: maxEntries,
		Warn:       os.Stderr,
	}
}

// LogEntry records entry, assigning a run ID when it has none.
// A history that cannot be written never fails the merge; the error goes to Warn.
func (w *Writer) LogEntry(entry HistoryEntry) {
	if err := w.append(entry); err != nil && w.Warn != nil {
		fmt.Fprintf(w.Warn, "Warning: failed to log history: %v\n", err)
	}
}

func (w *Writer) append(entry HistoryEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry.RunID == "" {
		entry.RunID = NewRunID(entry.Timestamp)
	}

	h, err := LoadHistory(w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	h.Entries = append(h.Entries, entry)
	if w.MaxEntries > 0 && len(h.Entries) > w.MaxEntries {
		h.Entries = h.Entries[len(h.Entries)-w.MaxEntries:]
	}

	if err := SaveHistory(w.StateDir, h); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
