package history

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed writes n merge entries for versions 0.1.0 ... 0.1.(n-1).
func seed(t *testing.T, stateDir string, n int) {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := &HistoryFile{}
	for i := 0; i < n; i++ {
		h.Entries = append(h.Entries, HistoryEntry{
			RunID:     fmt.Sprintf("seed-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Command:   "merge",
			Version:   fmt.Sprintf("0.1.%d", i),
		})
	}
	require.NoError(t, SaveHistory(stateDir, h))
}

func TestWriter_LogEntry(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing     int
		maxEntries   int
		wantVersions []string
	}{
		"empty history": {
			maxEntries:   500,
			wantVersions: []string{"1.0.0"},
		},
		"appends after existing": {
			existing:     2,
			maxEntries:   500,
			wantVersions: []string{"0.1.0", "0.1.1", "1.0.0"},
		},
		"prunes oldest at limit": {
			existing:     3,
			maxEntries:   3,
			wantVersions: []string{"0.1.1", "0.1.2", "1.0.0"},
		},
		"prunes several when well over limit": {
			existing:     5,
			maxEntries:   2,
			wantVersions: []string{"0.1.4", "1.0.0"},
		},
		"zero keeps everything": {
			existing:     4,
			maxEntries:   0,
			wantVersions: []string{"0.1.0", "0.1.1", "0.1.2", "0.1.3", "1.0.0"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stateDir := t.TempDir()
			if tt.existing > 0 {
				seed(t, stateDir, tt.existing)
			}

			w := NewWriter(stateDir, tt.maxEntries)
			w.LogEntry(HistoryEntry{
				Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
				Command:   "merge",
				Version:   "1.0.0",
				Fragments: 3,
				Deleted:   []string{"news/a.rst", "news/b.rst", "news/c.rst"},
			})

			h, err := LoadHistory(stateDir)
			require.NoError(t, err)

			var versions []string
			for _, e := range h.Entries {
				versions = append(versions, e.Version)
			}
			assert.Equal(t, tt.wantVersions, versions)

			last := h.Entries[len(h.Entries)-1]
			assert.Equal(t, "20240601_120000_", last.RunID[:16])
			assert.Regexp(t, `^\d{8}_\d{6}_[0-9a-f]{8}$`, last.RunID)
			assert.Len(t, last.Deleted, 3)
		})
	}
}

func TestWriter_KeepsRunID(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	NewWriter(stateDir, 10).LogEntry(HistoryEntry{RunID: "fixed", Timestamp: time.Now(), Command: "merge"})

	h, err := LoadHistory(stateDir)
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)
	assert.Equal(t, "fixed", h.Entries[0].RunID)
}

func TestWriter_Concurrent(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	w := NewWriter(stateDir, 100)

	const writers, perWriter = 10, 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				w.LogEntry(HistoryEntry{
					Timestamp: time.Now(),
					Command:   "merge",
					Version:   fmt.Sprintf("%d.%d", id, j),
				})
			}
		}(i)
	}
	wg.Wait()

	h, err := LoadHistory(stateDir)
	require.NoError(t, err)
	assert.Len(t, h.Entries, writers*perWriter)
}

func TestWriter_FailureIsNonFatal(t *testing.T) {
	t.Parallel()

	// A regular file cannot serve as the state directory.
	blocker := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var warn bytes.Buffer
	w := NewWriter(blocker, 500)
	w.Warn = &warn

	assert.NotPanics(t, func() {
		w.LogEntry(HistoryEntry{Timestamp: time.Now(), Command: "merge", Version: "1.0"})
	})
	assert.Contains(t, warn.String(), "Warning: failed to log history")

	w.Warn = nil
	assert.NotPanics(t, func() {
		w.LogEntry(HistoryEntry{Timestamp: time.Now(), Command: "merge", Version: "1.0"})
	})
}
