package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHistory(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content     *string
		wantEntries int
		wantErr     string
	}{
		"missing file": {
			content:     nil,
			wantEntries: 0,
		},
		"entries": {
			content: strPtr("entries:\n" +
				"  - run_id: 20240101_120000_abcd1234\n" +
				"    command: merge\n" +
				"    version: 1.0.0\n" +
				"    fragments: 2\n" +
				"    exit_code: 0\n" +
				"    duration: 1s\n"),
			wantEntries: 1,
		},
		"corrupt": {
			content: strPtr("entries: [\n"),
			wantErr: "parsing history file",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tt.content != nil {
				require.NoError(t, os.WriteFile(filepath.Join(dir, HistoryFileName), []byte(*tt.content), 0o644))
			}

			history, err := LoadHistory(dir)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, history.Entries, tt.wantEntries)
		})
	}
}

func TestSaveHistory_RoundTripFields(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "state")
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	entry := HistoryEntry{
		RunID:          "20240301_093000_deadbeef",
		Timestamp:      ts,
		Command:        "merge",
		Version:        "2.0.0",
		ReleaseDate:    "2024-03-01",
		Fragments:      4,
		Deleted:        []string{"news/a.rst", "news/b.rst"},
		Branch:         "main",
		RevisionBefore: "abc1234",
		RevisionAfter:  "def5678",
		Duration:       "120ms",
	}

	require.NoError(t, SaveHistory(dir, &HistoryFile{Entries: []HistoryEntry{entry}}))

	loaded, err := LoadHistory(dir)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, entry, loaded.Entries[0])

	leftovers, err := filepath.Glob(filepath.Join(dir, ".history-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	n, err := ClearHistory(dir)
	require.NoError(t, err)
	assert.Zero(t, n)

	w := NewWriter(dir, 0)
	w.LogCommand("merge", 0, time.Second)
	w.LogCommand("merge", 1, time.Second)

	n, err = ClearHistory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := LoadHistory(dir)
	require.NoError(t, err)
	assert.Empty(t, loaded.Entries)
}

func TestRecent(t *testing.T) {
	t.Parallel()

	h := &HistoryFile{Entries: []HistoryEntry{{Version: "1"}, {Version: "2"}, {Version: "3"}}}

	tests := map[string]struct {
		limit int
		want  []string
	}{
		"all":       {limit: 0, want: []string{"3", "2", "1"}},
		"limited":   {limit: 2, want: []string{"3", "2"}},
		"over size": {limit: 10, want: []string{"3", "2", "1"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var got []string
			for _, e := range h.Recent(tt.limit) {
				got = append(got, e.Version)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
