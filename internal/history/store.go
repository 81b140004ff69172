// Package history records newsmerge runs in a YAML file under the state
// directory so past releases can be listed with 'newsmerge history'.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// HistoryFileName is the name of the history file inside the state directory.
const HistoryFileName = "history.yaml"

// HistoryEntry describes one recorded run.
type HistoryEntry struct {
	// RunID uniquely identifies the run (YYYYMMDD_HHMMSS_<8-char-uuid>).
	RunID     string    `yaml:"run_id"`
	Timestamp time.Time `yaml:"timestamp"`
	// Command is the subcommand that produced the entry, e.g. "merge".
	Command     string   `yaml:"command"`
	Version     string   `yaml:"version,omitempty"`
	ReleaseDate string   `yaml:"release_date,omitempty"`
	Fragments   int      `yaml:"fragments"`
	Deleted     []string `yaml:"deleted,omitempty"`
	Warnings    []string `yaml:"warnings,omitempty"`
	DryRun      bool     `yaml:"dry_run,omitempty"`
	Branch      string   `yaml:"branch,omitempty"`
	// RevisionBefore and RevisionAfter are abbreviated HEAD hashes around the run.
	// RevisionAfter is only set when the run created a commit.
	RevisionBefore string `yaml:"revision_before,omitempty"`
	RevisionAfter  string `yaml:"revision_after,omitempty"`
	ExitCode       int    `yaml:"exit_code"`
	Duration       string `yaml:"duration"`
}

// HistoryFile is the on-disk layout of the history file.
type HistoryFile struct {
	Entries []HistoryEntry `yaml:"entries"`
}

// NewRunID creates a unique run ID with timestamp prefix.
func NewRunID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.Format("20060102_150405"), uuid.New().String()[:8])
}

// historyPath returns the path of the history file in stateDir.
func historyPath(stateDir string) string {
	return filepath.Join(stateDir, HistoryFileName)
}

// LoadHistory reads the history file from stateDir.
// A missing file yields an empty history.
func LoadHistory(stateDir string) (*HistoryFile, error) {
	data, err := os.ReadFile(historyPath(stateDir))
	if errors.Is(err, os.ErrNotExist) {
		return &HistoryFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history HistoryFile
	if err := yaml.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	return &history, nil
}

// SaveHistory writes history to stateDir, creating the directory if needed.
// The file is replaced atomically.
func SaveHistory(stateDir string, history *HistoryFile) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tmp, err := os.CreateTemp(stateDir, ".history-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, historyPath(stateDir)); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// ClearHistory removes all entries. It reports how many were removed.
func ClearHistory(stateDir string) (int, error) {
	history, err := LoadHistory(stateDir)
	if err != nil {
		return 0, err
	}
	n := len(history.Entries)
	if n == 0 {
		return 0, nil
	}
	if err := SaveHistory(stateDir, &HistoryFile{}); err != nil {
		return 0, err
	}
	return n, nil
}

// Recent returns up to limit entries, newest first. A limit of 0 returns all.
func (h *HistoryFile) Recent(limit int) []HistoryEntry {
	n := len(h.Entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]HistoryEntry, 0, n)
	for i := len(h.Entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.Entries[i])
	}
	return out
}
