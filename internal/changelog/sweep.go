package changelog

import (
	"os"
	"path/filepath"
)

// Sweep removes the consumed fragment files.
// The template and ignored files are never removed, even when listed.
// Deletion is best effort: every failure becomes a *SweepError warning and
// the remaining files are still processed.
func Sweep(cfg *Config, paths []string) (deleted []string, warnings []error) {
	for _, p := range paths {
		if cfg.IsIgnored(filepath.Base(p)) {
			logDebug("[changelog] sweep: keeping %s", p)
			continue
		}
		if err := os.Remove(p); err != nil {
			warnings = append(warnings, &SweepError{Path: p, Err: err})
			continue
		}
		logDebug("[changelog] sweep: removed %s", p)
		deleted = append(deleted, p)
	}
	return deleted, warnings
}
