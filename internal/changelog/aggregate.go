package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFragments returns the fragment files of cfg.NewsDir sorted by filename.
// The template file, ignored names, dot-files and directories are excluded.
// Only regular files count: symlinks and other special files are skipped and
// never swept, so a merge cannot delete a file outside the news directory.
// A missing news directory yields no fragments.
func ListFragments(cfg *Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.NewsDir)
	if err != nil {
		if os.IsNotExist(err) {
			logDebug("[changelog] news directory %s does not exist", cfg.NewsDir)
			return nil, nil
		}
		return nil, fmt.Errorf("listing news directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || cfg.IsIgnored(name) {
			continue
		}
		if !e.Type().IsRegular() {
			logDebug("[changelog] skipping %s: not a regular file", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(cfg.NewsDir, name)
	}
	return paths, nil
}

// Combine merges fragments in the given order into one Aggregate.
// For each category in configured order, entries are concatenated across
// fragments; categories without entries are left out.
func Combine(fragments []Fragment, categories []CategorySpec) Aggregate {
	var agg Aggregate
	for _, cat := range categories {
		var entries []string
		for _, f := range fragments {
			entries = append(entries, f.Entries(cat.Name)...)
		}
		if len(entries) == 0 {
			continue
		}
		agg.Sections = append(agg.Sections, Section{Category: cat, Entries: entries})
	}
	return agg
}

// AggregateFiles parses every path in order and combines the results.
func AggregateFiles(cfg *Config, paths []string) (Aggregate, []Fragment, error) {
	parser := NewParser(cfg)
	fragments := make([]Fragment, 0, len(paths))
	for _, p := range paths {
		frag, err := parser.ParseFile(p)
		if err != nil {
			return Aggregate{}, nil, err
		}
		fragments = append(fragments, frag)
	}
	return Combine(fragments, cfg.Categories), fragments, nil
}
