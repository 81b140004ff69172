package changelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AuthorSource supplies the contributor list for the release window.
type AuthorSource interface {
	Authors() ([]string, error)
}

// AuthorsFunc adapts a plain function to AuthorSource.
type AuthorsFunc func() ([]string, error)

// Authors calls f.
func (f AuthorsFunc) Authors() ([]string, error) {
	return f()
}

// MergeOptions are the per-run inputs that are not part of Config.
type MergeOptions struct {
	// Version is the release version rendered into the header. Required.
	Version string
	// Date pins the release date; empty means today from Config.Clock.
	Date string
	// DryRun renders and splices in memory without writing or deleting anything.
	DryRun bool
	// Authors is consulted only when Config.AuthorsTitle is set.
	Authors AuthorSource
}

// Merge runs the full merge: list, parse, aggregate, render, splice, write, sweep.
//
// Configuration and anchor problems are detected before anything is written.
// The changelog write is the commit point; fragment deletion failures after it
// are returned as warnings in the Result and do not undo the write.
func Merge(cfg *Config, opts MergeOptions) (*Result, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if opts.Version == "" {
		return nil, &ConfigError{Field: "version", Message: "release version is required"}
	}

	res := &Result{
		Version: opts.Version,
		Date:    cfg.ReleaseDate(opts.Date),
		DryRun:  opts.DryRun,
	}

	paths, err := ListFragments(cfg)
	if err != nil {
		return nil, err
	}
	res.Fragments = paths
	logDebug("[changelog] merging %d fragment(s) from %s", len(paths), cfg.NewsDir)

	agg, _, err := AggregateFiles(cfg, paths)
	if err != nil {
		return nil, err
	}
	res.Aggregate = agg

	authors := collectAuthors(cfg, opts.Authors, res)
	res.Block = RenderEntry(agg, cfg, res.Version, res.Date, authors)

	doc, err := os.ReadFile(cfg.Filename)
	if err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}

	res.Document, err = Splice(string(doc), cfg.Pattern, res.Block)
	if err != nil {
		var me *MalformedChangelogError
		if errors.As(err, &me) {
			me.Path = cfg.Filename
		}
		return nil, err
	}

	if opts.DryRun {
		logDebug("[changelog] dry run: nothing written")
		return res, nil
	}

	if err := writeFileAtomic(cfg.Filename, []byte(res.Document)); err != nil {
		return nil, fmt.Errorf("writing changelog: %w", err)
	}
	logDebug("[changelog] wrote %s", cfg.Filename)

	deleted, warnings := Sweep(cfg, paths)
	res.Deleted = deleted
	res.Warnings = append(res.Warnings, warnings...)
	return res, nil
}

// Preview renders the entry a merge would produce without touching any file.
func Preview(cfg *Config, opts MergeOptions) (*Result, error) {
	opts.DryRun = true
	return Merge(cfg, opts)
}

// collectAuthors asks the author source for contributors when the authors
// section is enabled. A failing source only produces a warning.
func collectAuthors(cfg *Config, src AuthorSource, res *Result) []string {
	if cfg.AuthorsTitle == "" || src == nil {
		return nil
	}
	authors, err := src.Authors()
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Errorf("collecting authors: %w", err))
		return nil
	}
	return authors
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, keeping the original file mode.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".newsmerge-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing file: %w", err)
	}
	return nil
}
