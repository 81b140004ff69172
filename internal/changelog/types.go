package changelog

import (
	"path"
	"time"
)

// CategorySpec is one configured changelog category.
// Order is the declared position of the category and is unique within a Config.
type CategorySpec struct {
	Name  string `yaml:"name"`
	Order int    `yaml:"order"`
}

// TitleRule renders the literal header text that introduces a category.
// Implementations must be pure: the same category always yields the same text.
type TitleRule func(category string) string

// HeaderTemplate renders the leading block of a new changelog entry.
type HeaderTemplate func(version, date string) string

// Section holds the entries collected for one category, in source order.
type Section struct {
	Category CategorySpec
	Entries  []string
}

// Fragment is the parsed content of one news fragment file.
// Sections appear in the order their headers were first seen in the file.
type Fragment struct {
	Path     string
	Sections []Section
}

// Entries returns the entries recorded for the named category, or nil.
func (f Fragment) Entries(category string) []string {
	for _, s := range f.Sections {
		if s.Category.Name == category {
			return s.Entries
		}
	}
	return nil
}

// IsEmpty returns true if the fragment contributes no entries.
func (f Fragment) IsEmpty() bool {
	for _, s := range f.Sections {
		if len(s.Entries) > 0 {
			return false
		}
	}
	return true
}

// Aggregate is the merged view of all fragments of a run.
// Sections follow configured category order and are never empty.
type Aggregate struct {
	Sections []Section
}

// Entries returns the merged entries of the named category, or nil.
func (a Aggregate) Entries(category string) []string {
	for _, s := range a.Sections {
		if s.Category.Name == category {
			return s.Entries
		}
	}
	return nil
}

// Count returns the total number of entries across all sections.
func (a Aggregate) Count() int {
	n := 0
	for _, s := range a.Sections {
		n += len(s.Entries)
	}
	return n
}

// Markers lists the literal texts that never count as entries.
type Markers struct {
	// Placeholders are the instructional texts left in unedited sections.
	Placeholders []string
	// None are explicit "nothing to report" markers.
	None []string
}

// DefaultMarkers returns the markers used by the default template.
func DefaultMarkers() Markers {
	return Markers{
		Placeholders: []string{"<news item>"},
		None:         []string{"None", "none", "N/A"},
	}
}

// Config is the complete, immutable input of one merge run.
type Config struct {
	// Project is the project name used when scaffolding a changelog.
	Project string
	// Filename is the path of the running changelog document.
	Filename string
	// Pattern is the anchor marking where new entries are inserted.
	Pattern string
	// Header renders the leading block of a new entry.
	Header HeaderTemplate
	// Categories are the recognized categories in rendering order.
	Categories []CategorySpec
	// Title renders category headers in fragments and in the output.
	Title TitleRule
	// NewsDir is the directory holding fragment files.
	NewsDir string
	// Template is the filename of the scaffold fragment inside NewsDir.
	Template string
	// Ignore lists filenames or glob patterns inside NewsDir that are not fragments.
	Ignore []string
	// Markers are excluded from every parsed section.
	Markers Markers
	// AuthorsTitle enables the contributors section when non-empty.
	AuthorsTitle string
	// Clock supplies the release date when none is pinned. Defaults to time.Now.
	Clock func() time.Time
}

// CategoryNames returns the configured category names in order.
func (c *Config) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// IsIgnored reports whether name (a base filename) is the template or matches the ignore set.
func (c *Config) IsIgnored(name string) bool {
	if name == c.Template {
		return true
	}
	for _, pattern := range c.Ignore {
		if pattern == name {
			return true
		}
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// ReleaseDate returns date when set, otherwise today's date from the clock.
func (c *Config) ReleaseDate(date string) string {
	if date != "" {
		return date
	}
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().Format("2006-01-02")
}

// Categories builds ordered CategorySpecs from names.
func Categories(names ...string) []CategorySpec {
	specs := make([]CategorySpec, len(names))
	for i, name := range names {
		specs[i] = CategorySpec{Name: name, Order: i}
	}
	return specs
}

// DefaultCategoryNames returns the Keep a Changelog category names
// in their standard rendering order.
func DefaultCategoryNames() []string {
	return []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}
}

// Result describes a completed (or previewed) merge run.
type Result struct {
	Version string
	Date    string
	// Fragments are the fragment paths that were parsed, in processing order.
	Fragments []string
	Aggregate Aggregate
	// Block is the rendered new entry.
	Block string
	// Document is the changelog content after the splice.
	Document string
	// Deleted lists the fragment paths removed by the sweep.
	Deleted []string
	// Warnings collects non-fatal problems such as failed deletions.
	Warnings []error
	// DryRun is true when nothing was written.
	DryRun bool
}

// ChangedPaths returns every path a merge run touched, for committing.
func (r *Result) ChangedPaths(filename string) []string {
	if r.DryRun {
		return nil
	}
	paths := make([]string, 0, len(r.Deleted)+1)
	paths = append(paths, filename)
	paths = append(paths, r.Deleted...)
	return paths
}
