// Package lint checks news fragments for mistakes that would silently drop
// entries from a merge: files without a recognized header, files with no
// entries left after marker filtering, and lines that look like a category
// header but name no configured category.
package lint

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"golang.org/x/sync/errgroup"
)

// Severity ranks an issue.
type Severity int

const (
	// Warning marks a fragment that merges cleanly but contributes nothing.
	Warning Severity = iota
	// Error marks content that a merge would lose.
	Error
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Issue is one finding in a fragment. Line is 1-based, or 0 for the whole file.
type Issue struct {
	Severity Severity
	Line     int
	Message  string
}

// Report holds the findings for one fragment.
type Report struct {
	Path    string
	Entries int
	Issues  []Issue
}

// OK returns true if the report has no issues.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

// HasErrors returns true if any report carries an Error issue.
func HasErrors(reports []Report) bool {
	for _, r := range reports {
		for _, is := range r.Issues {
			if is.Severity == Error {
				return true
			}
		}
	}
	return false
}

// Options tunes a lint run.
type Options struct {
	// Concurrency bounds the number of fragments checked at once. 0 means NumCPU.
	Concurrency int
}

// CheckDir lints every fragment that a merge of cfg would consume.
func CheckDir(ctx context.Context, cfg *changelog.Config, opts Options) ([]Report, error) {
	paths, err := changelog.ListFragments(cfg)
	if err != nil {
		return nil, err
	}
	return Check(ctx, cfg, paths, opts)
}

// Check lints paths concurrently. Reports are returned in the order of paths.
func Check(ctx context.Context, cfg *changelog.Config, paths []string, opts Options) ([]Report, error) {
	if err := changelog.Validate(cfg); err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	c := newChecker(cfg)
	reports := make([]Report, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = c.checkFile(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("linting fragments: %w", err)
	}
	return reports, nil
}

// checker holds the state shared by all files of one run. It is read-only
// after construction.
type checker struct {
	parser  *changelog.Parser
	matcher *changelog.Matcher
	shape   titleShape
	names   string
}

func newChecker(cfg *changelog.Config) *checker {
	parser := changelog.NewParser(cfg)
	return &checker{
		parser:  parser,
		matcher: parser.Matcher(),
		shape:   shapeOf(cfg.Title),
		names:   strings.Join(cfg.CategoryNames(), ", "),
	}
}

func (c *checker) checkFile(path string) Report {
	report := Report{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		report.Issues = append(report.Issues, Issue{Severity: Error, Message: fmt.Sprintf("cannot read: %v", err)})
		return report
	}
	text := string(data)

	frag := c.parser.Parse(path, text)
	for _, s := range frag.Sections {
		report.Entries += len(s.Entries)
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); {
		if m, ok := c.matcher.MatchAt(lines, i); ok {
			i += m.Lines
			continue
		}
		if name, ok := c.shape.looksLikeHeader(lines, i); ok {
			report.Issues = append(report.Issues, Issue{
				Severity: Error,
				Line:     i + 1,
				Message:  fmt.Sprintf("unknown category %q (expected one of: %s)", name, c.names),
			})
		}
		i++
	}

	switch {
	case len(frag.Sections) == 0:
		report.Issues = append(report.Issues, Issue{Severity: Error, Message: "no recognized category header"})
	case report.Entries == 0:
		report.Issues = append(report.Issues, Issue{Severity: Warning, Message: "no entries after removing placeholders and none markers"})
	}

	return report
}
