package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// categoryPalette cycles colors over configured categories by order.
var categoryPalette = []*color.Color{
	color.New(color.FgGreen),
	color.New(color.FgBlue),
	color.New(color.FgYellow),
	color.New(color.FgRed),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatAggregate writes a terminal friendly view of a pending release:
// a version line followed by each non-empty category and its entries.
func FormatAggregate(res *Result, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeVersionLine(res, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if len(res.Aggregate.Sections) == 0 {
		_, err := fmt.Fprintln(w, "\n  (no news entries)")
		return err
	}

	for _, s := range res.Aggregate.Sections {
		if err := writeSection(s, w, opts, width); err != nil {
			return fmt.Errorf("formatting %s: %w", s.Category.Name, err)
		}
	}
	return nil
}

// FormatSummary returns a one-line description of a merge result.
func FormatSummary(res *Result) string {
	verb := "Merged"
	if res.DryRun {
		verb = "Would merge"
	}
	return fmt.Sprintf("%s %d %s (%d %s in %d %s) into v%s",
		verb,
		len(res.Fragments), plural(len(res.Fragments), "fragment", "fragments"),
		res.Aggregate.Count(), plural(res.Aggregate.Count(), "entry", "entries"),
		len(res.Aggregate.Sections), plural(len(res.Aggregate.Sections), "category", "categories"),
		res.Version,
	)
}

// writeVersionLine writes the version header line.
func writeVersionLine(res *Result, w io.Writer, opts FormatOptions) error {
	header := fmt.Sprintf("v%s (%s)", res.Version, res.Date)
	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}
	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeSection writes a single category with its entries.
func writeSection(s Section, w io.Writer, opts FormatOptions, width int) error {
	idx := s.Category.Order % len(categoryPalette)
	if idx < 0 {
		idx += len(categoryPalette)
	}
	style := categoryPalette[idx]

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", s.Category.Name); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "\n%s\n", style.Sprint(s.Category.Name)); err != nil {
			return err
		}
	}

	prefix := "  - "
	for _, entry := range s.Entries {
		text := entry
		if !opts.Plain {
			text = wrapText(entry, width-len(prefix), "    ")
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, text); err != nil {
			return err
		}
	}
	return nil
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
// Existing line breaks in multi-line entries are kept.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 {
		return text
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, wrapLine(strings.TrimSpace(para), maxWidth)...)
	}
	return strings.Join(out, "\n"+indent)
}

// wrapLine breaks one line at the last space within maxWidth.
func wrapLine(remaining string, maxWidth int) []string {
	var lines []string
	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}
		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}
	if len(remaining) > 0 || len(lines) == 0 {
		lines = append(lines, remaining)
	}
	return lines
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
