package changelog

import (
	"strings"
)

// RenderEntry builds the text of a new changelog entry.
//
// The header template output is written verbatim, followed by one section per
// aggregate section in configured order and, when cfg.AuthorsTitle is set and
// authors is non-empty, a contributors section last. Each section is the title
// rule output, one "* entry" line per entry and a trailing blank line.
// An empty aggregate renders to the header alone.
func RenderEntry(agg Aggregate, cfg *Config, version, date string, authors []string) string {
	var b strings.Builder

	b.WriteString(cfg.Header(version, date))

	for _, s := range agg.Sections {
		renderSection(&b, cfg.Title(s.Category.Name), s.Entries)
	}

	if cfg.AuthorsTitle != "" && len(authors) > 0 {
		renderSection(&b, cfg.Title(cfg.AuthorsTitle), authors)
	}

	return b.String()
}

// renderSection writes a title, its bullet lines and the separating blank line.
func renderSection(b *strings.Builder, title string, entries []string) {
	b.WriteString(title)
	if !strings.HasSuffix(title, "\n") {
		b.WriteString("\n")
	}
	for _, entry := range entries {
		b.WriteString("* ")
		b.WriteString(entry)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
