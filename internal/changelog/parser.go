package changelog

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Parser splits fragment text into category sections.
// It is built once per run from a validated Config and holds no per-file state.
type Parser struct {
	matcher *Matcher
	markers map[string]bool
}

// NewParser creates a Parser for the categories, title rule and markers of cfg.
func NewParser(cfg *Config) *Parser {
	markers := make(map[string]bool, len(cfg.Markers.Placeholders)+len(cfg.Markers.None))
	for _, m := range cfg.Markers.Placeholders {
		if t := strings.TrimSpace(m); t != "" {
			markers[t] = true
		}
	}
	for _, m := range cfg.Markers.None {
		if t := strings.TrimSpace(m); t != "" {
			markers[t] = true
		}
	}

	return &Parser{
		matcher: NewMatcher(cfg.Categories, cfg.Title),
		markers: markers,
	}
}

// Matcher returns the header matcher used by the parser.
func (p *Parser) Matcher() *Matcher {
	return p.matcher
}

// ParseFile reads and parses one fragment file.
// Only reading can fail; content problems never do.
func (p *Parser) ParseFile(path string) (Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fragment{}, fmt.Errorf("reading fragment %s: %w", path, err)
	}
	return p.Parse(path, string(data)), nil
}

// Parse splits text into sections in a single top-to-bottom pass.
//
// A recognized header line starts a new current category. Inside a category,
// a bullet line ("* " or "- ") starts an entry, an indented line continues the
// previous entry, and any other non-blank line is an entry of its own.
// Placeholder and none markers are dropped. Text before the first header is ignored.
func (p *Parser) Parse(path, text string) Fragment {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	frag := Fragment{Path: path}
	index := make(map[string]int)

	current := -1
	open := false

	for i := 0; i < len(lines); {
		if m, ok := p.matcher.MatchAt(lines, i); ok {
			idx, seen := index[m.Category.Name]
			if !seen {
				idx = len(frag.Sections)
				index[m.Category.Name] = idx
				frag.Sections = append(frag.Sections, Section{Category: m.Category})
			}
			current = idx
			open = false
			if m.Inline != "" {
				open = p.add(&frag.Sections[current], m.Inline)
			}
			i += m.Lines
			continue
		}

		line := lines[i]
		i++

		if current < 0 {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			open = false
			continue
		}

		section := &frag.Sections[current]
		if open && isIndented(line) {
			if p.IsMarker(trimmed) || p.IsMarker(stripBullet(trimmed)) {
				continue
			}
			last := len(section.Entries) - 1
			section.Entries[last] += "\n" + rtrim(line)
			continue
		}

		open = p.add(section, trimmed)
	}

	logDebug("[changelog] parsed %s: %d section(s)", path, len(frag.Sections))
	return frag
}

// add appends a trimmed line as a new entry unless it is a marker.
// It returns whether an entry was added.
func (p *Parser) add(section *Section, trimmed string) bool {
	entry := stripBullet(trimmed)
	if entry == "" || p.IsMarker(trimmed) || p.IsMarker(entry) {
		return false
	}
	section.Entries = append(section.Entries, entry)
	return true
}

// IsMarker reports whether text, trimmed, is a placeholder or none marker.
func (p *Parser) IsMarker(text string) bool {
	return p.markers[strings.TrimSpace(text)]
}

// stripBullet removes a leading "* " or "- " list marker.
func stripBullet(s string) string {
	if s == "*" || s == "-" {
		return ""
	}
	for _, prefix := range []string{"* ", "- "} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}

// isIndented reports whether line starts with whitespace.
func isIndented(line string) bool {
	return line != "" && unicode.IsSpace(rune(line[0]))
}

// ParseFragment is a convenience wrapper that parses text with a fresh Parser.
func ParseFragment(cfg *Config, path, text string) Fragment {
	return NewParser(cfg).Parse(path, text)
}
