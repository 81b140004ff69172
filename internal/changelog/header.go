package changelog

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

// BoldTitle is the default title rule: an inline bold category label.
func BoldTitle(category string) string {
	return "**" + category + ":**"
}

// UnderlineTitle renders the category as a heading underlined with dashes.
func UnderlineTitle(category string) string {
	label := category + ":"
	return label + "\n" + strings.Repeat("-", utf8.RuneCountInString(label))
}

// titleData is the data passed to title templates.
type titleData struct {
	Category string
}

var titleFuncs = template.FuncMap{
	"upper":  strings.ToUpper,
	"lower":  strings.ToLower,
	"repeat": strings.Repeat,
	// underline returns ch repeated once per rune of text.
	"underline": func(text, ch string) string {
		return strings.Repeat(ch, utf8.RuneCountInString(text))
	},
}

// TemplateTitle builds a TitleRule from Go text/template source.
// The template receives {{.Category}} and may use the upper, lower, repeat
// and underline helpers, for example:
//
//	{{.Category}}:
//	{{underline (printf "%s:" .Category) "-"}}
func TemplateTitle(src string) (TitleRule, error) {
	tmpl, err := template.New("title").Funcs(titleFuncs).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing title template: %w", err)
	}

	render := func(category string) (string, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, titleData{Category: category}); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	sample, err := render("Category")
	if err != nil {
		return nil, fmt.Errorf("executing title template: %w", err)
	}
	if strings.TrimSpace(sample) == "" {
		return nil, fmt.Errorf("title template renders empty text")
	}

	return func(category string) string {
		out, err := render(category)
		if err != nil {
			logDebug("[changelog] title template failed for %q: %v", category, err)
			return BoldTitle(category)
		}
		return out
	}, nil
}

// ExpandHeader builds a HeaderTemplate from text containing shell style
// variables ($NAME or ${NAME}). $VERSION and $RELEASE_DATE are bound per run;
// vars supplies any other names (PROJECT, PATTERN). Unknown variables and
// malformed references such as an unclosed "${" are copied verbatim.
func ExpandHeader(text string, vars map[string]string) HeaderTemplate {
	return func(version, date string) string {
		return expandVars(text, func(name string) (string, bool) {
			switch name {
			case "VERSION":
				return version, true
			case "RELEASE_DATE":
				return date, true
			}
			v, ok := vars[name]
			return v, ok
		})
	}
}

// expandVars replaces $NAME and ${NAME} references that lookup knows.
func expandVars(text string, lookup func(name string) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] != '$' {
			b.WriteByte(text[i])
			i++
			continue
		}
		name, width := scanVar(text[i+1:])
		if name == "" {
			b.WriteByte('$')
			i++
			continue
		}
		if v, ok := lookup(name); ok {
			b.WriteString(v)
		} else {
			b.WriteString(text[i : i+1+width])
		}
		i += 1 + width
	}
	return b.String()
}

// scanVar returns the variable name at the start of s and how many bytes the
// reference spans. An empty name means s does not start a valid reference.
func scanVar(s string) (string, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return "", 0
		}
		name := s[1:end]
		if n := varNameLen(name); n == 0 || n != len(name) {
			return "", 0
		}
		return name, end + 1
	}
	n := varNameLen(s)
	return s[:n], n
}

// varNameLen is the length of the identifier ([A-Za-z_][A-Za-z0-9_]*) at the start of s.
func varNameLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		letter := c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
		digit := '0' <= c && c <= '9'
		if !letter && !(digit && n > 0) {
			break
		}
		n++
	}
	return n
}

// Match describes a header found at a line position of a fragment.
type Match struct {
	Category CategorySpec
	// Lines is the number of source lines the header occupies.
	Lines int
	// Inline is text following the header on its last line, trimmed.
	Inline string
}

// Matcher recognizes category headers produced by a TitleRule.
// Header texts are computed once, when the matcher is built.
type Matcher struct {
	rule       TitleRule
	categories []CategorySpec
	headers    [][]string
}

// NewMatcher resolves the header text of every category through rule.
func NewMatcher(categories []CategorySpec, rule TitleRule) *Matcher {
	m := &Matcher{
		rule:       rule,
		categories: categories,
		headers:    make([][]string, len(categories)),
	}
	for i, cat := range categories {
		m.headers[i] = headerLines(rule(cat.Name))
	}
	return m
}

// HeaderText returns the literal header text for category with trailing
// whitespace removed from every line and surrounding blank lines dropped.
func (m *Matcher) HeaderText(category string) string {
	for i, cat := range m.categories {
		if cat.Name == category {
			return strings.Join(m.headers[i], "\n")
		}
	}
	return strings.Join(headerLines(m.rule(category)), "\n")
}

// IsHeaderLine reports whether line, with trailing whitespace trimmed, is
// exactly the header text of category. Multi-line headers must be passed
// as one string joined with newlines.
func (m *Matcher) IsHeaderLine(line, category string) bool {
	header := m.HeaderText(category)
	if header == "" {
		return false
	}
	return strings.Join(headerLines(line), "\n") == header
}

// MatchAt tests whether lines[i:] starts with a configured header.
// The last header line may be followed on the same source line by
// whitespace and inline text, as in "**Security:** None".
// When several headers match, the one spanning more lines wins, then the longer one.
func (m *Matcher) MatchAt(lines []string, i int) (Match, bool) {
	var best Match
	bestLen := -1
	found := false

	for c, header := range m.headers {
		inline, ok := matchHeader(lines, i, header)
		if !ok {
			continue
		}
		size := len(strings.Join(header, "\n"))
		if !found || len(header) > best.Lines || (len(header) == best.Lines && size > bestLen) {
			best = Match{Category: m.categories[c], Lines: len(header), Inline: inline}
			bestLen = size
			found = true
		}
	}

	return best, found
}

// matchHeader compares header lines against source lines starting at i.
func matchHeader(lines []string, i int, header []string) (string, bool) {
	if len(header) == 0 || i+len(header) > len(lines) {
		return "", false
	}

	last := len(header) - 1
	for j := 0; j < last; j++ {
		if rtrim(lines[i+j]) != header[j] {
			return "", false
		}
	}

	line := rtrim(lines[i+last])
	if line == header[last] {
		return "", true
	}
	if !strings.HasPrefix(line, header[last]) {
		return "", false
	}
	rest := line[len(header[last]):]
	r, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsSpace(r) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// headerLines splits rendered title text into right-trimmed lines
// without leading or trailing blank lines.
func headerLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, rtrim(l))
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func rtrim(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
