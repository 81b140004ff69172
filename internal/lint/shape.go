package lint

import (
	"strings"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
)

// sentinel stands in for a category name when sampling a TitleRule.
const sentinel = "\x00"

// titleShape is the text a TitleRule puts around a category name on the
// first header line, and whether the header continues with an underline.
type titleShape struct {
	prefix    string
	suffix    string
	underline bool
	valid     bool
}

// shapeOf samples rule with a sentinel name. Rules that do not echo the name
// produce an invalid shape and disable the unknown-header check.
func shapeOf(rule changelog.TitleRule) titleShape {
	lines := strings.Split(strings.TrimRight(rule(sentinel), " \t\r\n"), "\n")
	idx := strings.Index(lines[0], sentinel)
	if idx < 0 {
		return titleShape{}
	}

	s := titleShape{
		prefix:    strings.TrimSpace(lines[0][:idx]),
		suffix:    strings.TrimSpace(lines[0][idx+len(sentinel):]),
		underline: len(lines) > 1,
	}
	// A single-line title with no prefix would make every "Text:" line suspicious.
	s.valid = s.underline && s.suffix != "" || !s.underline && s.prefix != ""
	return s
}

// looksLikeHeader reports whether lines[i] has the outline of a header and
// returns the name it carries.
func (s titleShape) looksLikeHeader(lines []string, i int) (string, bool) {
	if !s.valid {
		return "", false
	}
	line := strings.TrimRight(lines[i], " \t\r")
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return "", false
	}

	if s.underline {
		if i+1 >= len(lines) || !isRule(strings.TrimSpace(lines[i+1])) {
			return "", false
		}
		name, ok := strings.CutSuffix(line, s.suffix)
		name = strings.TrimSpace(strings.TrimPrefix(name, s.prefix))
		return name, ok && name != ""
	}

	rest, ok := strings.CutPrefix(line, s.prefix)
	if !ok {
		return "", false
	}
	end := strings.Index(rest, s.suffix)
	if s.suffix == "" {
		end = len(rest)
	}
	if end <= 0 {
		return "", false
	}
	name := strings.TrimSpace(rest[:end])
	return name, name != ""
}

// isRule reports whether s is at least two copies of one punctuation character.
func isRule(s string) bool {
	if len(s) < 2 || !strings.ContainsRune("-=~^*#+", rune(s[0])) {
		return false
	}
	return strings.Count(s, s[:1]) == len(s)
}
