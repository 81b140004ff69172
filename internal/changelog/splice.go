package changelog

import "strings"

// Splice inserts block into document immediately before the first
// occurrence of anchor. Everything from the anchor onward is kept byte for byte.
//
// Header templates conventionally re-emit the anchor so the marker stays
// above the newest entry. When block starts with anchor, the anchor it
// carries replaces the document's occurrence, so the anchor still appears
// exactly once and the text after it is untouched.
func Splice(document, anchor, block string) (string, error) {
	if anchor == "" {
		return "", &MalformedChangelogError{Anchor: anchor, Err: ErrAnchorNotFound}
	}

	idx := strings.Index(document, anchor)
	if idx < 0 {
		return "", &MalformedChangelogError{Anchor: anchor, Err: ErrAnchorNotFound}
	}

	before := document[:idx]
	rest := document[idx:]
	if strings.HasPrefix(block, anchor) {
		rest = document[idx+len(anchor):]
	}

	var b strings.Builder
	b.Grow(len(before) + len(block) + len(rest))
	b.WriteString(before)
	b.WriteString(block)
	b.WriteString(rest)
	return b.String(), nil
}
