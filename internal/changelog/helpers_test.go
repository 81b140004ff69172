package changelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const boldAnchor = ".. current developments"

// boldConfig returns the default inline-bold configuration rooted at dir.
func boldConfig(dir string) *Config {
	return &Config{
		Project:    "castlehouse",
		Filename:   filepath.Join(dir, "CHANGELOG.rst"),
		Pattern:    boldAnchor,
		Header:     ExpandHeader("$PATTERN\n\nv$VERSION\n====================\n\n", map[string]string{"PATTERN": boldAnchor}),
		Categories: Categories(DefaultCategoryNames()...),
		Title:      BoldTitle,
		NewsDir:    filepath.Join(dir, "nuws"),
		Template:   "TEMPLATE.rst",
		Markers:    DefaultMarkers(),
	}
}

// underlineConfig returns a conda-build style configuration rooted at dir.
func underlineConfig(t *testing.T, dir string) *Config {
	t.Helper()

	title, err := TemplateTitle("{{.Category}}:\n{{underline (printf \"%s:\" .Category) \"-\"}}\n\n")
	require.NoError(t, err)

	return &Config{
		Filename:   filepath.Join(dir, "CHANGELOG.txt"),
		Pattern:    "# current developments",
		Header:     ExpandHeader("# current developments\n$RELEASE_DATE $VERSION:\n------------------\n\n", nil),
		Categories: Categories("Enhancements", "Bug fixes", "Deprecations", "Docs", "Other"),
		Title:      title,
		NewsDir:    filepath.Join(dir, "news"),
		Template:   "TEMPLATE",
		Markers:    DefaultMarkers(),
	}
}

// writeFiles creates files relative to dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

// readFile returns the content of path.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const boldChangelog = `.. current developments

v42.1.0
============
* And some other stuff happeneded.
`

const boldTemplate = `**Added:**

* <news item>

**Changed:**

* <news item>

**Deprecated:**

* <news item>

**Removed:**

* <news item>

**Fixed:**

* <news item>

**Security:**

* <news item>
`

const boldN0 = `**Added:**

* from n0

**Changed:**

* <news item>

**Deprecated:**

* <news item>

**Removed:**

* here
* and here

**Fixed:**

* <news item>

**Security:**

* <news item>
`

const boldN1 = `**Added:**

* from n1

**Changed:**

* But what martial arts are they mixing?

**Deprecated:**

* <news item>

**Removed:**

* There

**Fixed:**

* <news item>

**Security:** None
`

const underlineChangelog = `# current developments

1999-09-12 42.1.0:
------------------
* And some other stuff happeneded.
`

const underlineTemplate = `Enhancements:
-------------

* <news item>

Bug fixes:
----------

* <news item>

Deprecations:
-------------

* <news item>

Docs:
-----

* <news item>

Other:
------

* <news item>
`

const underlineN0 = `
Enhancements:
-------------

* from n0

Bug fixes:
----------

* <news item>

Deprecations:
-------------

* here
* and here

Docs:
-----

* <news item>

Other:
------

* <news item>
`

const underlineN1 = `
Enhancements:
-------------

* from n1

Bug fixes:
----------

* <news item>

Deprecations:
-------------

* There

Docs:
-----

* But what martial arts are they mixing?

Other:
------

* <news item>
`
