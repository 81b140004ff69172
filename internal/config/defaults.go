package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# Newsmerge Configuration
# See 'newsmerge config -h' for commands, 'newsmerge config keys' for all options

# Changelog document
project: ""                           # Project name ($PROJECT in header templates)
filename: CHANGELOG.rst               # Running changelog file
pattern: ".. current developments"    # Anchor; new entries are inserted above it
header: "$PATTERN\n\nv$VERSION\n====================\n\n"  # $VERSION $RELEASE_DATE $PATTERN $PROJECT

# Categories in rendering order
categories:
  - Added
  - Changed
  - Deprecated
  - Removed
  - Fixed
  - Security
title_style: bold                     # bold | underline | template
# title_template: "{{.Category}}:\n{{underline (printf \"%s:\" .Category) \"-\"}}\n\n"

# News fragments
news_dir: news                        # Directory holding fragment files
template: TEMPLATE.rst                # Scaffold fragment, never merged or deleted
ignore: []                            # Extra filenames or globs that are not fragments
placeholders:                         # Lines dropped from every section
  - <news item>
none_markers:
  - None
  - none
  - N/A

# Release
authors_title: ""                     # e.g. Authors; renders contributors since the last tag
release_date: ""                      # YYYY-MM-DD; empty means today
commit: false                         # Commit the changelog and removed fragments
commit_message: "Updated changelog for v$VERSION"

# History settings
state_dir: ~/.newsmerge/state         # Directory for the merge history
max_history_entries: 500              # Max merge history entries to retain
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"project":  "",
		"filename": "CHANGELOG.rst",
		"pattern":  ".. current developments",
		// header: re-emits the anchor so it stays above the newest entry.
		"header":         "$PATTERN\n\nv$VERSION\n====================\n\n",
		"categories":     []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"},
		"title_style":    TitleStyleBold,
		"title_template": "",
		"news_dir":       "news",
		"template":       "TEMPLATE.rst",
		"ignore":         []string{},
		"placeholders":   []string{"<news item>"},
		"none_markers":   []string{"None", "none", "N/A"},
		// authors_title: empty disables the contributors section.
		"authors_title": "",
		"release_date":  "",
		"state_dir":     "~/.newsmerge/state",
		// max_history_entries: Oldest entries are pruned when this limit is exceeded.
		"max_history_entries": 500,
		"commit":              false,
		"commit_message":      "Updated changelog for v$VERSION",
	}
}
