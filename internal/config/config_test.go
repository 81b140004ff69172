package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate makes a fresh temp dir the working directory and points HOME
// and XDG_CONFIG_HOME below it, so no real user or project config is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	require.NoError(t, os.MkdirAll(home, 0o755))
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := LoadWithOptions(LoadOptions{SkipWarnings: true})
	require.NoError(t, err)

	assert.Equal(t, "CHANGELOG.rst", cfg.Filename)
	assert.Equal(t, ".. current developments", cfg.Pattern)
	assert.Equal(t, "$PATTERN\n\nv$VERSION\n====================\n\n", cfg.Header)
	assert.Equal(t, []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}, cfg.Categories)
	assert.Equal(t, TitleStyleBold, cfg.TitleStyle)
	assert.Equal(t, "news", cfg.NewsDir)
	assert.Equal(t, "TEMPLATE.rst", cfg.Template)
	assert.Equal(t, []string{"<news item>"}, cfg.Placeholders)
	assert.Equal(t, []string{"None", "none", "N/A"}, cfg.NoneMarkers)
	assert.Equal(t, 500, cfg.MaxHistoryEntries)
	assert.False(t, cfg.Commit)
	home := filepath.Join(dir, "home")
	assert.Equal(t, filepath.Join(home, ".newsmerge", "state"), cfg.StateDir)
	assert.Equal(t, filepath.Join(home, ".newsmerge", "state", "history.yaml"), cfg.HistoryPath())
}

func TestLoad_Priority(t *testing.T) {
	tests := map[string]struct {
		user    string
		project string
		env     map[string]string
		check   func(t *testing.T, cfg *Configuration)
	}{
		"user config over defaults": {
			user: "news_dir: changes\n",
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "changes", cfg.NewsDir)
			},
		},
		"project config over user config": {
			user:    "news_dir: changes\nproject: from-user\n",
			project: "news_dir: news.d\n",
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "news.d", cfg.NewsDir)
				assert.Equal(t, "from-user", cfg.Project)
			},
		},
		"environment over project config": {
			project: "news_dir: news.d\ncommit: false\n",
			env: map[string]string{
				"NEWSMERGE_NEWS_DIR":            "env-news",
				"NEWSMERGE_COMMIT":              "true",
				"NEWSMERGE_MAX_HISTORY_ENTRIES": "10",
			},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "env-news", cfg.NewsDir)
				assert.True(t, cfg.Commit)
				assert.Equal(t, 10, cfg.MaxHistoryEntries)
			},
		},
		"environment lists are comma separated": {
			env: map[string]string{"NEWSMERGE_CATEGORIES": "Features, Bug fixes,,Docs"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, []string{"Features", "Bug fixes", "Docs"}, cfg.Categories)
			},
		},
		"project lists replace defaults": {
			project: "categories:\n  - Enhancements\n  - Bug fixes\ntitle_style: underline\n",
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, []string{"Enhancements", "Bug fixes"}, cfg.Categories)
				assert.Equal(t, TitleStyleUnderline, cfg.TitleStyle)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := isolate(t)
			if tt.user != "" {
				userPath, err := UserConfigPath()
				require.NoError(t, err)
				writeConfig(t, userPath, tt.user)
			}
			if tt.project != "" {
				writeConfig(t, filepath.Join(dir, ".newsmerge", "config.yml"), tt.project)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadWithOptions(LoadOptions{SkipWarnings: true})
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_CustomProjectPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yml")
	writeConfig(t, path, "filename: HISTORY.rst\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "HISTORY.rst", cfg.Filename)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]struct {
		project string
		wantErr string
	}{
		"invalid yaml": {
			project: "news_dir: [unclosed\n",
			wantErr: "validating YAML syntax",
		},
		"unknown title style": {
			project: "title_style: fancy\n",
			wantErr: "title_style",
		},
		"template style without template": {
			project: "title_style: template\n",
			wantErr: "title_template",
		},
		"empty categories": {
			project: "categories: []\n",
			wantErr: "categories",
		},
		"bad release date": {
			project: "release_date: 12/01/2024\n",
			wantErr: "release_date",
		},
		"negative history": {
			project: "max_history_entries: -1\n",
			wantErr: "max_history_entries",
		},
		"empty pattern": {
			project: "pattern: \"\"\n",
			wantErr: "pattern",
		},
		"padded pattern": {
			project: "pattern: \" .. anchor\"\n",
			wantErr: "whitespace",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, filepath.Join(dir, ".newsmerge", "config.yml"), tt.project)

			_, err := LoadWithOptions(LoadOptions{SkipWarnings: true})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_LegacyJSON(t *testing.T) {
	tests := map[string]struct {
		withYAML    bool
		wantNewsDir string
		wantWarning string
	}{
		"legacy only": {
			wantNewsDir: "legacy-news",
			wantWarning: "Using deprecated JSON config",
		},
		"yaml wins over legacy": {
			withYAML:    true,
			wantNewsDir: "yaml-news",
			wantWarning: "Legacy JSON config found",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, filepath.Join(dir, ".newsmerge", "config.json"), `{"news_dir": "legacy-news"}`)
			if tt.withYAML {
				writeConfig(t, filepath.Join(dir, ".newsmerge", "config.yml"), "news_dir: yaml-news\n")
			}

			var warnings bytes.Buffer
			cfg, err := LoadWithOptions(LoadOptions{WarningWriter: &warnings})
			require.NoError(t, err)
			assert.Equal(t, tt.wantNewsDir, cfg.NewsDir)
			assert.Contains(t, warnings.String(), tt.wantWarning)
			assert.Contains(t, warnings.String(), "newsmerge config migrate --project")
		})
	}
}

func TestConfiguration_Changelog(t *testing.T) {
	tests := map[string]struct {
		project string
		check   func(t *testing.T, cfg *changelog.Config)
	}{
		"defaults": {
			check: func(t *testing.T, cfg *changelog.Config) {
				assert.Equal(t, "**Added:**", cfg.Title("Added"))
				assert.Equal(t, ".. current developments\n\nv1.0\n====================\n\n", cfg.Header("1.0", "2024-01-01"))
				assert.Equal(t, changelog.DefaultCategoryNames(), cfg.CategoryNames())
				assert.Equal(t, changelog.DefaultMarkers(), cfg.Markers)
			},
		},
		"underline style": {
			project: "title_style: underline\n",
			check: func(t *testing.T, cfg *changelog.Config) {
				assert.Equal(t, "Fixed:\n------", cfg.Title("Fixed"))
			},
		},
		"template style": {
			project: "title_style: template\ntitle_template: '### {{.Category}}'\n",
			check: func(t *testing.T, cfg *changelog.Config) {
				assert.Equal(t, "### Fixed", cfg.Title("Fixed"))
			},
		},
		"project in header": {
			project: "project: castlehouse\nheader: \"$PATTERN\\n\\n$PROJECT $VERSION ($RELEASE_DATE)\\n\\n\"\n",
			check: func(t *testing.T, cfg *changelog.Config) {
				assert.Equal(t, ".. current developments\n\ncastlehouse 2.0 (2024-01-01)\n\n", cfg.Header("2.0", "2024-01-01"))
				assert.Equal(t, "castlehouse", cfg.Project)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := isolate(t)
			if tt.project != "" {
				writeConfig(t, filepath.Join(dir, ".newsmerge", "config.yml"), tt.project)
			}

			c, err := LoadWithOptions(LoadOptions{SkipWarnings: true})
			require.NoError(t, err)

			cfg, err := c.Changelog()
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfiguration_ChangelogErrors(t *testing.T) {
	tests := map[string]struct {
		mutate    func(c *Configuration)
		wantField string
	}{
		"broken title template": {
			mutate:    func(c *Configuration) { c.TitleStyle = TitleStyleTemplate; c.TitleTemplate = "{{.Category" },
			wantField: "title_template",
		},
		"unknown style": {
			mutate:    func(c *Configuration) { c.TitleStyle = "fancy" },
			wantField: "title_style",
		},
		"duplicate categories": {
			mutate:    func(c *Configuration) { c.Categories = []string{"Added", "Added"} },
			wantField: "categories[1]",
		},
		"missing pattern": {
			mutate:    func(c *Configuration) { c.Pattern = "" },
			wantField: "pattern",
		},
		"header without anchor": {
			mutate:    func(c *Configuration) { c.Header = "v$VERSION\n====\n\n" },
			wantField: "header",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := defaultConfiguration()
			tt.mutate(c)

			_, err := c.Changelog()
			require.Error(t, err)

			var ce *changelog.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantField, ce.Field)
		})
	}
}

func TestConfiguration_CommitMessageFor(t *testing.T) {
	c := defaultConfiguration()
	assert.Equal(t, "Updated changelog for v1.4.0", c.CommitMessageFor("1.4.0", "2024-01-01"))

	c.Project = "castlehouse"
	c.CommitMessage = "$PROJECT $VERSION released $RELEASE_DATE"
	assert.Equal(t, "castlehouse 1.4.0 released 2024-01-01", c.CommitMessageFor("1.4.0", "2024-01-01"))
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"simple":        {in: "NEWSMERGE_NEWS_DIR", want: "news_dir"},
		"nested":        {in: "NEWSMERGE_SECTION__KEY", want: "section.key"},
		"single letter": {in: "NEWSMERGE_X", want: "x"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, envTransform(tt.in))
		})
	}
}

func TestEnvValue(t *testing.T) {
	tests := map[string]struct {
		name    string
		value   string
		wantKey string
		want    interface{}
		wantErr string
	}{
		"string":    {name: "NEWSMERGE_NEWS_DIR", value: "changes", wantKey: "news_dir", want: "changes"},
		"bool":      {name: "NEWSMERGE_COMMIT", value: "True", wantKey: "commit", want: true},
		"int":       {name: "NEWSMERGE_MAX_HISTORY_ENTRIES", value: "7", wantKey: "max_history_entries", want: 7},
		"list":      {name: "NEWSMERGE_IGNORE", value: "README.rst, *.md", wantKey: "ignore", want: []string{"README.rst", "*.md"}},
		"unknown":   {name: "NEWSMERGE_ASCII", value: "1"},
		"bad bool":  {name: "NEWSMERGE_COMMIT", value: "yes", wantErr: "invalid boolean"},
		"bad style": {name: "NEWSMERGE_TITLE_STYLE", value: "fancy", wantErr: "valid options"},
		"bad date":  {name: "NEWSMERGE_RELEASE_DATE", value: "tomorrow", wantErr: "invalid date"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			key, got, err := envValue(tt.name, tt.value)
			if tt.wantErr != "" {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.name, ve.FilePath)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_EnvError(t *testing.T) {
	isolate(t)
	t.Setenv("NEWSMERGE_MAX_HISTORY_ENTRIES", "lots")

	_, err := LoadWithOptions(LoadOptions{SkipWarnings: true})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "max_history_entries", ve.Field)
	assert.Contains(t, err.Error(), "NEWSMERGE_MAX_HISTORY_ENTRIES")
}

// defaultConfiguration builds a Configuration from the default values only.
func defaultConfiguration() *Configuration {
	d := GetDefaults()
	return &Configuration{
		Filename:          d["filename"].(string),
		Pattern:           d["pattern"].(string),
		Header:            d["header"].(string),
		Categories:        d["categories"].([]string),
		TitleStyle:        d["title_style"].(string),
		NewsDir:           d["news_dir"].(string),
		Template:          d["template"].(string),
		Placeholders:      d["placeholders"].([]string),
		NoneMarkers:       d["none_markers"].([]string),
		StateDir:          d["state_dir"].(string),
		MaxHistoryEntries: d["max_history_entries"].(int),
		CommitMessage:     d["commit_message"].(string),
	}
}
