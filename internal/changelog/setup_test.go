package changelog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateContent(t *testing.T) {
	tests := map[string]struct {
		cfg      func(t *testing.T) *Config
		expected string
	}{
		"bold": {
			cfg:      func(t *testing.T) *Config { return boldConfig(t.TempDir()) },
			expected: boldTemplate,
		},
		"underline": {
			cfg:      func(t *testing.T) *Config { return underlineConfig(t, t.TempDir()) },
			expected: underlineTemplate,
		},
		"custom placeholder": {
			cfg: func(t *testing.T) *Config {
				cfg := boldConfig(t.TempDir())
				cfg.Categories = Categories("Fixed")
				cfg.Markers.Placeholders = []string{"TODO: describe"}
				return cfg
			},
			expected: "**Fixed:**\n\n* TODO: describe\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TemplateContent(tt.cfg(t)))
		})
	}
}

func TestTemplateContent_ParsesEmpty(t *testing.T) {
	cfg := underlineConfig(t, t.TempDir())
	frag := ParseFragment(cfg, "TEMPLATE", TemplateContent(cfg))
	assert.True(t, frag.IsEmpty())
}

func TestChangelogSkeleton(t *testing.T) {
	cfg := boldConfig(t.TempDir())

	assert.Equal(t,
		"======================\ncastlehouse Change Log\n======================\n\n.. current developments\n",
		ChangelogSkeleton(cfg))

	cfg.Project = ""
	assert.Equal(t, "==========\nChange Log\n==========\n\n.. current developments\n", ChangelogSkeleton(cfg))
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	cfg := boldConfig(dir)

	created, err := Setup(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(cfg.NewsDir, "TEMPLATE.rst"), cfg.Filename}, created)
	assert.Equal(t, boldTemplate, readFile(t, filepath.Join(cfg.NewsDir, "TEMPLATE.rst")))
	assert.Contains(t, readFile(t, cfg.Filename), cfg.Pattern)

	// Running again keeps user content.
	writeFiles(t, dir, map[string]string{"CHANGELOG.rst": "custom\n" + boldAnchor + "\n"})
	created, err = Setup(cfg)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Equal(t, "custom\n"+boldAnchor+"\n", readFile(t, cfg.Filename))
}

func TestSetup_ThenMerge(t *testing.T) {
	dir := t.TempDir()
	cfg := boldConfig(dir)

	_, err := Setup(cfg)
	require.NoError(t, err)

	path, err := NewFragment(cfg, "feature.rst")
	require.NoError(t, err)
	writeFiles(t, dir, map[string]string{
		filepath.Join("nuws", "feature.rst"): "**Added:**\n\n* Shiny\n\n**Fixed:**\n\n* <news item>\n",
	})

	res, err := Merge(cfg, MergeOptions{Version: "0.1.0", Date: "2001-01-02"})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, res.Deleted)
	assert.Equal(t,
		"======================\ncastlehouse Change Log\n======================\n\n"+
			".. current developments\n\nv0.1.0\n====================\n\n**Added:**\n* Shiny\n\n\n",
		readFile(t, cfg.Filename))
}

func TestSetup_InvalidConfig(t *testing.T) {
	cfg := boldConfig(t.TempDir())
	cfg.Pattern = ""

	_, err := Setup(cfg)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestNewFragment(t *testing.T) {
	tests := map[string]struct {
		files    map[string]string
		name     string
		expected string
		wantErr  string
	}{
		"copies template file": {
			files:    map[string]string{"nuws/TEMPLATE.rst": "**Fixed:**\n\n* <news item>\n"},
			name:     "fix.rst",
			expected: "**Fixed:**\n\n* <news item>\n",
		},
		"generated template when file missing": {
			name:     "feature.rst",
			expected: boldTemplate,
		},
		"existing fragment": {
			files:   map[string]string{"nuws/fix.rst": "mine"},
			name:    "fix.rst",
			wantErr: "fragment already exists",
		},
		"path separator": {
			name:    "../escape.rst",
			wantErr: "invalid fragment name",
		},
		"template name reserved": {
			name:    "TEMPLATE.rst",
			wantErr: "reserved",
		},
		"empty name": {
			name:    "",
			wantErr: "invalid fragment name",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)
			cfg := boldConfig(dir)

			path, err := NewFragment(cfg, tt.name)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(cfg.NewsDir, tt.name), path)
			assert.Equal(t, tt.expected, readFile(t, path))
		})
	}
}

func TestNewFragment_ExistsSentinel(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"nuws/x.rst": "keep"})
	cfg := boldConfig(dir)

	_, err := NewFragment(cfg, "x.rst")
	assert.True(t, errors.Is(err, ErrFragmentExists))
	assert.Equal(t, "keep", readFile(t, filepath.Join(cfg.NewsDir, "x.rst")))
}
