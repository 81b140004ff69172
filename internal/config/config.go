// newsmerge - News fragment changelog assembler
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/newsmerge

// Package config provides hierarchical configuration management for newsmerge using koanf.
// Configuration is loaded with priority: environment variables > project config (.newsmerge/config.yml)
// > user config (~/.config/newsmerge/config.yml) > defaults. It supports both YAML and legacy JSON
// formats, with migration utilities for transitioning from JSON to YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Title styles accepted by title_style.
const (
	TitleStyleBold      = "bold"
	TitleStyleUnderline = "underline"
	TitleStyleTemplate  = "template"
)

// envPrefix is the prefix of every environment override.
const envPrefix = "NEWSMERGE_"

// Configuration represents the newsmerge CLI tool configuration
type Configuration struct {
	// Project is the project name used when scaffolding the changelog and
	// available to header templates as $PROJECT.
	Project string `koanf:"project" yaml:"project"`

	// Filename is the running changelog document.
	Filename string `koanf:"filename" yaml:"filename" validate:"required"`
	// Pattern is the anchor text new entries are inserted above.
	Pattern string `koanf:"pattern" yaml:"pattern" validate:"required"`
	// Header is the entry header with $VERSION, $RELEASE_DATE, $PATTERN and $PROJECT variables.
	Header string `koanf:"header" yaml:"header" validate:"required"`

	// Categories are the recognized categories in rendering order.
	Categories []string `koanf:"categories" yaml:"categories" validate:"min=1,dive,required"`
	// TitleStyle selects the title rule: bold, underline or template.
	TitleStyle string `koanf:"title_style" yaml:"title_style" validate:"oneof=bold underline template"`
	// TitleTemplate is Go text/template source used when TitleStyle is "template".
	TitleTemplate string `koanf:"title_template" yaml:"title_template" validate:"required_if=TitleStyle template"`

	NewsDir  string   `koanf:"news_dir" yaml:"news_dir" validate:"required"`
	Template string   `koanf:"template" yaml:"template"`
	Ignore   []string `koanf:"ignore" yaml:"ignore"`

	Placeholders []string `koanf:"placeholders" yaml:"placeholders"`
	NoneMarkers  []string `koanf:"none_markers" yaml:"none_markers"`

	// AuthorsTitle enables a contributors section under this category name.
	AuthorsTitle string `koanf:"authors_title" yaml:"authors_title"`
	// ReleaseDate pins the release date (YYYY-MM-DD); empty means today.
	ReleaseDate string `koanf:"release_date" yaml:"release_date" validate:"omitempty,datetime=2006-01-02"`

	StateDir string `koanf:"state_dir" yaml:"state_dir"`
	// MaxHistoryEntries sets the maximum number of merge history entries to retain.
	// Oldest entries are pruned when this limit is exceeded.
	// Default: 500. Can be set via NEWSMERGE_MAX_HISTORY_ENTRIES env var.
	MaxHistoryEntries int `koanf:"max_history_entries" yaml:"max_history_entries" validate:"min=0"`

	// Commit records the merge as a git commit.
	Commit        bool   `koanf:"commit" yaml:"commit"`
	CommitMessage string `koanf:"commit_message" yaml:"commit_message" validate:"required_if=Commit true"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .newsmerge/config.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
//
// YAML config paths:
//   - User config: ~/.config/newsmerge/config.yml (XDG compliant)
//   - Project config: .newsmerge/config.yml
//
// Legacy JSON config paths (deprecated, triggers migration warning):
//   - User config: ~/.newsmerge/config.json
//   - Project config: .newsmerge/config.json
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads user-level config (YAML preferred, legacy JSON supported).
// Warns if both exist (YAML used, JSON ignored) or if only legacy JSON exists.
func loadUserConfig(k *koanf.Koanf, warningWriter io.Writer, skipWarnings bool) error {
	userYAMLPath, _ := UserConfigPath()
	legacyUserPath, _ := LegacyUserConfigPath()

	userYAMLExists := fileExists(userYAMLPath)
	legacyUserExists := fileExists(legacyUserPath)

	if userYAMLExists {
		if err := loadYAMLConfig(k, userYAMLPath, "user"); err != nil {
			return fmt.Errorf("loading user YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyUserPath, userYAMLPath, legacyUserExists, skipWarnings, "--user")
	} else if legacyUserExists {
		if err := loadLegacyJSONConfig(k, legacyUserPath, "user", warningWriter, skipWarnings, "--user"); err != nil {
			return fmt.Errorf("loading legacy user JSON config: %w", err)
		}
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// Same priority/warning logic as loadUserConfig.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	projectYAMLPath := ProjectConfigPath()
	if customPath != "" {
		projectYAMLPath = customPath
	}
	legacyProjectPath := LegacyProjectConfigPath()

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := fileExists(legacyProjectPath)

	if customPath != "" && !projectYAMLExists {
		return fmt.Errorf("config file %s does not exist", customPath)
	}

	if projectYAMLExists {
		if err := loadYAMLConfig(k, projectYAMLPath, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyProjectPath, projectYAMLPath, legacyProjectExists, skipWarnings, "--project")
	} else if legacyProjectExists {
		if err := loadLegacyJSONConfig(k, legacyProjectPath, "project", warningWriter, skipWarnings, "--project"); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about migration
func loadLegacyJSONConfig(k *koanf.Koanf, path, configType string, warningWriter io.Writer, skipWarnings bool, migrateFlag string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy %s config %s: %w", configType, path, err)
	}
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Run 'newsmerge config migrate %s' to migrate to YAML format.\n\n", migrateFlag)
	}
	return nil
}

// warnLegacyExists warns if legacy JSON exists alongside new YAML
func warnLegacyExists(warningWriter io.Writer, legacyPath, yamlPath string, legacyExists, skipWarnings bool, migrateFlag string) {
	if legacyExists && !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		fmt.Fprintf(warningWriter, "  Run 'newsmerge config migrate %s' to remove the legacy file.\n\n", migrateFlag)
	}
}

// loadEnvironmentConfig loads NEWSMERGE_* overrides. Values are parsed with the
// key's schema type; unknown names are skipped and a malformed value fails the load.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	var envErr error
	provider := env.ProviderWithValue(envPrefix, ".", func(name, value string) (string, interface{}) {
		key, parsed, err := envValue(name, value)
		if err != nil && envErr == nil {
			envErr = err
		}
		return key, parsed
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return envErr
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.Filename = expandHomePath(cfg.Filename)
	cfg.NewsDir = expandHomePath(cfg.NewsDir)

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// A double underscore separates nested keys.
// Example: NEWSMERGE_NEWS_DIR -> news_dir
func envTransform(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// envValue maps an environment variable to its config key and typed value.
// An empty key tells the provider to skip the variable.
// Example: NEWSMERGE_CATEGORIES="Added,Fixed" -> categories: [Added Fixed]
func envValue(name, value string) (string, interface{}, error) {
	key := envTransform(name)
	parsed, err := ValidateValue(key, value)
	if err != nil {
		var unknown ErrUnknownKey
		if errors.As(err, &unknown) {
			return "", nil, nil
		}
		return "", nil, &ValidationError{FilePath: name, Field: key, Message: err.Error()}
	}
	return key, parsed.Parsed, nil
}

// splitList splits a comma separated value, dropping empty items.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// TitleRule resolves the configured title style to a changelog.TitleRule.
func (c *Configuration) TitleRule() (changelog.TitleRule, error) {
	switch c.TitleStyle {
	case TitleStyleBold, "":
		return changelog.BoldTitle, nil
	case TitleStyleUnderline:
		return changelog.UnderlineTitle, nil
	case TitleStyleTemplate:
		rule, err := changelog.TemplateTitle(c.TitleTemplate)
		if err != nil {
			return nil, &changelog.ConfigError{Field: "title_template", Message: err.Error()}
		}
		return rule, nil
	default:
		return nil, &changelog.ConfigError{
			Field:   "title_style",
			Message: fmt.Sprintf("unknown style %q (valid options: bold, underline, template)", c.TitleStyle),
		}
	}
}

// headerVars are the extra variables available to header and commit templates.
func (c *Configuration) headerVars() map[string]string {
	return map[string]string{
		"PATTERN": c.Pattern,
		"PROJECT": c.Project,
	}
}

// Changelog converts the configuration into a validated changelog.Config.
// No file is touched; a missing anchor or empty category list is reported here.
func (c *Configuration) Changelog() (*changelog.Config, error) {
	title, err := c.TitleRule()
	if err != nil {
		return nil, err
	}

	cfg := &changelog.Config{
		Project:    c.Project,
		Filename:   c.Filename,
		Pattern:    c.Pattern,
		Header:     changelog.ExpandHeader(c.Header, c.headerVars()),
		Categories: changelog.Categories(c.Categories...),
		Title:      title,
		NewsDir:    c.NewsDir,
		Template:   c.Template,
		Ignore:     c.Ignore,
		Markers: changelog.Markers{
			Placeholders: c.Placeholders,
			None:         c.NoneMarkers,
		},
		AuthorsTitle: c.AuthorsTitle,
	}

	if err := changelog.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CommitMessageFor expands the commit message template for a release.
func (c *Configuration) CommitMessageFor(version, date string) string {
	return changelog.ExpandHeader(c.CommitMessage, c.headerVars())(version, date)
}

// HistoryPath returns the location of the merge history file.
func (c *Configuration) HistoryPath() string {
	return filepath.Join(c.StateDir, "history.yaml")
}
