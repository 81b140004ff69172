package changelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrFragmentExists is returned when a new fragment would overwrite a file.
var ErrFragmentExists = errors.New("fragment already exists")

// TemplateContent renders the scaffold fragment: every category header
// followed by the first placeholder marker.
func TemplateContent(cfg *Config) string {
	placeholder := "<news item>"
	if len(cfg.Markers.Placeholders) > 0 {
		placeholder = cfg.Markers.Placeholders[0]
	}

	sections := make([]string, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		title := strings.TrimRight(cfg.Title(cat.Name), "\n")
		sections = append(sections, title+"\n\n* "+placeholder+"\n")
	}
	return strings.Join(sections, "\n")
}

// ChangelogSkeleton renders a new changelog document holding a title and the anchor.
func ChangelogSkeleton(cfg *Config) string {
	title := "Change Log"
	if cfg.Project != "" {
		title = cfg.Project + " Change Log"
	}
	rule := strings.Repeat("=", utf8.RuneCountInString(title))
	return rule + "\n" + title + "\n" + rule + "\n\n" + cfg.Pattern + "\n"
}

// Setup scaffolds the news directory, its template file and the changelog.
// Existing files are left untouched. It returns the paths it created.
func Setup(cfg *Config) ([]string, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	var created []string

	if err := os.MkdirAll(cfg.NewsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating news directory: %w", err)
	}

	if cfg.Template != "" {
		tmplPath := filepath.Join(cfg.NewsDir, cfg.Template)
		ok, err := writeIfMissing(tmplPath, TemplateContent(cfg))
		if err != nil {
			return created, fmt.Errorf("writing template: %w", err)
		}
		if ok {
			created = append(created, tmplPath)
		}
	}

	ok, err := writeIfMissing(cfg.Filename, ChangelogSkeleton(cfg))
	if err != nil {
		return created, fmt.Errorf("writing changelog: %w", err)
	}
	if ok {
		created = append(created, cfg.Filename)
	}

	return created, nil
}

// NewFragment creates NewsDir/name from the template file, or from the
// generated template content when the template file is missing.
func NewFragment(cfg *Config, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid fragment name %q", name)
	}
	if cfg.IsIgnored(name) {
		return "", fmt.Errorf("fragment name %q is reserved", name)
	}

	content := TemplateContent(cfg)
	if cfg.Template != "" {
		data, err := os.ReadFile(filepath.Join(cfg.NewsDir, cfg.Template))
		if err == nil {
			content = string(data)
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading template: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.NewsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating news directory: %w", err)
	}

	path := filepath.Join(cfg.NewsDir, name)
	ok, err := writeIfMissing(path, content)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFragmentExists, path)
	}
	return path, nil
}

// writeIfMissing creates path with content unless it already exists.
func writeIfMissing(path, content string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return false, err
	}
	return true, f.Close()
}
