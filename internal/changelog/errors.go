package changelog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAnchorNotFound is returned when the changelog document lacks the anchor pattern.
var ErrAnchorNotFound = errors.New("anchor pattern not found")

// ConfigError represents an invalid merge configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid changelog config: %s: %s", e.Field, e.Message)
	}
	return "invalid changelog config: " + e.Message
}

// MalformedChangelogError reports a changelog document that cannot be spliced.
type MalformedChangelogError struct {
	Path   string
	Anchor string
	Err    error
}

func (e *MalformedChangelogError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed changelog %s: %v: %q", e.Path, e.Err, e.Anchor)
	}
	return fmt.Sprintf("malformed changelog: %v: %q", e.Err, e.Anchor)
}

func (e *MalformedChangelogError) Unwrap() error {
	return e.Err
}

// SweepError is a non-fatal failure to delete one consumed fragment.
type SweepError struct {
	Path string
	Err  error
}

func (e *SweepError) Error() string {
	return fmt.Sprintf("removing fragment %s: %v", e.Path, e.Err)
}

func (e *SweepError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsMalformedChangelog returns true if err is or wraps a MalformedChangelogError.
func IsMalformedChangelog(err error) bool {
	var me *MalformedChangelogError
	return errors.As(err, &me)
}

// Validate checks that a Config is complete enough to run a merge.
// It performs no I/O.
func Validate(c *Config) error {
	if c == nil {
		return &ConfigError{Message: "config is nil"}
	}
	if c.Filename == "" {
		return &ConfigError{Field: "filename", Message: "required field is empty"}
	}
	if c.Pattern == "" {
		return &ConfigError{Field: "pattern", Message: "required field is empty"}
	}
	if c.Header == nil {
		return &ConfigError{Field: "header", Message: "header template is not set"}
	}
	// A header without the anchor in front would put each new entry below the previous one.
	if h := c.Header("0.0.0", "2000-01-01"); !strings.HasPrefix(h, c.Pattern) {
		return &ConfigError{
			Field:   "header",
			Message: fmt.Sprintf("must start with the anchor %q (use $PATTERN)", c.Pattern),
		}
	}
	if c.Title == nil {
		return &ConfigError{Field: "title", Message: "title rule is not set"}
	}
	if c.NewsDir == "" {
		return &ConfigError{Field: "news_dir", Message: "required field is empty"}
	}
	if len(c.Categories) == 0 {
		return &ConfigError{Field: "categories", Message: "at least one category is required"}
	}

	seenNames := make(map[string]bool, len(c.Categories))
	seenOrder := make(map[int]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return &ConfigError{
				Field:   fmt.Sprintf("categories[%d]", i),
				Message: "category name cannot be empty",
			}
		}
		if seenNames[cat.Name] {
			return &ConfigError{
				Field:   fmt.Sprintf("categories[%d]", i),
				Message: fmt.Sprintf("duplicate category %q", cat.Name),
			}
		}
		if seenOrder[cat.Order] {
			return &ConfigError{
				Field:   fmt.Sprintf("categories[%d].order", i),
				Message: fmt.Sprintf("duplicate order %d", cat.Order),
			}
		}
		if i > 0 && cat.Order < c.Categories[i-1].Order {
			return &ConfigError{
				Field:   fmt.Sprintf("categories[%d].order", i),
				Message: "categories must be listed in ascending order",
			}
		}
		seenNames[cat.Name] = true
		seenOrder[cat.Order] = true
	}

	return nil
}
