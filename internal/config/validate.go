package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError represents a configuration validation error with context
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ValidateYAMLSyntax checks that a config file parses as YAML and only sets
// newsmerge settings. Unknown top-level keys are rejected with their position
// so a typo such as "newsdir" does not silently fall back to the default.
// A missing or blank file is valid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		if os.IsPermission(err) {
			return &ValidationError{FilePath: filePath, Message: "permission denied"}
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		line, column := extractLineColumn(err.Error())
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  yamlReason(err.Error()),
		}
	}

	return checkSettingKeys(filePath, &doc)
}

// checkSettingKeys walks the top-level mapping of a parsed config document.
func checkSettingKeys(filePath string, doc *yaml.Node) error {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ValidationError{
			FilePath: filePath,
			Line:     root.Line,
			Column:   root.Column,
			Message:  "expected a mapping of newsmerge settings such as 'news_dir: news'",
		}
	}

	for i := 0; i < len(root.Content); i += 2 {
		key := root.Content[i]
		if _, ok := KnownKeys[key.Value]; ok {
			continue
		}
		msg := fmt.Sprintf("unknown setting %q", key.Value)
		if hint := closestSetting(key.Value); hint != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", hint)
		}
		return &ValidationError{
			FilePath: filePath,
			Line:     key.Line,
			Column:   key.Column,
			Field:    key.Value,
			Message:  msg,
		}
	}
	return nil
}

// closestSetting matches keys that differ from a known setting only in case,
// dashes or missing underscores ("News-Dir", "newsdir" -> "news_dir").
func closestSetting(key string) string {
	squash := func(s string) string {
		s = strings.ToLower(s)
		return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
	}
	want := squash(key)
	for _, known := range SortedKeys() {
		if squash(known) == want {
			return known
		}
	}
	return ""
}

// settingsValidator reports field errors under their YAML setting names.
var settingsValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// ValidateConfigValues checks the merged configuration against the struct
// tags on Configuration. The first failing setting is returned.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	if err := settingsValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{
				FilePath: filePath,
				Field:    fieldErrs[0].Field(),
				Message:  describeFieldError(fieldErrs[0]),
			}
		}
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	if strings.TrimSpace(cfg.Pattern) != cfg.Pattern {
		return &ValidationError{
			FilePath: filePath,
			Field:    "pattern",
			Message:  "must not start or end with whitespace, the anchor line is matched after trimming",
		}
	}

	return nil
}

// extractLineColumn reads the position out of a yaml.v3 error such as
// "yaml: line 5: could not find expected ':'". Returns 0, 0 if there is none.
func extractLineColumn(errMsg string) (line, column int) {
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// yamlReason drops the "yaml: line N:" prefix, leaving the parser's complaint.
func yamlReason(errMsg string) string {
	if !strings.HasPrefix(errMsg, "yaml:") {
		return errMsg
	}
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 {
		return errMsg[idx+2:]
	}
	return strings.TrimSpace(strings.TrimPrefix(errMsg, "yaml:"))
}

// describeFieldError phrases a validator failure in terms of settings.
func describeFieldError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "must be set"
	case "min":
		if fieldErr.Kind() == reflect.Slice {
			return fmt.Sprintf("needs at least %s entries", fieldErr.Param())
		}
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fieldErr.Param(), " ", ", "))
	case "required_if":
		field, value, _ := strings.Cut(fieldErr.Param(), " ")
		return fmt.Sprintf("must be set when %s is %s", settingName(field), value)
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("failed the %q check", fieldErr.Tag())
	}
}

// settingName maps a Configuration field name to its YAML setting.
func settingName(field string) string {
	f, ok := reflect.TypeOf(Configuration{}).FieldByName(field)
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	return name
}
