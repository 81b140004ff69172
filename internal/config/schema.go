package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeString
	TypeEnum
	TypeList
	TypeDate
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	case TypeDate:
		return "date"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Key name (e.g., "news_dir")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"project": {
		Path:        "project",
		Type:        TypeString,
		Description: "Project name, available as $PROJECT",
	},
	"filename": {
		Path:        "filename",
		Type:        TypeString,
		Description: "Running changelog file",
	},
	"pattern": {
		Path:        "pattern",
		Type:        TypeString,
		Description: "Anchor text new entries are inserted above",
	},
	"header": {
		Path:        "header",
		Type:        TypeString,
		Description: "Entry header ($VERSION, $RELEASE_DATE, $PATTERN, $PROJECT)",
	},
	"categories": {
		Path:        "categories",
		Type:        TypeList,
		Description: "Categories in rendering order (comma separated in env)",
	},
	"title_style": {
		Path:          "title_style",
		Type:          TypeEnum,
		AllowedValues: []string{TitleStyleBold, TitleStyleUnderline, TitleStyleTemplate},
		Description:   "How category titles are written",
	},
	"title_template": {
		Path:        "title_template",
		Type:        TypeString,
		Description: "Go template for titles when title_style is template",
	},
	"news_dir": {
		Path:        "news_dir",
		Type:        TypeString,
		Description: "Directory holding news fragments",
	},
	"template": {
		Path:        "template",
		Type:        TypeString,
		Description: "Scaffold fragment filename inside news_dir",
	},
	"ignore": {
		Path:        "ignore",
		Type:        TypeList,
		Description: "Filenames or globs in news_dir that are not fragments",
	},
	"placeholders": {
		Path:        "placeholders",
		Type:        TypeList,
		Description: "Placeholder lines dropped from sections",
	},
	"none_markers": {
		Path:        "none_markers",
		Type:        TypeList,
		Description: "Explicit nothing-to-report markers",
	},
	"authors_title": {
		Path:        "authors_title",
		Type:        TypeString,
		Description: "Title of the contributors section (empty disables it)",
	},
	"release_date": {
		Path:        "release_date",
		Type:        TypeDate,
		Description: "Pinned release date, YYYY-MM-DD",
	},
	"state_dir": {
		Path:        "state_dir",
		Type:        TypeString,
		Description: "Directory for the merge history",
	},
	"max_history_entries": {
		Path:        "max_history_entries",
		Type:        TypeInt,
		Description: "Maximum merge history entries to retain",
	},
	"commit": {
		Path:        "commit",
		Type:        TypeBool,
		Description: "Commit the changelog and removed fragments after a merge",
	},
	"commit_message": {
		Path:        "commit_message",
		Type:        TypeString,
		Description: "Commit message template ($VERSION, $RELEASE_DATE, $PROJECT)",
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// SortedKeys returns the known key names in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParsedValue represents a configuration value after validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeInt:
		return parseIntValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeList:
		return ParsedValue{Raw: value, Parsed: splitList(value), Type: TypeList}, nil
	case TypeDate:
		return parseDateValue(value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseIntValue parses and validates an integer value.
func parseIntValue(value string) (ParsedValue, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
	}
	return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
}

// parseDateValue accepts an empty value or a YYYY-MM-DD date.
func parseDateValue(value string) (ParsedValue, error) {
	if _, err := time.Parse("2006-01-02", value); value != "" && err != nil {
		return ParsedValue{}, fmt.Errorf("invalid date: %q (expected YYYY-MM-DD)", value)
	}
	return ParsedValue{Raw: value, Parsed: value, Type: TypeDate}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
