package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MigrationResult describes the outcome of a migration operation
type MigrationResult struct {
	SourcePath string
	TargetPath string
	Success    bool
	DryRun     bool
	Message    string
	// Skipped lists JSON keys that are not newsmerge settings and were left out.
	Skipped []string
}

// MigrateJSONToYAML converts a JSON config file to YAML format.
//
// An existing YAML file is never overwritten. Keys unknown to newsmerge are
// dropped and reported in Skipped; dry-run mode reports without writing.
func MigrateJSONToYAML(jsonPath, yamlPath string, dryRun bool) (*MigrationResult, error) {
	result := &MigrationResult{
		SourcePath: jsonPath,
		TargetPath: yamlPath,
		DryRun:     dryRun,
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Message = fmt.Sprintf("No JSON config found at %s", jsonPath)
			return result, nil
		}
		return nil, fmt.Errorf("failed to read JSON config: %w", err)
	}

	var configData map[string]interface{}
	if err := json.Unmarshal(jsonData, &configData); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	configData, result.Skipped = knownSettings(configData)

	if _, err := os.Stat(yamlPath); err == nil {
		result.Message = fmt.Sprintf("YAML config already exists at %s (skipped)", yamlPath)
		return result, nil
	}

	if dryRun {
		result.Success = true
		result.Message = fmt.Sprintf("Would migrate %s → %s%s", jsonPath, yamlPath, skippedNote(result.Skipped))
		return result, nil
	}

	yamlData, err := yaml.Marshal(configData)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(yamlPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# Newsmerge Configuration\n# Migrated from JSON format\n\n"
	if err := os.WriteFile(yamlPath, []byte(header+string(yamlData)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write YAML config: %w", err)
	}

	result.Success = true
	result.Message = fmt.Sprintf("Migrated %s → %s%s", jsonPath, yamlPath, skippedNote(result.Skipped))
	return result, nil
}

// knownSettings splits data into known configuration keys and the sorted names of the rest.
func knownSettings(data map[string]interface{}) (map[string]interface{}, []string) {
	known := make(map[string]interface{}, len(data))
	var skipped []string
	for k, v := range data {
		if _, err := GetKeySchema(k); err != nil {
			skipped = append(skipped, k)
			continue
		}
		known[k] = v
	}
	sort.Strings(skipped)
	return known, skipped
}

func skippedNote(skipped []string) string {
	if len(skipped) == 0 {
		return ""
	}
	return fmt.Sprintf(" (skipped unknown keys: %s)", strings.Join(skipped, ", "))
}

// MigrateUserConfig migrates the user-level config from JSON to YAML.
func MigrateUserConfig(dryRun bool) (*MigrationResult, error) {
	jsonPath, err := LegacyUserConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get legacy user config path: %w", err)
	}

	yamlPath, err := UserConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config path: %w", err)
	}

	return MigrateJSONToYAML(jsonPath, yamlPath, dryRun)
}

// MigrateProjectConfig migrates the project-level config from JSON to YAML.
func MigrateProjectConfig(dryRun bool) (*MigrationResult, error) {
	jsonPath := LegacyProjectConfigPath()
	yamlPath := ProjectConfigPath()

	return MigrateJSONToYAML(jsonPath, yamlPath, dryRun)
}

// RemoveLegacyConfig renames a migrated JSON config to <path>.bak.
// A missing file is not an error.
func RemoveLegacyConfig(jsonPath string, dryRun bool) error {
	if dryRun {
		return nil
	}

	if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
		return nil // Already removed or never existed
	}

	bakPath := jsonPath + ".bak"
	if err := os.Rename(jsonPath, bakPath); err != nil {
		return fmt.Errorf("failed to backup legacy config: %w", err)
	}

	return nil
}
