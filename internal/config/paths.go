package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/newsmerge/config.yml
// - macOS: ~/Library/Application Support/newsmerge/config.yml
// - Windows: %APPDATA%\newsmerge\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "newsmerge"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
// This is always .newsmerge/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.yml")
}

// ProjectConfigDir returns the path to the project-level config directory.
func ProjectConfigDir() string {
	return ".newsmerge"
}

// LegacyUserConfigPath returns the path to the legacy user-level JSON config file.
// This was the old location: ~/.newsmerge/config.json
func LegacyUserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".newsmerge", "config.json"), nil
}

// LegacyProjectConfigPath returns the path to the legacy project-level JSON config file.
// This was the old location: .newsmerge/config.json
func LegacyProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.json")
}
