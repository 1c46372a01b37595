package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/update-log/config.yml
// - macOS: ~/Library/Application Support/update-log/config.yml
// - Windows: %APPDATA%\update-log\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "update-log", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
// This is always .update-log.yml relative to the current directory.
func ProjectConfigPath() string {
	return ".update-log.yml"
}

// LegacyProjectConfigPath returns the path to the project-level JSON config file.
func LegacyProjectConfigPath() string {
	return ".update-log.json"
}
