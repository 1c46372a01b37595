// Package config provides hierarchical configuration management for update-log using koanf.
// Configuration is loaded with priority: environment variables > project config (.update-log.yml)
// > user config (~/.config/update-log/config.yml) > defaults. A project-level .update-log.json
// is still read when no YAML project config exists.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/update-log/internal/changelog"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration.
// Nested keys use a double underscore: UPDATE_LOG_LOCK__TIMEOUT -> lock.timeout.
const EnvPrefix = "UPDATE_LOG_"

// Configuration represents the update-log configuration
type Configuration struct {
	// File is the changelog path, relative to the working directory.
	// Can be set via UPDATE_LOG_FILE env var or --file.
	File string `koanf:"file" validate:"required"`

	// Marker is the table header line rows are inserted under.
	Marker string `koanf:"marker" validate:"required"`

	// Lock guards concurrent invocations against lost updates.
	Lock LockConfig `koanf:"lock"`

	// Git configures how --from-git renders commit details.
	Git GitConfig `koanf:"git"`
}

// LockConfig configures the changelog lock file.
type LockConfig struct {
	Enabled bool          `koanf:"enabled"`
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
}

// GitConfig configures commit inspection for --from-git.
type GitConfig struct {
	// DateFormat is a Go time layout applied to the committer date.
	DateFormat string `koanf:"date_format" validate:"required"`
	// HashLength is the number of hex digits kept from the commit hash.
	HashLength int `koanf:"hash_length" validate:"min=4,max=40"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .update-log.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipUserConfig ignores the user-level config file
	SkipUserConfig bool
}

// Load loads configuration from defaults, user, project, and environment
// sources. Priority: Environment variables > Project config > User config > Defaults
func Load(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter); err != nil {
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

// loadUserConfig loads ~/.config/update-log/config.yml when present.
func loadUserConfig(k *koanf.Koanf) error {
	userPath, err := UserConfigPath()
	if err != nil || !fileExists(userPath) {
		return nil
	}
	if err := loadYAMLConfig(k, userPath, "user"); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// A custom path is always loaded as YAML and must exist.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer) error {
	if customPath != "" {
		if !fileExists(customPath) {
			return fmt.Errorf("config file not found: %s", customPath)
		}
		if err := loadYAMLConfig(k, customPath, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		return nil
	}

	projectYAMLPath := ProjectConfigPath()
	legacyProjectPath := LegacyProjectConfigPath()

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := fileExists(legacyProjectPath)

	if projectYAMLExists {
		if err := loadYAMLConfig(k, projectYAMLPath, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		if legacyProjectExists {
			fmt.Fprintf(warningWriter, "Warning: %s found alongside %s (ignored)\n\n", legacyProjectPath, projectYAMLPath)
		}
	} else if legacyProjectExists {
		if err := k.Load(file.Provider(legacyProjectPath), json.Parser()); err != nil {
			return fmt.Errorf("failed to load legacy project config %s: %w", legacyProjectPath, err)
		}
		fmt.Fprintf(warningWriter, "Warning: Using JSON config at %s\n", legacyProjectPath)
		fmt.Fprintf(warningWriter, "  Rename it to %s and convert to YAML.\n\n", projectYAMLPath)
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

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
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

	cfg.File = expandHomePath(cfg.File)

	return &cfg, nil
}

// LockOptions converts the lock settings for the changelog appender.
// Returns nil when locking is disabled.
func (c *Configuration) LockOptions() *changelog.LockOptions {
	if !c.Lock.Enabled {
		return nil
	}
	opts := changelog.DefaultLockOptions()
	opts.Timeout = c.Lock.Timeout
	return &opts
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: UPDATE_LOG_GIT__HASH_LENGTH -> git.hash_length
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
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
