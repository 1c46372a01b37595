package config

import (
	"github.com/ariel-frischer/update-log/internal/changelog"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# update-log configuration (.update-log.yml)

file: update.md                       # Changelog file, relative to the working directory
marker: "` + changelog.Marker + `"

# Advisory lock guarding concurrent runs (update.md.lock, freed when a run exits)
lock:
  enabled: true                       # Set false to allow unguarded concurrent writes
  timeout: 5s                         # Max wait for another run to finish (0 = fail at once)

# --from-git settings
git:
  date_format: "2006-01-02"           # Go time layout for the commit date
  hash_length: 7                      # Short hash length (4-40)
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"file":   changelog.DefaultPath,
		"marker": changelog.Marker,
		"lock": map[string]interface{}{
			"enabled": true,
			"timeout": changelog.DefaultLockTimeout.String(),
		},
		"git": map[string]interface{}{
			"date_format": "2006-01-02",
			"hash_length": 7,
		},
	}
}
