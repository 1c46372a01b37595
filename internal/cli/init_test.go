package cli

import (
	"testing"

	"github.com/ariel-frischer/update-log/internal/changelog"
	"github.com/ariel-frischer/update-log/internal/config"
	"github.com/ariel-frischer/update-log/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_CreatesFiles(t *testing.T) {
	setupWorkDir(t)

	stdout, _, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Config: wrote .update-log.yml")
	assert.Contains(t, stdout, "✓ Changelog: created update.md")

	assert.Equal(t, config.GetDefaultConfigTemplate(), readWorkFile(t, ".update-log.yml"))
	assert.Equal(t, testutil.ChangelogContent(), readWorkFile(t, "update.md"))

	// The created changelog accepts a row straight away.
	_, _, err = runCLI(t, "2024-01-01", "abc123", "main", "Fix bug", "Alice")
	require.NoError(t, err)
	assert.Equal(t, testutil.ChangelogContent(fixBugRow), readWorkFile(t, "update.md"))
}

func TestInit_KeepsExistingFiles(t *testing.T) {
	dir := setupWorkDir(t)
	existing := testutil.ChangelogContent(fixBugRow)
	testutil.WriteFile(t, dir, "update.md", existing)
	testutil.WriteFile(t, dir, ".update-log.yml", "file: update.md\n")

	stdout, _, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists (use --force to overwrite)")
	assert.Contains(t, stdout, "✓ Changelog: update.md already exists")

	assert.Equal(t, "file: update.md\n", readWorkFile(t, ".update-log.yml"))
	assert.Equal(t, existing, readWorkFile(t, "update.md"))
}

func TestInit_Force(t *testing.T) {
	dir := setupWorkDir(t)
	existing := testutil.ChangelogContent(fixBugRow)
	testutil.WriteFile(t, dir, "update.md", existing)
	testutil.WriteFile(t, dir, ".update-log.yml", "file: update.md\n")

	_, _, err := runCLI(t, "init", "--force")
	require.NoError(t, err)

	assert.Equal(t, config.GetDefaultConfigTemplate(), readWorkFile(t, ".update-log.yml"))
	assert.Equal(t, existing, readWorkFile(t, "update.md"), "changelog is never overwritten")
}

func TestInit_ConfiguredPath(t *testing.T) {
	t.Setenv("UPDATE_LOG_FILE", "docs/changes.md")
	setupWorkDir(t)

	stdout, _, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "created docs/changes.md")
	assert.Equal(t, testutil.ChangelogContent(), readWorkFile(t, "docs/changes.md"))
}

func TestInit_RejectsArguments(t *testing.T) {
	setupWorkDir(t)

	_, stderr, err := runCLI(t, "init", "extra")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, stderr, "❌ Error [Argument Error]")
}

func TestTableSeparator(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		marker string
		want   string
	}{
		"default header": {marker: changelog.Marker, want: testutil.Separator},
		"two columns":    {marker: "| a | b |", want: "|---|---|"},
		"no pipes":       {marker: "Commits", want: "|---|"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tableSeparator(tt.marker))
		})
	}
}
