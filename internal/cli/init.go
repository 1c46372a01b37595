package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/update-log/internal/config"
	clierrors "github.com/ariel-frischer/update-log/internal/errors"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .update-log.yml and an empty update.md table",
		Long: `Create the files update-log works with.

This command:
  1. Writes a commented .update-log.yml with every option at its default
  2. Creates update.md with the table header and separator, unless it exists

An existing update.md is never modified. An existing .update-log.yml is kept
unless --force is given.`,
		Example: `  update-log init
  update-log init --force`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .update-log.yml")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	out := cmd.OutOrStdout()

	configPath := config.ProjectConfigPath()
	switch _, err := os.Stat(configPath); {
	case err == nil && !force:
		fmt.Fprintf(out, "✓ Config: %s already exists (use --force to overwrite)\n", configPath)
	default:
		if err := os.WriteFile(configPath, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.FileWrite,
				fmt.Sprintf("cannot write %s", configPath),
				"Check that the current directory is writable")
		}
		fmt.Fprintf(out, "✓ Config: wrote %s\n", configPath)
	}

	cfg, err := config.Load(config.LoadOptions{WarningWriter: cmd.ErrOrStderr()})
	if err != nil {
		return clierrors.ConfigParseError(err)
	}

	if _, err := os.Stat(cfg.File); err == nil {
		fmt.Fprintf(out, "✓ Changelog: %s already exists\n", cfg.File)
		return nil
	}

	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return clierrors.ChangelogNotWritable(cfg.File, err)
		}
	}
	skeleton := "# 更新日志\n\n" + cfg.Marker + "\n" + tableSeparator(cfg.Marker) + "\n"
	if err := os.WriteFile(cfg.File, []byte(skeleton), 0o644); err != nil {
		return clierrors.ChangelogNotWritable(cfg.File, err)
	}
	fmt.Fprintf(out, "✓ Changelog: created %s\n", cfg.File)
	return nil
}

// tableSeparator returns a separator row with one cell per header column.
func tableSeparator(marker string) string {
	cols := strings.Count(marker, "|") - 1
	if cols < 1 {
		cols = 1
	}
	return "|" + strings.Repeat("---|", cols)
}
