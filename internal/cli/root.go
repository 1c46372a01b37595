// Package cli implements the update-log command line.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ariel-frischer/update-log/internal/build"
	clierrors "github.com/ariel-frischer/update-log/internal/errors"
	"github.com/spf13/cobra"
)

// rootOptions holds the flag values of one root command instance.
type rootOptions struct {
	file        string
	configPath  string
	noLock      bool
	lockTimeout time.Duration
	fromGit     bool
	repo        string
	dryRun      bool
	debug       bool
	noColor     bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "update-log <date> <commitHash> <branch> <commitMsg> <author>",
		Short: "Record a commit in the update.md changelog table",
		Long: `Record a commit in the update.md changelog table.

update-log finds the table header line

  | 日期 | 版本 | 分支 | 短哈希 | 摘要（作者） |

in update.md and inserts one row directly beneath it, so the newest commit
is always listed first. Everything else in the file is left untouched.

All five values are required. The version column is always "-".
Values are written verbatim: avoid "|" and line breaks in them.
Flags must come before the values; anything after the first value is
taken literally.

Concurrent runs are serialized with an advisory lock on update.md.lock; the
file stays in place after a run and can be added to .gitignore.`,
		Example: `  # Record a commit explicitly
  update-log 2024-01-01 abc123 main "Fix bug" Alice

  # Record the current HEAD commit (e.g. from a post-commit hook)
  update-log --from-git

  # Preview the row without touching the file
  update-log --dry-run 2024-01-01 abc123 main "Fix bug" Alice

  # Use another changelog file
  update-log -f docs/update.md 2024-01-01 abc123 main "Fix bug" Alice

  # Values after the date are taken literally, even with a leading "-"
  update-log 2024-01-01 abc123 main "-fix typo" Alice`,
		Args:          positionalArgs(opts),
		Version:       build.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppend(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	// Flags go before the values: a commit message such as "-fix typo"
	// must never be read as a flag.
	flags.SetInterspersed(false)
	flags.StringVarP(&opts.file, "file", "f", "", "Changelog file (default \"update.md\", or 'file' from config)")
	flags.StringVar(&opts.configPath, "config", "", "Project config file (default .update-log.yml)")
	flags.BoolVar(&opts.noLock, "no-lock", false, "Do not take the update.md.lock file")
	flags.DurationVar(&opts.lockTimeout, "lock-timeout", 0, "Max wait for another run's lock (default 5s, or 'lock.timeout' from config)")
	flags.BoolVar(&opts.fromGit, "from-git", false, "Read date, hash, branch, message and author from HEAD")
	flags.StringVar(&opts.repo, "repo", "", "Repository path for --from-git (default: current directory)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Print the row and its line number without writing")
	flags.BoolVar(&opts.debug, "debug", false, "Print debug logging to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newInitCmd())

	return cmd
}

// positionalArgs accepts exactly five values, or none with --from-git.
func positionalArgs(opts *rootOptions) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if opts.fromGit {
			if len(args) > 0 {
				return clierrors.InvalidFlagCombination("--from-git with positional arguments",
					"Pass either the five values or --from-git, not both")
			}
			return nil
		}
		if opts.repo != "" {
			return clierrors.InvalidFlagCombination("--repo without --from-git",
				"--repo only selects the repository read by --from-git")
		}
		switch {
		case len(args) < 5:
			return clierrors.MissingArguments(len(args))
		case len(args) > 5:
			return clierrors.TooManyArguments(len(args))
		}
		return nil
	}
}

// Execute runs the root command and prints any failure to stderr.
// Interrupts cancel a pending lock wait.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return executeCommand(ctx, rootCmd)
}

func executeCommand(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		noColor, _ := cmd.Flags().GetBool("no-color")
		printError(cmd.ErrOrStderr(), err, noColor)
	}
	return err
}

// printError renders err as a CLIError. Errors that are not CLIErrors
// (cobra flag parsing, for instance) are reported as argument errors.
func printError(w io.Writer, err error, noColor bool) {
	cliErr := clierrors.AsCLIError(err)
	if cliErr == nil {
		cliErr = clierrors.NewArgumentErrorWithUsage(err.Error(), clierrors.Usage,
			"Run 'update-log --help' for all options")
	}
	clierrors.Fprint(w, cliErr, useColor(w, noColor))
}
