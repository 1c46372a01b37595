package cli

import (
	"errors"

	"github.com/ariel-frischer/update-log/internal/changelog"
	"github.com/ariel-frischer/update-log/internal/config"
	clierrors "github.com/ariel-frischer/update-log/internal/errors"
	"github.com/ariel-frischer/update-log/internal/git"
	"github.com/spf13/cobra"
)

// runAppend records one commit: load config, build the entry, splice it
// into the changelog, then echo the result.
func runAppend(cmd *cobra.Command, opts *rootOptions, args []string) error {
	if opts.debug {
		logger := debugWriter(cmd.ErrOrStderr())
		changelog.SetDebugLogger(logger)
		git.SetDebugLogger(logger)
		defer changelog.SetDebugLogger(nil)
		defer git.SetDebugLogger(nil)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	entry, err := buildEntry(opts, cfg, args)
	if err != nil {
		return err
	}

	lockOpts := cfg.LockOptions()
	if lockOpts != nil {
		if indicator := newLockWaitIndicator(cmd.ErrOrStderr()); indicator != nil {
			lockOpts.OnWait = indicator.start
			defer indicator.stop()
		}
	}

	appender := &changelog.Appender{
		Path:   cfg.File,
		Marker: cfg.Marker,
		Lock:   lockOpts,
		DryRun: opts.dryRun,
	}

	result, err := appender.Append(cmd.Context(), entry)
	if err != nil {
		return toCLIError(err, cfg)
	}

	colored := useColor(cmd.OutOrStdout(), opts.noColor)
	if !result.Written {
		printPreview(cmd.OutOrStdout(), result, colored)
		return nil
	}
	printSuccess(cmd.OutOrStdout(), entry, colored)
	return nil
}

// loadConfig loads layered configuration and applies flag overrides.
// Flags win over every config source.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Configuration, error) {
	cfg, err := config.Load(config.LoadOptions{
		ProjectConfigPath: opts.configPath,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.ConfigParseError(err)
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.File = opts.file
	}
	if opts.noLock {
		cfg.Lock.Enabled = false
	}
	if flags.Changed("lock-timeout") {
		if opts.lockTimeout < 0 {
			return nil, clierrors.NewArgumentError("--lock-timeout must not be negative")
		}
		cfg.Lock.Timeout = opts.lockTimeout
	}
	if cfg.File == "" {
		return nil, clierrors.NewConfigError("changelog path must not be empty",
			"Pass a path with --file, or drop the flag to use "+changelog.DefaultPath,
			"Check the file key in .update-log.yml and UPDATE_LOG_FILE")
	}

	return cfg, nil
}

// buildEntry takes the five values from the arguments or, with --from-git,
// from the HEAD commit.
func buildEntry(opts *rootOptions, cfg *config.Configuration, args []string) (changelog.Entry, error) {
	var entry changelog.Entry
	if opts.fromGit {
		info, err := git.HeadCommit(opts.repo, git.HeadOptions{
			DateFormat: cfg.Git.DateFormat,
			HashLength: cfg.Git.HashLength,
		})
		if err != nil {
			return entry, clierrors.GitNotRepository(err)
		}
		entry = changelog.NewEntry(info.Date, info.ShortHash, info.Branch, info.Subject, info.Author)
	} else {
		entry = changelog.NewEntry(args[0], args[1], args[2], args[3], args[4])
	}

	if err := entry.Validate(); err != nil {
		var missing *changelog.MissingFieldError
		if errors.As(err, &missing) {
			return entry, clierrors.EmptyArgument(missing.Field)
		}
		return entry, clierrors.Wrap(err, clierrors.Argument)
	}
	return entry, nil
}

// toCLIError maps appender failures onto the CLI error taxonomy.
func toCLIError(err error, cfg *config.Configuration) error {
	var (
		missing  *changelog.MissingFieldError
		readErr  *changelog.ReadError
		writeErr *changelog.WriteError
		lockErr  *changelog.LockError
	)

	switch {
	case errors.As(err, &missing):
		return clierrors.EmptyArgument(missing.Field)
	case errors.As(err, &readErr):
		return clierrors.ChangelogNotReadable(readErr.Path, readErr.Err)
	case errors.Is(err, changelog.ErrMarkerNotFound):
		return clierrors.HeaderNotFound(cfg.File, cfg.Marker)
	case errors.As(err, &lockErr):
		return clierrors.ChangelogLocked(lockErr.Path, err)
	case errors.As(err, &writeErr):
		return clierrors.ChangelogNotWritable(writeErr.Path, writeErr.Err)
	default:
		return clierrors.Wrap(err, clierrors.FileWrite)
	}
}
