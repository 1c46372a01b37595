package cli

// Exit codes for the update-log CLI.
// Commit hooks and CI scripts only distinguish success from failure.
const (
	// ExitSuccess indicates the row was inserted (or previewed with --dry-run)
	ExitSuccess = 0

	// ExitFailure indicates any argument, configuration, lock, or I/O failure
	ExitFailure = 1
)

// ExitCode maps the error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFailure
}
