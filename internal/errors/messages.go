package errors

import "fmt"

// Common error messages for the update-log CLI.
// These templates ensure consistent, actionable error messages.

// Usage is the command synopsis shown with argument errors.
const Usage = "update-log <日期> <提交哈希> <分支> <提交信息> <作者>"

// MissingArguments creates an error for fewer than five positional arguments.
func MissingArguments(got int) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("缺少必要参数 (expected 5 arguments, got %d)", got),
		Usage,
		"Pass all five values in order: date, commit hash, branch, message, author",
		"Quote values that contain spaces: update-log 2024-01-01 abc123 main \"Fix bug\" Alice",
		"Or read them from the current commit: update-log --from-git",
	)
}

// TooManyArguments creates an error for more than five positional arguments.
func TooManyArguments(got int) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("too many arguments (expected 5, got %d)", got),
		Usage,
		"Quote the commit message if it contains spaces",
	)
}

// EmptyArgument creates an error for a positional argument that is an empty string.
func EmptyArgument(name string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("缺少必要参数: %s is empty", name),
		Usage,
		"Every value must be non-empty",
	)
}

// ChangelogNotReadable creates an error for a changelog that cannot be read.
func ChangelogNotReadable(path string, err error) *CLIError {
	return WrapWithMessage(err, FileRead,
		fmt.Sprintf("更新日志失败: cannot read %s", path),
		"Check that "+path+" exists in the current directory",
		"Check file permissions: ls -la "+path,
		"The file must be UTF-8 encoded",
	)
}

// HeaderNotFound creates an error for a changelog without the table header.
func HeaderNotFound(path, marker string) *CLIError {
	return New(MarkerNotFound,
		fmt.Sprintf("未找到提交记录表格 in %s", path),
		"Add the table header line to "+path+": "+marker,
		"Follow it with a separator line: |---|---|---|---|---|",
	)
}

// ChangelogNotWritable creates an error when the rewritten changelog cannot be saved.
func ChangelogNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, FileWrite,
		fmt.Sprintf("更新日志失败: cannot write %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure the directory containing the file is writable",
	)
}

// ChangelogLocked creates an error when another process holds the changelog lock.
func ChangelogLocked(lockPath string, err error) *CLIError {
	return WrapWithMessage(err, Lock,
		"changelog is being updated by another process",
		"Retry once the other update-log process finishes",
		"The lock on "+lockPath+" is freed as soon as its holder exits; do not delete the file",
		"Raise the wait with --lock-timeout or UPDATE_LOG_LOCK__TIMEOUT",
	)
}

// ConfigParseError creates an error for invalid config file format.
func ConfigParseError(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load configuration",
		"Check .update-log.yml for YAML syntax errors",
		"Check UPDATE_LOG_* environment variables",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'update-log --help' to see valid options",
	)
}

// GitNotRepository creates an error when --from-git cannot open a repository.
func GitNotRepository(err error) *CLIError {
	return WrapWithMessage(err, Repository,
		"cannot read commit details from git",
		"Run inside a git repository or pass --repo <path>",
		"Make sure the repository has at least one commit",
		"Or pass the five values explicitly: "+Usage,
	)
}
