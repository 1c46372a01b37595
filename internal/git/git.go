// Package git reads commit details for update-log from a git repository.
// It uses the go-git library so that --from-git works without the git CLI.
package git

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// DetachedBranchName is reported as the branch when HEAD is detached.
const DetachedBranchName = "HEAD"

// CommitInfo holds the five values recorded for a commit.
type CommitInfo struct {
	Date      string
	ShortHash string
	Branch    string
	Subject   string
	Author    string
}

// HeadOptions controls how the HEAD commit is rendered.
type HeadOptions struct {
	// DateFormat is a Go time layout for the committer date (default 2006-01-02).
	DateFormat string
	// HashLength is the number of hex digits kept (default 7).
	HashLength int
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// HeadCommit returns the details of the commit HEAD points to in the
// repository containing path (or the working directory when path is empty).
func HeadCommit(path string, opts HeadOptions) (*CommitInfo, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit %s: %w", head.Hash(), err)
	}

	branch := DetachedBranchName
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	} else {
		logDebug("[git] HeadCommit: detached HEAD state")
	}

	info := &CommitInfo{
		Date:      commit.Committer.When.Format(dateFormat(opts)),
		ShortHash: shortHash(commit.Hash.String(), opts.HashLength),
		Branch:    branch,
		Subject:   Subject(commit.Message),
		Author:    commit.Author.Name,
	}
	logDebug("[git] HeadCommit: %s on %s by %s", info.ShortHash, info.Branch, info.Author)
	return info, nil
}

// Subject returns the first non-blank line of a commit message.
func Subject(message string) string {
	for _, line := range strings.Split(message, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func dateFormat(opts HeadOptions) string {
	if opts.DateFormat == "" {
		return "2006-01-02"
	}
	return opts.DateFormat
}

func shortHash(hash string, length int) string {
	if length <= 0 {
		length = 7
	}
	if length > len(hash) {
		return hash
	}
	return hash[:length]
}
