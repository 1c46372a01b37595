package changelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/renameio/v2"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for changelog operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Appender inserts entries into a changelog file.
type Appender struct {
	// Path is the changelog file. Defaults to DefaultPath.
	Path string
	// Marker is the header line to insert under. Defaults to Marker.
	Marker string
	// Lock guards the read-modify-write cycle. Nil disables locking.
	Lock *LockOptions
	// DryRun computes the result without writing or locking.
	DryRun bool
}

// Result describes a completed append.
type Result struct {
	// Path is the file that was (or would be) rewritten.
	Path string
	// Row is the inserted table row.
	Row string
	// Line is the 1-based line number of the inserted row.
	Line int
	// Written is false for dry runs.
	Written bool
}

// NewAppender creates an appender for path with default marker and locking.
func NewAppender(path string) *Appender {
	opts := DefaultLockOptions()
	return &Appender{
		Path:   path,
		Marker: Marker,
		Lock:   &opts,
	}
}

// Append validates entry, then inserts its row under the header line and
// rewrites the file. Nothing is written if any earlier step fails.
func (a *Appender) Append(ctx context.Context, entry Entry) (*Result, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	path := a.path()
	target, perm, err := resolveTarget(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	if a.Lock != nil && !a.DryRun {
		lock, lockErr := AcquireLock(ctx, target, *a.Lock)
		if lockErr != nil {
			return nil, lockErr
		}
		defer func() {
			// The lock dies with the process, so a failed unlock only logs.
			if releaseErr := lock.Release(); releaseErr != nil {
				logDebug("[lock] release failed: %v", releaseErr)
			}
		}()
	}

	content, err := readChangelog(target)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	row := entry.Row()
	loc, err := Locate(content, a.marker())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logDebug("[changelog] header found in %s, inserting at line %d", path, loc.Line)

	result := &Result{Path: path, Row: row, Line: loc.Line}
	if a.DryRun {
		return result, nil
	}

	// The temp file sits next to the target so the rename stays on one
	// filesystem; it gets the target's permission bits before the rename.
	err = renameio.WriteFile(target, Splice(content, loc, row), perm,
		renameio.WithTempDir(filepath.Dir(target)),
		renameio.WithStaticPermissions(perm))
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	result.Written = true
	logDebug("[changelog] wrote %d bytes to %s", len(content)+len(row)+len(loc.EOL), target)

	return result, nil
}

func (a *Appender) path() string {
	if a.Path == "" {
		return DefaultPath
	}
	return a.Path
}

func (a *Appender) marker() string {
	if a.Marker == "" {
		return Marker
	}
	return a.Marker
}

// resolveTarget follows symlinks so the rename replaces the real file,
// and returns its permission bits.
func resolveTarget(path string) (string, os.FileMode, error) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", 0, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", 0, err
	}
	if info.IsDir() {
		return "", 0, fmt.Errorf("%s is a directory", path)
	}
	return target, info.Mode().Perm(), nil
}

func readChangelog(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidUTF8
	}
	return content, nil
}
