package changelog

import (
	"errors"
	"fmt"
)

var (
	// ErrMarkerNotFound is returned when the header marker is absent.
	ErrMarkerNotFound = errors.New("table header marker not found")

	// ErrEmptyMarker is returned when Locate is called without a marker.
	ErrEmptyMarker = errors.New("table header marker is empty")

	// ErrInvalidUTF8 is returned when the changelog is not UTF-8 text.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

	// ErrLockHeld is returned when another process holds the lock and
	// waiting is disabled.
	ErrLockHeld = errors.New("changelog is locked by another process")
)

// MissingFieldError is returned when an entry has an empty field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required value: %s", e.Field)
}

// ReadError wraps any failure to load the changelog file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps any failure to persist the rewritten changelog.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// LockError is returned when the changelog lock could not be acquired.
// Holder is nil when the lock file could not be parsed.
type LockError struct {
	Path   string
	Holder *LockRecord
	Err    error
}

func (e *LockError) Error() string {
	if e.Holder != nil && e.Holder.PID > 0 {
		return fmt.Sprintf("acquiring lock %s (held by PID %d on %s since %s): %v",
			e.Path, e.Holder.PID, e.Holder.Hostname, e.Holder.StartedAt.Format("15:04:05"), e.Err)
	}
	return fmt.Sprintf("acquiring lock %s: %v", e.Path, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }
