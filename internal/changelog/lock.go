package changelog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultLockTimeout is how long Append waits for a held lock.
	DefaultLockTimeout = 5 * time.Second
	// defaultPollInterval is the delay between acquisition attempts.
	defaultPollInterval = 50 * time.Millisecond
)

// LockRecord describes the current holder of a changelog lock. It is
// written into the lock file for error messages only; the lock itself is
// the kernel's.
type LockRecord struct {
	// PID is the process holding the lock.
	PID int `yaml:"pid"`
	// Hostname is the machine the holder runs on.
	Hostname string `yaml:"hostname"`
	// StartedAt is when the lock was acquired.
	StartedAt time.Time `yaml:"started_at"`
}

// LockOptions controls lock acquisition.
type LockOptions struct {
	// Timeout bounds the wait for a held lock. Zero fails immediately.
	Timeout time.Duration
	// PollInterval is the delay between attempts (default 50ms).
	PollInterval time.Duration
	// OnWait, if set, is called once when acquisition starts waiting on
	// another holder. holder is nil when the lock file has no record.
	OnWait func(holder *LockRecord)
}

// DefaultLockOptions returns the options used when none are configured.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Timeout:      DefaultLockTimeout,
		PollInterval: defaultPollInterval,
	}
}

// FileLock is a held changelog lock.
type FileLock struct {
	path string
	fl   *flock.Flock
}

// GetLockPath returns the lock file path for a changelog file.
func GetLockPath(changelogPath string) string {
	return changelogPath + ".lock"
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// AcquireLock takes an exclusive advisory lock on the changelog's lock
// file, waiting up to opts.Timeout while another process holds it.
// The lock file is never removed: the kernel drops the lock when its
// holder exits, so a crashed run cannot leave the changelog locked.
func AcquireLock(ctx context.Context, changelogPath string, opts LockOptions) (*FileLock, error) {
	lockPath := GetLockPath(changelogPath)
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	fl := flock.New(lockPath)
	var watcher *fsnotify.Watcher
	waiting := false
	for {
		locked, err := fl.TryLock()
		if err != nil {
			return nil, &LockError{Path: lockPath, Err: err}
		}
		if locked {
			writeLockRecord(lockPath)
			logDebug("[lock] acquired %s", lockPath)
			return &FileLock{path: lockPath, fl: fl}, nil
		}

		holder, _ := LoadLock(lockPath)
		if opts.Timeout <= 0 {
			return nil, &LockError{Path: lockPath, Holder: holder, Err: ErrLockHeld}
		}

		if !waiting {
			waiting = true
			logDebug("[lock] %s is held, waiting up to %s", lockPath, opts.Timeout)
			if opts.OnWait != nil {
				opts.OnWait(holder)
			}
			watcher = watchLockDir(lockPath)
			if watcher != nil {
				defer watcher.Close()
			}
		}

		if err := waitForRelease(ctx, watcher, lockPath, poll); err != nil {
			return nil, &LockError{Path: lockPath, Holder: holder, Err: fmt.Errorf("%w: %w", ErrLockHeld, err)}
		}
	}
}

// writeLockRecord stores the holder record. Failure only costs the
// holder details in a waiter's error message.
func writeLockRecord(lockPath string) {
	hostname, _ := os.Hostname()
	data, err := yaml.Marshal(&LockRecord{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
	})
	if err == nil {
		err = os.WriteFile(lockPath, data, 0o644)
	}
	if err != nil {
		logDebug("[lock] cannot record holder in %s: %v", lockPath, err)
	}
}

// watchLockDir watches the directory holding lockPath so a release wakes
// waiters before the next poll. Returns nil if watching is unavailable.
func watchLockDir(lockPath string) *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logDebug("[lock] fsnotify unavailable, polling only: %v", err)
		return nil
	}
	if err := watcher.Add(filepath.Dir(lockPath)); err != nil {
		logDebug("[lock] cannot watch %s, polling only: %v", filepath.Dir(lockPath), err)
		watcher.Close()
		return nil
	}
	return watcher
}

// waitForRelease returns when the lock file is touched, the poll interval
// elapses, or ctx is done.
func waitForRelease(ctx context.Context, watcher *fsnotify.Watcher, lockPath string, poll time.Duration) error {
	timer := time.NewTimer(poll)
	defer timer.Stop()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if watcher != nil {
		events = watcher.Events
		errs = watcher.Errors
	}

	target := filepath.Clean(lockPath)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) == target {
				return nil
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logDebug("[lock] watcher error: %v", err)
		}
	}
}

// Release unlocks and touches the lock file so waiting processes retry
// at once. Releasing twice is a no-op.
func (l *FileLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlocking %s: %w", l.path, err)
	}

	now := time.Now()
	if err := os.Chtimes(l.path, now, now); err != nil {
		logDebug("[lock] cannot touch %s: %v", l.path, err)
	}
	logDebug("[lock] released %s", l.path)
	return nil
}

// LoadLock reads the holder record from a lock file.
// Returns nil and no error if the file doesn't exist or holds no record.
func LoadLock(lockPath string) (*LockRecord, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var record LockRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	return &record, nil
}
