// Package changelog tests the lock-guarded rewrite of update.md.
// Related: internal/changelog/appender.go, internal/changelog/lock.go
// Tags: changelog, appender, file-io

package changelog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func writeChangelog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "update.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func testAppender(path string) *Appender {
	a := NewAppender(path)
	a.Lock.Timeout = 200 * time.Millisecond
	a.Lock.PollInterval = 10 * time.Millisecond
	return a
}

func TestAppender_Append(t *testing.T) {
	t.Parallel()

	path := writeChangelog(t, Marker+"\n"+separator+"\n")

	result, err := testAppender(path).Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))
	require.NoError(t, err)

	assert.Equal(t, Marker+"\n| 2024-01-01 | - | main | abc123 | Fix bug (Alice) |\n"+separator+"\n", readFile(t, path))
	assert.Equal(t, path, result.Path)
	assert.Equal(t, 2, result.Line)
	assert.True(t, result.Written)
	assert.Equal(t, "| 2024-01-01 | - | main | abc123 | Fix bug (Alice) |", result.Row)
}

func TestAppender_NewestFirst(t *testing.T) {
	t.Parallel()

	path := writeChangelog(t, "# 更新日志\n\n"+Marker+"\n"+separator+"\n")
	appender := testAppender(path)
	ctx := context.Background()

	_, err := appender.Append(ctx, NewEntry("2024-01-01", "aaa", "main", "First", "Alice"))
	require.NoError(t, err)
	_, err = appender.Append(ctx, NewEntry("2024-01-02", "bbb", "dev", "Second", "Bob"))
	require.NoError(t, err)

	want := "# 更新日志\n\n" + Marker + "\n" +
		"| 2024-01-02 | - | dev | bbb | Second (Bob) |\n" +
		"| 2024-01-01 | - | main | aaa | First (Alice) |\n" +
		separator + "\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestAppender_FailuresLeaveFileUntouched(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		entry   Entry
		check   func(t *testing.T, err error)
	}{
		"missing header": {
			content: "# 更新日志\n\nno table here\n",
			entry:   NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMarkerNotFound)
			},
		},
		"missing argument": {
			content: Marker + "\n" + separator + "\n",
			entry:   NewEntry("2024-01-01", "abc123", "main", "Fix bug", ""),
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				assert.ErrorAs(t, err, &missing)
			},
		},
		"not utf-8": {
			content: Marker + "\n\xff\xfe\n",
			entry:   NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"),
			check: func(t *testing.T, err error) {
				var readErr *ReadError
				require.ErrorAs(t, err, &readErr)
				assert.ErrorIs(t, err, ErrInvalidUTF8)
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := writeChangelog(t, tt.content)
			_, err := testAppender(path).Append(context.Background(), tt.entry)
			require.Error(t, err)
			tt.check(t, err)

			assert.Equal(t, tt.content, readFile(t, path))
			assert.NoFileExists(t, GetLockPath(path))
		})
	}
}

func TestAppender_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "update.md")
	_, err := testAppender(path).Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NoFileExists(t, path)
}

func TestAppender_DryRun(t *testing.T) {
	t.Parallel()

	content := "intro\n" + Marker + "\n" + separator + "\n"
	path := writeChangelog(t, content)
	appender := testAppender(path)
	appender.DryRun = true

	result, err := appender.Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))
	require.NoError(t, err)

	assert.False(t, result.Written)
	assert.Equal(t, 3, result.Line)
	assert.Equal(t, content, readFile(t, path))
}

func TestAppender_NoTempFilesLeft(t *testing.T) {
	t.Parallel()

	path := writeChangelog(t, Marker+"\n"+separator+"\n")
	_, err := testAppender(path).Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"update.md", "update.md.lock"}, names)
}

func TestAppender_ConcurrentAppendsKeepEveryRow(t *testing.T) {
	t.Parallel()

	path := writeChangelog(t, Marker+"\n"+separator+"\n")

	const writers = 8
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			a := NewAppender(path)
			a.Lock.Timeout = 10 * time.Second
			a.Lock.PollInterval = 5 * time.Millisecond
			_, err := a.Append(context.Background(),
				NewEntry("2024-01-01", fmt.Sprintf("hash%02d", i), "main", "Fix bug", "Alice"))
			return err
		})
	}
	require.NoError(t, g.Wait())

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, Marker+"\n"))
	assert.True(t, strings.HasSuffix(content, separator+"\n"))
	for i := 0; i < writers; i++ {
		assert.Contains(t, content, fmt.Sprintf("| hash%02d |", i), "row %d was lost", i)
	}
	assert.Equal(t, writers+2, strings.Count(content, "\n"))
}

func TestAppender_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	t.Parallel()

	path := writeChangelog(t, Marker+"\n")
	require.NoError(t, os.Chmod(path, 0o600))

	_, err := testAppender(path).Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAppender_FollowsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "docs-update.md")
	require.NoError(t, os.WriteFile(target, []byte(Marker+"\n"), 0o644))
	link := filepath.Join(dir, "update.md")
	require.NoError(t, os.Symlink(target, link))

	_, err := testAppender(link).Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))
	require.NoError(t, err)

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link should survive the rewrite")
	assert.Contains(t, readFile(t, target), "| 2024-01-01 | - | main | abc123 | Fix bug (Alice) |")
}

func TestAppender_WriteFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs a directory the current user cannot write to")
	}
	t.Parallel()

	content := Marker + "\n" + separator + "\n"
	path := writeChangelog(t, content)
	dir := filepath.Dir(path)
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	appender := testAppender(path)
	appender.Lock = nil // the lock file could not be created either

	_, err := appender.Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, content, readFile(t, path))
}

func TestAppender_HeldLock(t *testing.T) {
	t.Parallel()

	content := Marker + "\n" + separator + "\n"
	path := writeChangelog(t, content)
	// Appender locks the resolved path (TempDir may sit behind a symlink).
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	held, err := AcquireLock(context.Background(), resolved, DefaultLockOptions())
	require.NoError(t, err)
	defer held.Release()

	appender := testAppender(path)
	appender.Lock.Timeout = 50 * time.Millisecond

	_, err = appender.Append(context.Background(),
		NewEntry("2024-01-01", "abc123", "main", "Fix bug", "Alice"))

	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.Equal(t, content, readFile(t, path))
}
