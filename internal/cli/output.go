package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ariel-frischer/update-log/internal/changelog"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	successText = color.New(color.FgGreen, color.Bold).SprintFunc()
	recordText  = color.New(color.FgCyan).SprintFunc()
	previewText = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// useColor reports whether w is a terminal that should receive ANSI colors.
// Buffers and pipes never do, regardless of color.NoColor.
func useColor(w io.Writer, noColor bool) bool {
	if noColor || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printSuccess echoes the recorded fields after a successful write.
func printSuccess(w io.Writer, entry changelog.Entry, colored bool) {
	done := "✅ 更新日志已更新"
	record := fmt.Sprintf("📝 记录: %s | %s | %s | %s", entry.Date, entry.Branch, entry.ShortHash, entry.Summary)
	if colored {
		done = successText(done)
		record = recordText(record)
	}
	fmt.Fprintln(w, done)
	fmt.Fprintln(w, record)
}

// printPreview shows where a dry run would insert the row.
func printPreview(w io.Writer, result *changelog.Result, colored bool) {
	header := fmt.Sprintf("🔍 预览 (dry run): %s:%d", result.Path, result.Line)
	if colored {
		header = previewText(header)
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, result.Row)
}

// lockWaitIndicator spins on a terminal while another run holds the lock.
type lockWaitIndicator struct {
	s *spinner.Spinner
}

// newLockWaitIndicator returns nil unless w is a terminal.
func newLockWaitIndicator(w io.Writer) *lockWaitIndicator {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return &lockWaitIndicator{
		s: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f)),
	}
}

func (l *lockWaitIndicator) start(holder *changelog.LockRecord) {
	l.s.Suffix = " 等待其他进程释放更新日志锁"
	if holder != nil {
		l.s.Suffix += fmt.Sprintf(" (pid %d)", holder.PID)
	}
	l.s.Start()
}

func (l *lockWaitIndicator) stop() {
	l.s.Stop()
}

// debugWriter returns a logger for SetDebugLogger that writes to w.
func debugWriter(w io.Writer) func(format string, args ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, "[debug] "+format+"\n", args...)
	}
}
