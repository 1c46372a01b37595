package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// style decorates the parts of a rendered error.
type style struct {
	label    func(a ...interface{}) string
	category func(a ...interface{}) string
	message  func(a ...interface{}) string
	heading  func(a ...interface{}) string
	usage    func(a ...interface{}) string
	bullet   func(a ...interface{}) string
}

var (
	coloredStyle = style{
		label:    color.New(color.FgRed, color.Bold).SprintFunc(),
		category: color.New(color.FgYellow).SprintFunc(),
		message:  color.New(color.FgRed).SprintFunc(),
		heading:  color.New(color.FgGreen, color.Bold).SprintFunc(),
		usage:    color.New(color.FgCyan).SprintFunc(),
		bullet:   color.New(color.FgGreen).SprintFunc(),
	}
	plainStyle = style{
		label:    fmt.Sprint,
		category: fmt.Sprint,
		message:  fmt.Sprint,
		heading:  fmt.Sprint,
		usage:    fmt.Sprint,
		bullet:   fmt.Sprint,
	}
)

// Format renders err as shown on stderr:
//
//	❌ Error [Category]: message
//
//	Usage: ...
//
//	To fix this:
//	  • step
//
// colored adds ANSI colors; callers decide whether the writer supports them.
func Format(err *CLIError, colored bool) string {
	if err == nil {
		return ""
	}
	s := plainStyle
	if colored {
		s = coloredStyle
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "❌ %s [%s]: %s\n", s.label("Error"), s.category(err.Category.String()), s.message(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", s.heading("Usage: "), s.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", s.heading("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", s.bullet("•"), step)
		}
	}

	return sb.String()
}

// Fprint writes Format(err, colored) to w.
func Fprint(w io.Writer, err *CLIError, colored bool) {
	fmt.Fprint(w, Format(err, colored))
}
