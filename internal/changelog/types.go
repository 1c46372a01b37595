package changelog

import "fmt"

// Marker is the header line of the commit table in update.md.
const Marker = "| 日期 | 版本 | 分支 | 短哈希 | 摘要（作者） |"

// VersionPlaceholder fills the version column of every row.
const VersionPlaceholder = "-"

// DefaultPath is the changelog location relative to the working directory.
const DefaultPath = "update.md"

// Entry is a single commit record destined for the changelog table.
// It only lives for one invocation: it is rendered into a row and dropped.
type Entry struct {
	Date      string
	Version   string
	Branch    string
	ShortHash string
	Summary   string
	Author    string
}

// NewEntry builds an Entry from the five values supplied on the command line.
func NewEntry(date, commitHash, branch, commitMsg, author string) Entry {
	return Entry{
		Date:      date,
		Version:   VersionPlaceholder,
		Branch:    branch,
		ShortHash: commitHash,
		Summary:   commitMsg,
		Author:    author,
	}
}

// Row renders the entry as a Markdown table row.
// Pipes and line breaks in the fields are written as-is.
func (e Entry) Row() string {
	version := e.Version
	if version == "" {
		version = VersionPlaceholder
	}
	return fmt.Sprintf("| %s | %s | %s | %s | %s (%s) |",
		e.Date, version, e.Branch, e.ShortHash, e.Summary, e.Author)
}

// Validate reports the first empty field, in command-line order.
func (e Entry) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"date", e.Date},
		{"commitHash", e.ShortHash},
		{"branch", e.Branch},
		{"commitMsg", e.Summary},
		{"author", e.Author},
	}
	for _, f := range fields {
		if f.value == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	return nil
}
