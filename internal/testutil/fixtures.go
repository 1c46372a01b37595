package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Header and Separator are the two lines of a fresh update.md table.
const (
	Header    = "| 日期 | 版本 | 分支 | 短哈希 | 摘要（作者） |"
	Separator = "|---|---|---|---|---|"
)

// ChangelogContent returns an update.md body: a title, the table header,
// the given rows (newest first, as update-log inserts them directly under
// the header), then the separator line.
func ChangelogContent(rows ...string) string {
	var sb strings.Builder
	sb.WriteString("# 更新日志\n\n")
	sb.WriteString(Header + "\n")
	for _, row := range rows {
		sb.WriteString(row + "\n")
	}
	sb.WriteString(Separator + "\n")
	return sb.String()
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// Commit describes the single commit created by InitRepo.
type Commit struct {
	Branch  string
	Message string
	Author  string
	Email   string
	When    time.Time
}

// InitRepo creates a git repository in dir with one commit on c.Branch and
// returns the commit hash.
func InitRepo(t *testing.T, dir string, c Commit) string {
	t.Helper()

	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.Email == "" {
		c.Email = "dev@example.com"
	}
	if c.When.IsZero() {
		c.When = time.Now()
	}

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(c.Branch),
		},
	})
	if err != nil {
		t.Fatalf("initializing repository: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("getting worktree: %v", err)
	}

	WriteFile(t, dir, "README.md", "# test repo\n")
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("staging README.md: %v", err)
	}

	hash, err := wt.Commit(c.Message, &git.CommitOptions{
		Author: &object.Signature{Name: c.Author, Email: c.Email, When: c.When},
	})
	if err != nil {
		t.Fatalf("committing: %v", err)
	}
	return hash.String()
}

// DetachHead points HEAD directly at hash in the repository at dir.
func DetachHead(t *testing.T, dir, hash string) {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("opening repository: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.HEAD, plumbing.NewHash(hash))
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatalf("detaching HEAD: %v", err)
	}
}
