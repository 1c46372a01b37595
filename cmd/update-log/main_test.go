package main

import (
	"testing"

	"github.com/ariel-frischer/update-log/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixBugRow = "| 2024-01-01 | - | main | abc123 | Fix bug (Alice) |"

func TestBinary_Success(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.WriteFile("update.md", testutil.ChangelogContent())

	result := env.Run("2024-01-01", "abc123", "main", "Fix bug", "Alice")
	require.Equal(t, 0, result.ExitCode, "stderr: %s", result.Stderr)

	assert.Equal(t, testutil.ChangelogContent(fixBugRow), env.ReadFile("update.md"))
	assert.Contains(t, result.Stdout, "2024-01-01")
	assert.Contains(t, result.Stdout, "main")
	assert.Contains(t, result.Stdout, "abc123")
	assert.Contains(t, result.Stdout, "Fix bug")
	assert.Empty(t, result.Stderr)
}

func TestBinary_Failures(t *testing.T) {
	tests := map[string]struct {
		content    string
		args       []string
		wantStderr string
	}{
		"missing arguments": {
			content:    testutil.ChangelogContent(),
			args:       []string{"2024-01-01", "abc123"},
			wantStderr: "缺少必要参数",
		},
		"missing changelog": {
			args:       []string{"2024-01-01", "abc123", "main", "Fix bug", "Alice"},
			wantStderr: "更新日志失败",
		},
		"missing header": {
			content:    "# 更新日志\n\nno table here\n",
			args:       []string{"2024-01-01", "abc123", "main", "Fix bug", "Alice"},
			wantStderr: "未找到提交记录表格",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)
			if tt.content != "" {
				env.WriteFile("update.md", tt.content)
			}

			result := env.Run(tt.args...)
			assert.Equal(t, 1, result.ExitCode)
			assert.Empty(t, result.Stdout)
			assert.Contains(t, result.Stderr, tt.wantStderr)
			if tt.content != "" {
				assert.Equal(t, tt.content, env.ReadFile("update.md"))
			}
		})
	}
}

func TestBinary_FromGit(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	hash := testutil.InitRepo(t, env.WorkDir(), testutil.Commit{
		Branch:  "main",
		Message: "Fix bug",
		Author:  "Alice",
	})
	env.WriteFile("update.md", testutil.ChangelogContent())

	result := env.Run("--from-git")
	require.Equal(t, 0, result.ExitCode, "stderr: %s", result.Stderr)
	assert.Contains(t, env.ReadFile("update.md"), "| main | "+hash[:7]+" | Fix bug (Alice) |")
}
