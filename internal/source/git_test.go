package source

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
)

func gitCommit(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}
	for _, args := range [][]string{
		{"init", "-q"},
		{"add", "."},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "-m", "init"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
}

func TestGitSourceReadsCommit(t *testing.T) {
	dir := t.TempDir()
	gitCommit(t, dir, map[string]string{
		"docs/setup.md": "# Setup",
		"main.go":       "package main",
	})

	src := NewGit(GitConfig{Name: "acme/docs", Path: dir, Filter: Filter{Include: []string{"docs/**"}}}, logging.Discard())
	files, err := src.List(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 1)
	f := files[0]
	assert.Equal(t, "acme/docs/docs/setup.md", f.Key)
	assert.Equal(t, "docs/setup.md", f.Name)
	assert.Equal(t, "docs", f.Metadata[document.KeySubCategory])
	sha, _ := f.Metadata[KeyCommitSHA].(string)
	assert.Len(t, sha, 40)
	assert.Equal(t, "https://github.com/acme/docs/blob/"+sha+"/docs/setup.md", f.Metadata[KeySourceURL])

	// later edits to the working tree are not visible
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs/setup.md"), []byte("changed"), 0o644))
	text, err := src.Read(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "# Setup", text)
}

func TestGitSourceName(t *testing.T) {
	assert.Equal(t, "git:checkout", NewGit(GitConfig{Path: "/tmp/work/checkout/"}, logging.Discard()).Name())
	assert.Equal(t, "git:named", NewGit(GitConfig{Name: "named", Path: "/x"}, logging.Discard()).Name())
}
