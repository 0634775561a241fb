package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one commit holding files.
func initRepo(t *testing.T, files map[string]string) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	repo := New(RepoConfig{Path: dir})
	ctx := context.Background()
	for _, args := range [][]string{
		{"init", "-q"},
		{"add", "."},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "-m", "init"},
	} {
		_, err := repo.Run(ctx, args...)
		require.NoError(t, err)
	}
	return repo
}

func TestRepoReadsCommittedFiles(t *testing.T) {
	repo := initRepo(t, map[string]string{
		"README.md":      "# readme\n",
		"docs/guide.txt": "guide",
	})
	ctx := context.Background()

	head, err := repo.HeadSHA(ctx)
	require.NoError(t, err)
	assert.Len(t, head, 40)

	files, err := repo.ListFiles(ctx, head)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "docs/guide.txt"}, files)

	content, err := repo.ShowFile(ctx, head, "docs/guide.txt")
	require.NoError(t, err)
	assert.Equal(t, "guide", string(content))
}

func TestRepoErrorsCarryCommand(t *testing.T) {
	repo := initRepo(t, map[string]string{"a.txt": "a"})

	_, err := repo.ResolveRef(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git rev-parse")
}

func TestEnsureWithoutURL(t *testing.T) {
	repo := New(RepoConfig{Path: filepath.Join(t.TempDir(), "missing")})

	_, err := repo.Ensure(context.Background())
	assert.ErrorContains(t, err, "no clone URL")
}
