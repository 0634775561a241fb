package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/ragsplit/internal/document"
)

func TestFilesSource(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(a, []byte("# A"), 0o644))

	seed := document.Metadata{document.KeyCategory: "local"}
	src := NewFiles([]string{a, a}, seed)
	files, err := src.List(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, filepath.ToSlash(a), files[0].Key)
	assert.Equal(t, filepath.ToSlash(a), files[0].Metadata[document.KeyFileKey])
	assert.Equal(t, "local", files[0].Metadata[document.KeyCategory])
	assert.NotContains(t, seed, document.KeyFileKey)

	text, err := src.Read(context.Background(), files[0])
	require.NoError(t, err)
	assert.Equal(t, "# A", text)

	_, err = NewFiles([]string{dir}, nil).List(context.Background())
	assert.ErrorContains(t, err, "is a directory")

	_, err = NewFiles([]string{filepath.Join(dir, "missing.txt")}, nil).List(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
