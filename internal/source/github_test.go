package source

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
)

func zipball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("acme-docs-abc123/")
	require.NoError(t, err)
	for name, content := range files {
		f, err := w.Create("acme-docs-abc123/" + name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newArchiveServer(t *testing.T, archive []byte) *github.Client {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/repos/acme/docs/zipball/main", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", srv.URL+"/archive/acme-docs.zip")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/archive/acme-docs.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})

	client := github.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return client
}

func TestGitHubListsArchive(t *testing.T) {
	archive := zipball(t, map[string]string{
		"README.md":      "# Docs",
		"guides/run.txt": "Run it",
		"cmd/main.go":    "package main",
	})
	client := newArchiveServer(t, archive)
	src := NewGitHub(client, "acme", "docs", "main", Filter{Include: []string{"**/*.md", "**/*.txt"}}, logging.Discard())

	files, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	byKey := map[string]File{}
	for _, f := range files {
		byKey[f.Key] = f
	}
	run, ok := byKey["acme/docs/guides/run.txt"]
	require.True(t, ok)
	assert.Equal(t, "guides/run.txt", run.Name)
	assert.Equal(t, "acme/docs", run.Metadata[document.KeyCategory])
	assert.Equal(t, "guides", run.Metadata[document.KeySubCategory])
	assert.Equal(t, "https://github.com/acme/docs/blob/main/guides/run.txt", run.Metadata[KeySourceURL])

	text, err := src.Read(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "Run it", text)

	_, err = src.Read(context.Background(), File{Key: "acme/docs/cmd/main.go", Name: "cmd/main.go"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubArchiveMissing(t *testing.T) {
	client := newArchiveServer(t, nil)
	src := NewGitHub(client, "acme", "other", "main", Filter{}, logging.Discard())

	_, err := src.List(context.Background())
	assert.ErrorContains(t, err, "get archive link")
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in               string
		owner, repo, ref string
	}{
		{in: "acme/docs", owner: "acme", repo: "docs"},
		{in: "acme/docs@main", owner: "acme", repo: "docs", ref: "main"},
		{in: "acme/docs.git@release/1.0", owner: "acme", repo: "docs", ref: "release/1.0"},
		{in: "https://github.com/Azure/ARO-HCP@main", owner: "Azure", repo: "ARO-HCP", ref: "main"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, ref, err := ParseRepo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
			assert.Equal(t, tt.ref, ref)
		})
	}

	for _, bad := range []string{"", "docs", "a/b/c"} {
		_, _, _, err := ParseRepo(bad)
		assert.Error(t, err, bad)
	}
}
