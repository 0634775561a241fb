package source

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/gitrepo"
	"github.com/roivaz/ragsplit/internal/logging"
)

const (
	KeyCommitSHA = "commit_sha"
	KeySourceURL = "source_url"
)

// GitConfig points at a local clone. When URL is set a missing clone is
// created and an existing one fetched before listing.
type GitConfig struct {
	Name   string // e.g. owner/repo; derived from URL or Path when empty
	Path   string
	URL    string
	Ref    string // default HEAD
	Filter Filter
}

// Git reads files from one commit of a git repository.
type Git struct {
	cfg  GitConfig
	repo *gitrepo.Repo
	log  logging.Logger

	sha string
}

func NewGit(cfg GitConfig, log logging.Logger) *Git {
	if cfg.Name == "" {
		cfg.Name = repoName(cfg.URL, cfg.Path)
	}
	return &Git{
		cfg:  cfg,
		repo: gitrepo.New(gitrepo.RepoConfig{URL: cfg.URL, Path: cfg.Path}),
		log:  log.WithName("git").WithValues("repo", cfg.Name),
	}
}

func (g *Git) Name() string { return "git:" + g.cfg.Name }

// List resolves the ref once; Read always serves that commit.
func (g *Git) List(ctx context.Context) ([]File, error) {
	if _, err := g.repo.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("prepare repository: %w", err)
	}
	ref := g.cfg.Ref
	if ref == "" {
		ref = "HEAD"
	}
	sha, err := g.repo.ResolveRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	g.sha = sha

	all, err := g.repo.ListFiles(ctx, sha)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	selected := g.cfg.Filter.Apply(all)
	g.log.Info("listed repository files", "ref", ref, "sha", sha, "total", len(all), "selected", len(selected))

	files := make([]File, 0, len(selected))
	for _, p := range selected {
		meta := document.Metadata{
			document.KeyCategory:    g.cfg.Name,
			document.KeySubCategory: dirOf(p),
			KeyCommitSHA:            sha,
		}
		if u := blobURL(g.cfg.Name, sha, p); u != "" {
			meta[KeySourceURL] = u
		}
		files = append(files, newFile(path.Join(g.cfg.Name, p), p, meta))
	}
	return files, nil
}

func (g *Git) Read(ctx context.Context, f File) (string, error) {
	if g.sha == "" {
		return "", fmt.Errorf("%w: %s (List was not called)", ErrNotFound, f.Key)
	}
	data, err := g.repo.ShowFile(ctx, g.sha, f.Name)
	if err != nil {
		return "", err
	}
	return extractText(ctx, f.Name, data)
}

// repoName prefers owner/name from a repository URL and falls back to the
// clone directory name.
func repoName(url, dir string) string {
	if url != "" {
		if info, err := vcsurl.Parse(url); err == nil && info.Username != "" && info.Name != "" {
			return info.Username + "/" + info.Name
		}
	}
	return filepath.Base(filepath.Clean(dir))
}

func dirOf(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}

// blobURL assumes owner/repo names live on github.com.
func blobURL(name, ref, p string) string {
	if strings.Count(name, "/") != 1 {
		return ""
	}
	return "https://github.com/" + name + "/blob/" + ref + "/" + p
}
