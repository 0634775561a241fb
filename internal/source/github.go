package source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
)

// maxArchiveBytes bounds the zipball held in memory.
const maxArchiveBytes = 512 << 20

func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(&http.Client{Timeout: 5 * time.Minute})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 5 * time.Minute
	return github.NewClient(tc)
}

// ParseRepo accepts owner/repo[@ref] or a repository URL with an optional
// @ref suffix.
func ParseRepo(spec string) (owner, repo, ref string, err error) {
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, "://") || strings.HasPrefix(spec, "git@") || strings.HasPrefix(spec, "github.com/") {
		if i := strings.LastIndex(spec, "@"); i > strings.LastIndex(spec, "/") {
			spec, ref = spec[:i], spec[i+1:]
		}
		info, perr := vcsurl.Parse(spec)
		if perr != nil {
			return "", "", "", fmt.Errorf("parse repository %q: %w", spec, perr)
		}
		owner, repo = info.Username, info.Name
	} else {
		var name string
		name, ref, _ = strings.Cut(spec, "@")
		parts := strings.Split(strings.TrimSuffix(name, ".git"), "/")
		if len(parts) == 2 {
			owner, repo = parts[0], parts[1]
		}
	}
	if owner == "" || repo == "" {
		return "", "", "", fmt.Errorf("repository %q is not owner/repo", spec)
	}
	return owner, repo, ref, nil
}

// GitHub reads files from the zipball of one repository ref.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	ref    string
	filter Filter
	log    logging.Logger

	mu    sync.RWMutex
	files map[string]*zip.File
}

func NewGitHub(client *github.Client, owner, repo, ref string, filter Filter, log logging.Logger) *GitHub {
	return &GitHub{
		client: client,
		owner:  owner,
		repo:   repo,
		ref:    ref,
		filter: filter,
		log:    log.WithName("github").WithValues("repo", owner+"/"+repo),
		files:  map[string]*zip.File{},
	}
}

func (g *GitHub) Name() string { return "github:" + g.owner + "/" + g.repo }

func (g *GitHub) List(ctx context.Context) ([]File, error) {
	archive, err := g.download(ctx)
	if err != nil {
		return nil, err
	}

	entries := map[string]*zip.File{}
	var paths []string
	for _, zf := range archive.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		// entries live under a single <owner>-<repo>-<sha>/ folder
		_, p, ok := strings.Cut(zf.Name, "/")
		if !ok || p == "" {
			continue
		}
		entries[p] = zf
		paths = append(paths, p)
	}
	selected := g.filter.Apply(paths)
	g.log.Info("listed archive files", "ref", g.ref, "total", len(paths), "selected", len(selected))

	name := g.owner + "/" + g.repo
	ref := g.ref
	if ref == "" {
		ref = "HEAD"
	}
	files := make([]File, 0, len(selected))
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range selected {
		g.files[p] = entries[p]
		meta := document.Metadata{
			document.KeyCategory:    name,
			document.KeySubCategory: dirOf(p),
			KeySourceURL:            blobURL(name, ref, p),
		}
		files = append(files, newFile(name+"/"+p, p, meta))
	}
	return files, nil
}

func (g *GitHub) Read(ctx context.Context, f File) (string, error) {
	g.mu.RLock()
	zf, ok := g.files[f.Name]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, f.Key)
	}
	rc, err := zf.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return extractText(ctx, f.Name, data)
}

func (g *GitHub) download(ctx context.Context) (*zip.Reader, error) {
	var opts *github.RepositoryContentGetOptions
	if g.ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: g.ref}
	}
	link, _, err := g.client.Repositories.GetArchiveLink(ctx, g.owner, g.repo, github.Zipball, opts, 3)
	if err != nil {
		return nil, fmt.Errorf("get archive link: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download archive: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}
	if len(data) > maxArchiveBytes {
		return nil, fmt.Errorf("archive larger than %d bytes", maxArchiveBytes)
	}
	g.log.Debug("downloaded archive", "bytes", len(data))
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}
