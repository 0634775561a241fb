package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type RepoConfig struct {
	URL    string
	Path   string
	Remote string // default: origin
}

// Repo runs git against one local clone.
type Repo struct {
	cfg    RepoConfig
	runner Runner
}

func New(cfg RepoConfig) *Repo {
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	return &Repo{cfg: cfg, runner: Runner{Timeout: 2 * time.Minute}}
}

type Runner struct {
	Timeout time.Duration
}

func (r Runner) Git(ctx context.Context, dir string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				ctxErr = fmt.Errorf("command timed out after %s", r.Timeout)
			}
			return "", formatGitError(args, ctxErr, stderr.String())
		}
		return "", formatGitError(args, err, stderr.String())
	}
	return stdout.String(), nil
}

func formatGitError(args []string, cause error, stderr string) error {
	cmd := strings.Join(args, " ")
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("git %s: %w: %s", cmd, cause, stderr)
	}
	return fmt.Errorf("git %s: %w", cmd, cause)
}

// Run executes an arbitrary git subcommand in the repo path.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	return r.runner.Git(ctx, r.cfg.Path, args...)
}

// Ensure clones the repo if missing; otherwise fetches when a URL is known.
func (r *Repo) Ensure(ctx context.Context) (string, error) {
	abs, err := filepath.Abs(r.cfg.Path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		if r.cfg.URL == "" {
			return "", fmt.Errorf("repository %s does not exist and no clone URL is configured", abs)
		}
		if _, err := r.runner.Git(ctx, "", "clone", "--filter=blob:none", "--no-tags", r.cfg.URL, abs); err != nil {
			return "", err
		}
		return abs, nil
	}
	if r.cfg.URL == "" {
		return abs, nil
	}
	if err := r.Fetch(ctx); err != nil {
		return "", err
	}
	return abs, nil
}

func (r *Repo) Fetch(ctx context.Context, extraArgs ...string) error {
	args := append([]string{"fetch", "--prune", r.cfg.Remote}, extraArgs...)
	_, err := r.runner.Git(ctx, r.cfg.Path, args...)
	return err
}

func (r *Repo) HeadSHA(ctx context.Context) (string, error) {
	return r.ResolveRef(ctx, "HEAD")
}

// ResolveRef turns a branch, tag or abbreviated SHA into a full commit SHA.
func (r *Repo) ResolveRef(ctx context.Context, ref string) (string, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ListFiles returns repo-relative paths at the given ref.
func (r *Repo) ListFiles(ctx context.Context, ref string) ([]string, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path, "ls-tree", "-r", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if l != "" {
			files = append(files, l)
		}
	}
	return files, nil
}

// ShowFile reads a file blob at ref:path.
func (r *Repo) ShowFile(ctx context.Context, ref, path string) ([]byte, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path, "show", fmt.Sprintf("%s:%s", ref, path))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
