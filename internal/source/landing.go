package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
)

const (
	extractionPrefix = "extraction_date="
	sidecarDir       = ".metadata"
	sidecarExt       = ".metadata"
)

// LandingConfig describes a landing tree laid out as
// <root>/<category>[/extraction_date=<date>]/<sub_category>/<file>.
type LandingConfig struct {
	Root string
	// Categories to read; empty means every directory under Root.
	Categories []string
	// Dated trees keep one extraction_date=<date> folder per run.
	Dated bool
	// ExtractionDate selects a dated folder; empty picks the newest.
	ExtractionDate string
}

// Landing reads files from a landing tree. A file may carry a JSON sidecar
// at <dir>/.metadata/<file>.metadata whose object seeds its metadata.
type Landing struct {
	cfg LandingConfig
	log logging.Logger

	mu    sync.RWMutex
	paths map[string]string
}

func NewLanding(cfg LandingConfig, log logging.Logger) *Landing {
	return &Landing{cfg: cfg, log: log.WithName("landing"), paths: map[string]string{}}
}

func (l *Landing) Name() string { return "landing:" + l.cfg.Root }

func (l *Landing) List(_ context.Context) ([]File, error) {
	categories := l.cfg.Categories
	if len(categories) == 0 {
		dirs, err := subdirs(l.cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("list landing root: %w", err)
		}
		categories = dirs
	}

	var files []File
	for _, category := range categories {
		base := filepath.Join(l.cfg.Root, category)
		if l.cfg.Dated {
			folder, err := l.extractionFolder(base)
			if err != nil {
				return nil, err
			}
			if folder == "" {
				l.log.Warn("no extraction folder found", "category", category)
				continue
			}
			base = filepath.Join(base, folder)
		}
		subs, err := subdirs(base)
		if err != nil {
			return nil, fmt.Errorf("list category %s: %w", category, err)
		}
		for _, sub := range subs {
			found, err := l.listSubCategory(category, sub, filepath.Join(base, sub))
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		}
	}
	return files, nil
}

func (l *Landing) listSubCategory(category, sub, dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		meta := l.sidecar(dir, e.Name())
		meta[document.KeyCategory] = category
		meta[document.KeySubCategory] = sub
		key := path.Join(category, sub, e.Name())
		files = append(files, newFile(key, e.Name(), meta))

		l.mu.Lock()
		l.paths[key] = filepath.Join(dir, e.Name())
		l.mu.Unlock()
	}
	return files, nil
}

func (l *Landing) Read(ctx context.Context, f File) (string, error) {
	l.mu.RLock()
	p, ok := l.paths[f.Key]
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, f.Key)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return extractText(ctx, f.Name, data)
}

// extractionFolder returns the folder named by ExtractionDate, or the
// lexically newest extraction_date= folder under dir.
func (l *Landing) extractionFolder(dir string) (string, error) {
	if l.cfg.ExtractionDate != "" {
		return extractionPrefix + l.cfg.ExtractionDate, nil
	}
	dirs, err := subdirs(dir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", dir, err)
	}
	var dated []string
	for _, d := range dirs {
		if strings.HasPrefix(d, extractionPrefix) {
			dated = append(dated, d)
		}
	}
	if len(dated) == 0 {
		return "", nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dated)))
	return dated[0], nil
}

func (l *Landing) sidecar(dir, name string) document.Metadata {
	meta := document.Metadata{}
	raw, err := os.ReadFile(filepath.Join(dir, sidecarDir, name+sidecarExt))
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		l.log.Warn("ignoring invalid metadata sidecar", "file", name, "error", err.Error())
		return document.Metadata{}
	}
	if meta == nil {
		return document.Metadata{}
	}
	return meta
}

// subdirs lists the visible directories of dir in name order.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
