package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roivaz/ragsplit/internal/document"
)

// Files serves an explicit list of local files. Keys are the slash-separated
// paths as given.
type Files struct {
	paths []string
	meta  document.Metadata
}

func NewFiles(paths []string, meta document.Metadata) *Files {
	return &Files{paths: paths, meta: meta}
}

func (s *Files) Name() string { return "files" }

func (s *Files) List(_ context.Context) ([]File, error) {
	files := make([]File, 0, len(s.paths))
	seen := map[string]bool{}
	for _, p := range s.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		key := filepath.ToSlash(filepath.Clean(p))
		if seen[key] {
			continue
		}
		seen[key] = true
		files = append(files, newFile(key, p, s.meta))
	}
	return files, nil
}

func (s *Files) Read(ctx context.Context, f File) (string, error) {
	data, err := os.ReadFile(f.Name)
	if err != nil {
		return "", err
	}
	return extractText(ctx, f.Name, data)
}
