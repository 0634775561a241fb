// Package source enumerates the files an ingestion run segments: a landing
// directory tree, a local git clone, or a GitHub repository archive.
package source

import (
	"context"
	"errors"

	"github.com/roivaz/ragsplit/internal/document"
)

// ErrNotFound is returned by Read for a file the source does not hold.
var ErrNotFound = errors.New("file not found in source")

// File is one entry listed by a Source.
type File struct {
	// Key identifies the file across runs and becomes its file_key.
	Key string
	// Name is the path used to pick a splitter.
	Name string
	// Metadata seeds every document cut from the file.
	Metadata document.Metadata
}

// Source lists files and returns their text. Read must be safe for
// concurrent use.
type Source interface {
	Name() string
	List(ctx context.Context) ([]File, error)
	Read(ctx context.Context, f File) (string, error)
}

func newFile(key, name string, meta document.Metadata) File {
	return File{Key: key, Name: name, Metadata: meta.With(document.KeyFileKey, key)}
}
