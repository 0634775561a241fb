// Package ingest segments every file of a source, embeds the chunks and
// replaces their stored rows file by file.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roivaz/ragsplit/internal/db"
	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/source"
	"github.com/roivaz/ragsplit/internal/splitter"
)

// Splitter segments one file. *splitter.Factory implements it.
type Splitter interface {
	Split(name, text string, metadata map[string]any, pretty bool) ([]document.Document, error)
}

type Embedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
	Model() string
}

// ChunkWriter replaces the stored chunks of one file atomically.
type ChunkWriter interface {
	ReplaceFile(ctx context.Context, fileKey string, chunks []db.Chunk) error
}

type Stats struct {
	Files       int
	Skipped     int
	Failed      int
	Documents   int
	Embedded    int
	ElapsedTime time.Duration
}

type counters struct {
	files, skipped, failed, documents, embedded atomic.Int64
}

type Service struct {
	splitter Splitter
	embedder Embedder
	writer   ChunkWriter
	workers  int
	pretty   bool
	log      logging.Logger
}

type Option func(*Service)

// WithWorkers bounds how many files are processed at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithPrettyJSON(pretty bool) Option { return func(s *Service) { s.pretty = pretty } }

// WithEmbedder enables embedding; without it chunks are stored with a NULL
// embedding.
func WithEmbedder(e Embedder) Option { return func(s *Service) { s.embedder = e } }

func WithLogger(l logging.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(sp Splitter, writer ChunkWriter, opts ...Option) *Service {
	s := &Service{splitter: sp, writer: writer, workers: 1, log: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithName("ingest")
	return s
}

// Run ingests every file src lists. Unsupported and unparsable files are
// counted and skipped; read, embedding and storage errors stop the run.
func (s *Service) Run(ctx context.Context, src source.Source) (Stats, error) {
	start := time.Now()
	log := s.log.WithValues("source", src.Name())

	files, err := src.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list %s: %w", src.Name(), err)
	}
	log.Info("ingesting files", "count", len(files), "workers", s.workers)

	var c counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, f := range files {
		g.Go(func() error {
			return s.ingestFile(gctx, src, f, &c)
		})
	}
	err = g.Wait()

	stats := Stats{
		Files:       int(c.files.Load()),
		Skipped:     int(c.skipped.Load()),
		Failed:      int(c.failed.Load()),
		Documents:   int(c.documents.Load()),
		Embedded:    int(c.embedded.Load()),
		ElapsedTime: time.Since(start),
	}
	if err != nil {
		return stats, err
	}
	log.Info("ingestion finished", "files", stats.Files, "skipped", stats.Skipped, "failed", stats.Failed,
		"documents", stats.Documents, "elapsed", stats.ElapsedTime.String())
	return stats, nil
}

func (s *Service) ingestFile(ctx context.Context, src source.Source, f source.File, c *counters) error {
	log := s.log.WithValues("file", f.Key)

	text, err := src.Read(ctx, f)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Key, err)
	}

	docs, err := s.splitter.Split(f.Name, text, f.Metadata, s.pretty)
	switch {
	case errors.Is(err, splitter.ErrUnsupportedFormat):
		log.Debug("skipping unsupported file")
		c.skipped.Add(1)
		return nil
	case errors.Is(err, splitter.ErrParse):
		log.Warn("skipping file that failed to parse", "error", err.Error())
		c.failed.Add(1)
		return nil
	case err != nil:
		return fmt.Errorf("split %s: %w", f.Key, err)
	}

	rows := document.NewRows(docs)
	chunks, err := s.toChunks(ctx, rows)
	if err != nil {
		return fmt.Errorf("embed %s: %w", f.Key, err)
	}
	if err := s.writer.ReplaceFile(ctx, f.Key, chunks); err != nil {
		return fmt.Errorf("store %s: %w", f.Key, err)
	}

	c.files.Add(1)
	c.documents.Add(int64(len(chunks)))
	if s.embedder != nil {
		c.embedded.Add(int64(len(chunks)))
	}
	log.Debug("stored file", "documents", len(chunks))
	return nil
}

func (s *Service) toChunks(ctx context.Context, rows []document.Row) ([]db.Chunk, error) {
	chunks := make([]db.Chunk, len(rows))
	if s.embedder == nil || len(rows) == 0 {
		for i, r := range rows {
			chunks[i] = db.ChunkFromRow(r, nil, "")
		}
		return chunks, nil
	}

	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.EmbedText()
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(rows) {
		return nil, fmt.Errorf("got %d vectors for %d rows", len(vectors), len(rows))
	}
	for i, r := range rows {
		chunks[i] = db.ChunkFromRow(r, vectors[i], s.embedder.Model())
	}
	return chunks, nil
}
