package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/roivaz/ragsplit/internal/db"
	"github.com/roivaz/ragsplit/internal/mcp/tools/types"
)

// ChunkStore is the read side of db.ChunkRepository.
type ChunkStore interface {
	SearchChunks(ctx context.Context, embedding []float32, filter db.SearchFilter) ([]db.ChunkSearchRow, error)
	FileChunks(ctx context.Context, fileKey string) ([]db.Chunk, error)
}

type QueryEmbedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
}

// DBSearchService embeds queries and searches the chunks table.
type DBSearchService struct {
	Repository  ChunkStore
	EmbedClient QueryEmbedder
}

func NewDBSearchService(repo ChunkStore, embed QueryEmbedder) *DBSearchService {
	return &DBSearchService{Repository: repo, EmbedClient: embed}
}

func (s *DBSearchService) SearchChunks(ctx context.Context, query string, opts types.SearchOptions) ([]types.ChunkResult, error) {
	if strings.TrimSpace(query) == "" {
		return []types.ChunkResult{}, nil
	}

	vectors, err := s.EmbedClient.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return []types.ChunkResult{}, nil
	}

	rows, err := s.Repository.SearchChunks(ctx, vectors[0], db.SearchFilter{
		Limit:       opts.Limit,
		FileKey:     opts.FileKey,
		Category:    opts.Category,
		SubCategory: opts.SubCategory,
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	results := make([]types.ChunkResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, db.ToChunkResult(row))
	}
	return results, nil
}

func (s *DBSearchService) FileChunks(ctx context.Context, fileKey string) ([]types.ChunkResult, error) {
	chunks, err := s.Repository.FileChunks(ctx, fileKey)
	if err != nil {
		return nil, fmt.Errorf("load chunks of %s: %w", fileKey, err)
	}
	results := make([]types.ChunkResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, db.ToStoredResult(c))
	}
	return results, nil
}
