package db

import (
	"github.com/pgvector/pgvector-go"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/mcp/tools/types"
)

// ChunkFromRow builds the stored form of a row. embedding may be nil.
func ChunkFromRow(row document.Row, embedding []float32, model string) Chunk {
	c := Chunk{
		ID:             row.ID,
		FileKey:        row.FileKey,
		Content:        row.Content,
		ContentToEmbed: row.EmbedText(),
		Metadata:       row.Metadata,
	}
	if c.Metadata == nil {
		c.Metadata = map[string]string{}
	}
	if embedding != nil {
		v := pgvector.NewVector(embedding)
		c.Embedding = &v
		c.EmbeddingModel = model
	}
	return c
}

func ToChunkResult(row ChunkSearchRow) types.ChunkResult {
	r := ToStoredResult(row.Chunk)
	r.SimilarityScore = row.Similarity()
	return r
}

// ToStoredResult converts a chunk read back without a similarity score.
func ToStoredResult(c Chunk) types.ChunkResult {
	return types.ChunkResult{
		ID:       c.ID,
		FileKey:  c.FileKey,
		Content:  c.Content,
		Metadata: c.Metadata,
	}
}
