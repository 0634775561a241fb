package db

import (
	"context"
	"database/sql"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

// ChunkRepository stores and searches chunks.
type ChunkRepository struct {
	db          *bun.DB
	insertBatch int
}

type ChunkSearchRow struct {
	Chunk    `bun:",extend"`
	Distance float64 `bun:"distance"`
}

// Similarity converts cosine distance (0..2) into a 0..1 score.
func (r ChunkSearchRow) Similarity() float64 {
	return 1 - r.Distance/2
}

// SearchFilter narrows a similarity search. Zero values match everything.
type SearchFilter struct {
	Limit       int
	FileKey     string
	Category    string
	SubCategory string
}

func NewChunkRepository(database *Database, opts ...func(*ChunkRepository)) *ChunkRepository {
	repo := &ChunkRepository{db: database.Bun(), insertBatch: 500}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// WithInsertBatch sets how many rows go into one INSERT statement.
func WithInsertBatch(n int) func(*ChunkRepository) {
	return func(r *ChunkRepository) {
		if n > 0 {
			r.insertBatch = n
		}
	}
}

// ReplaceFile swaps every chunk of fileKey for chunks in one transaction.
// Readers see either the old set or the new one.
func (r *ChunkRepository) ReplaceFile(ctx context.Context, fileKey string, chunks []Chunk) error {
	for i := range chunks {
		if chunks[i].FileKey != fileKey {
			return fmt.Errorf("chunk %s belongs to %q, not %q", chunks[i].ID, chunks[i].FileKey, fileKey)
		}
	}
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Chunk)(nil)).Where("file_key = ?", fileKey).Exec(ctx); err != nil {
			return fmt.Errorf("delete chunks of %s: %w", fileKey, err)
		}
		for start := 0; start < len(chunks); start += r.insertBatch {
			end := min(start+r.insertBatch, len(chunks))
			batch := chunks[start:end]
			_, err := tx.NewInsert().Model(&batch).
				On("CONFLICT (id) DO UPDATE").
				Set("content = EXCLUDED.content").
				Set("content_to_embed = EXCLUDED.content_to_embed").
				Set("metadata = EXCLUDED.metadata").
				Set("embedding = EXCLUDED.embedding").
				Set("embedding_model = EXCLUDED.embedding_model").
				Set("updated_at = now()").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("insert chunks of %s: %w", fileKey, err)
			}
		}
		return nil
	})
}

// DeleteFile removes every chunk of fileKey and reports how many went.
func (r *ChunkRepository) DeleteFile(ctx context.Context, fileKey string) (int64, error) {
	res, err := r.db.NewDelete().Model((*Chunk)(nil)).Where("file_key = ?", fileKey).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Chunk)(nil)).Count(ctx)
}

// FileChunks returns the chunks of one file in page/position order.
func (r *ChunkRepository) FileChunks(ctx context.Context, fileKey string) ([]Chunk, error) {
	var chunks []Chunk
	err := r.db.NewSelect().Model(&chunks).
		Where("file_key = ?", fileKey).
		OrderExpr("(metadata->>'page')::int, (metadata->>'position')::int").
		Scan(ctx)
	return chunks, err
}

func (r *ChunkRepository) SearchChunks(ctx context.Context, embedding []float32, filter SearchFilter) ([]ChunkSearchRow, error) {
	var results []ChunkSearchRow
	if err := r.searchQuery(&results, embedding, filter).Scan(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ChunkRepository) searchQuery(dest *[]ChunkSearchRow, embedding []float32, filter SearchFilter) *bun.SelectQuery {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	q := r.db.NewSelect().Model(dest).
		Column("id", "file_key", "content", "content_to_embed", "metadata", "embedding_model", "updated_at").
		ColumnExpr("embedding <=> ? AS distance", pgvector.NewVector(embedding)).
		Where("embedding IS NOT NULL").
		OrderExpr("distance").
		Limit(limit)
	if filter.FileKey != "" {
		q = q.Where("file_key = ?", filter.FileKey)
	}
	if filter.Category != "" {
		q = q.Where("metadata->>'category' = ?", filter.Category)
	}
	if filter.SubCategory != "" {
		q = q.Where("metadata->>'sub_category' = ?", filter.SubCategory)
	}
	return q
}
