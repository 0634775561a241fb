package db

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

// Chunk is one stored row of a segmented file.
type Chunk struct {
	bun.BaseModel `bun:"table:chunks"`

	ID             string            `bun:"id,pk"` // uuid v5 of file_key|page|position|content
	FileKey        string            `bun:"file_key,notnull"`
	Content        string            `bun:"content,notnull"`
	ContentToEmbed string            `bun:"content_to_embed,notnull"`
	Metadata       map[string]string `bun:"metadata,type:jsonb,notnull"`
	Embedding      *pgvector.Vector  `bun:"embedding,type:vector(768)"` // NULL when stored without embeddings
	EmbeddingModel string            `bun:"embedding_model"`
	UpdatedAt      time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
