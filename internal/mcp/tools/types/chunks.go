package types

import "github.com/roivaz/ragsplit/internal/document"

type ChunkResult struct {
	ID              string            `json:"id"`
	FileKey         string            `json:"file_key"`
	Content         string            `json:"content"`
	Metadata        map[string]string `json:"metadata"`
	SimilarityScore float64           `json:"similarity_score,omitempty"`
}

// SearchOptions narrows a similarity search. Empty fields do not filter.
type SearchOptions struct {
	Limit       int    `json:"limit"`
	FileKey     string `json:"file_key,omitempty"`
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty"`
}

type SearchChunksResponse struct {
	Query   string        `json:"query"`
	Results []ChunkResult `json:"results"`
	Total   int           `json:"total_found"`
}

type FileChunksResponse struct {
	FileKey string        `json:"file_key"`
	Chunks  []ChunkResult `json:"chunks"`
	Total   int           `json:"total_found"`
}

type SplitDocumentResponse struct {
	FileName string         `json:"file_name"`
	Rows     []document.Row `json:"rows"`
	Total    int            `json:"total"`
}
