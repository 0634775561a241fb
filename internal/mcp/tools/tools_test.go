package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/ragsplit/internal/db"
	"github.com/roivaz/ragsplit/internal/mcp/tools/types"
	"github.com/roivaz/ragsplit/internal/splitter"
)

type fakeStore struct {
	gotEmbedding []float32
	gotFilter    db.SearchFilter
	rows         []db.ChunkSearchRow
	chunks       []db.Chunk
	err          error
}

func (f *fakeStore) SearchChunks(_ context.Context, embedding []float32, filter db.SearchFilter) ([]db.ChunkSearchRow, error) {
	f.gotEmbedding = embedding
	f.gotFilter = filter
	return f.rows, f.err
}

func (f *fakeStore) FileChunks(_ context.Context, _ string) ([]db.Chunk, error) {
	return f.chunks, f.err
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestDBSearchService(t *testing.T) {
	store := &fakeStore{rows: []db.ChunkSearchRow{{
		Chunk:    db.Chunk{ID: "1", FileKey: "docs/a.md", Content: "hello", Metadata: map[string]string{"title": "A"}},
		Distance: 0.2,
	}}}
	embed := &fakeEmbedder{}
	svc := NewDBSearchService(store, embed)

	results, err := svc.SearchChunks(context.Background(), "hello", types.SearchOptions{Limit: 3, Category: "docs"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "docs/a.md", results[0].FileKey)
	assert.InDelta(t, 0.9, results[0].SimilarityScore, 1e-9)
	assert.Equal(t, []float32{0.1, 0.2}, store.gotEmbedding)
	assert.Equal(t, db.SearchFilter{Limit: 3, Category: "docs"}, store.gotFilter)

	results, err = svc.SearchChunks(context.Background(), "  ", types.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, embed.calls)

	_, err = NewDBSearchService(store, &fakeEmbedder{err: errors.New("down")}).
		SearchChunks(context.Background(), "q", types.SearchOptions{})
	assert.ErrorContains(t, err, "embed query: down")
}

func TestSearchChunksHandler(t *testing.T) {
	store := &fakeStore{rows: []db.ChunkSearchRow{{Chunk: db.Chunk{ID: "1", FileKey: "f", Content: "c"}}}}
	h := &SearchChunksHandler{Service: NewDBSearchService(store, &fakeEmbedder{})}

	res, err := h.ToolAdapter(context.Background(), request(map[string]any{
		"query":        "how",
		"limit":        float64(5),
		"sub_category": "guides",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var resp types.SearchChunksResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
	assert.Equal(t, "how", resp.Query)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 5, store.gotFilter.Limit)
	assert.Equal(t, "guides", store.gotFilter.SubCategory)

	res, err = h.ToolAdapter(context.Background(), request(map[string]any{"query": "how"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, defaultLimit, store.gotFilter.Limit)
}

func TestSearchChunksHandlerBadArguments(t *testing.T) {
	h := &SearchChunksHandler{Service: NewDBSearchService(&fakeStore{}, &fakeEmbedder{})}

	for name, args := range map[string]map[string]any{
		"missing query":  {},
		"negative limit": {"query": "q", "limit": float64(-1)},
		"string limit":   {"query": "q", "limit": "ten"},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := h.ToolAdapter(context.Background(), request(args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestGetFileChunksHandler(t *testing.T) {
	store := &fakeStore{chunks: []db.Chunk{
		{ID: "1", FileKey: "f", Content: "first"},
		{ID: "2", FileKey: "f", Content: "second"},
	}}
	h := &GetFileChunksHandler{Service: NewDBSearchService(store, &fakeEmbedder{})}

	res, err := h.ToolAdapter(context.Background(), request(map[string]any{"file_key": "f"}))
	require.NoError(t, err)

	var resp types.FileChunksResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "second", resp.Chunks[1].Content)
	assert.Zero(t, resp.Chunks[0].SimilarityScore)

	res, err = h.ToolAdapter(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	store.err = errors.New("db down")
	_, err = h.ToolAdapter(context.Background(), request(map[string]any{"file_key": "f"}))
	assert.ErrorContains(t, err, "db down")
}

func TestSplitDocumentHandler(t *testing.T) {
	factory, err := splitter.NewFactory()
	require.NoError(t, err)
	h := &SplitDocumentHandler{Splitter: factory}

	res, err := h.ToolAdapter(context.Background(), request(map[string]any{
		"file_name": "guide.md",
		"text":      "# Guide\n\nIntro.\n\n## Setup\n\nSteps.",
		"metadata":  map[string]any{"category": "docs"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var resp types.SplitDocumentResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
	assert.Equal(t, "guide.md", resp.FileName)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "guide.md", resp.Rows[0].FileKey)
	assert.Equal(t, "docs", resp.Rows[0].Metadata["category"])
	assert.Equal(t, "Setup", resp.Rows[1].Metadata["subtitle"])
	assert.NotEqual(t, resp.Rows[0].ID, resp.Rows[1].ID)
}

func TestSplitDocumentHandlerRejects(t *testing.T) {
	factory, err := splitter.NewFactory()
	require.NoError(t, err)
	h := &SplitDocumentHandler{Splitter: factory}

	for name, args := range map[string]map[string]any{
		"missing name": {"text": "x"},
		"unsupported":  {"file_name": "tool.exe", "text": "MZ"},
		"bad json":     {"file_name": "data.json", "text": "{"},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := h.ToolAdapter(context.Background(), request(args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestLimitArgument(t *testing.T) {
	n, err := limitArgument(map[string]any{"limit": 7}, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = limitArgument(map[string]any{}, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = limitArgument(map[string]any{"limit": 0}, "limit", 10)
	assert.Error(t, err)
}
