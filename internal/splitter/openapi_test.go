package splitter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
)

const storeAPI = `{
  "openapi": "3.0.1",
  "info": {"title": "Store", "description": "Sells things"},
  "servers": [{"url": "https://api.example.com"}],
  "security": [{"key": []}],
  "components": {
    "securitySchemes": {"key": {"type": "apiKey", "in": "header", "name": "X-Key"}},
    "schemas": {"Item": {"type": "object", "description": "<b>item</b>"}}
  },
  "paths": {
    "/b": {
      "get": {"summary": "list b", "description": "lists\nall b"}
    },
    "/a": {
      "post": {"summary": "create a", "responses": {"200": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Item"}}}}}},
      "get": {"summary": "list a", "responses": {"404": {"$ref": "#/components/responses/Missing"}}}
    }
  }
}`

func TestOpenAPISplitterOnePerOperation(t *testing.T) {
	s, err := NewOpenAPISplitter()
	require.NoError(t, err)

	seed := map[string]any{"file_key": "store.json"}
	docs, err := s.CreateDocuments(storeAPI, seed, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"file_key": "store.json"}, seed)

	require.Len(t, docs, 3)
	var sections []string
	for _, d := range docs {
		sections = append(sections, d.Metadata[document.KeySection].(string))
		assert.Equal(t, "endpoint", d.Metadata[document.KeySubtitle])
		assert.Equal(t, "store.json", d.Metadata[document.KeyFileKey])
		assert.True(t, strings.HasPrefix(d.ContentToEmbed, "Example of a '"))
		assert.NotContains(t, d.Content, "\n")
	}
	assert.Equal(t, []string{"GET /b", "POST /a", "GET /a"}, sections)
	assertNumbering(t, docs)

	assert.Equal(t,
		"Example of a 'get' call to the endpoint '/b' in the api 'Store'. This call 'list b' is used to 'listsall b'. The api is responsible for 'Sells things'",
		docs[0].ContentToEmbed)
}

func TestOpenAPISplitterDocumentShape(t *testing.T) {
	s, err := NewOpenAPISplitter()
	require.NoError(t, err)

	docs, err := s.CreateDocuments(storeAPI, nil, false)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	var post map[string]any
	require.NoError(t, json.Unmarshal([]byte(docs[1].Content), &post))
	assert.Equal(t, "3.0.1", post["openapi"])
	assert.Contains(t, post, "servers")
	assert.Contains(t, post, "security")
	assert.NotContains(t, post, "info")
	assert.Equal(t, map[string]any{"securitySchemes": map[string]any{"key": map[string]any{"type": "apiKey", "in": "header", "name": "X-Key"}}}, post["components"])

	paths := post["paths"].(map[string]any)
	require.Len(t, paths, 1)
	item := paths["/a"].(map[string]any)
	require.Len(t, item, 1)
	assert.Contains(t, item, "post")

	// the referenced schema is inlined and not HTML-escaped
	assert.Contains(t, docs[1].Content, `"description":"<b>item</b>"`)
	assert.NotContains(t, docs[1].Content, "$ref")

	// broken references stay in place
	assert.Contains(t, docs[2].Content, `"$ref":"#/components/responses/Missing"`)
}

func TestOpenAPISplitterKeyOrder(t *testing.T) {
	s, err := NewOpenAPISplitter()
	require.NoError(t, err)

	docs, err := s.CreateDocuments(storeAPI, nil, false)
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	// encoding/json sorts map keys, so source order is not kept
	content := docs[0].Content
	assert.True(t, strings.HasPrefix(content, `{"components":{`), content)
	keys := []string{`"openapi":`, `"paths":`, `"security":`, `"servers":`}
	last := 0
	for _, k := range keys {
		i := strings.Index(content, k)
		require.Positive(t, i, k)
		assert.Greater(t, i, last, k)
		last = i
	}
}

func TestOpenAPISplitterPretty(t *testing.T) {
	s, err := NewOpenAPISplitter()
	require.NoError(t, err)

	docs, err := s.CreateDocuments(storeAPI, nil, true)
	require.NoError(t, err)

	require.NotEmpty(t, docs)
	assert.True(t, strings.HasPrefix(docs[0].Content, "{\n  \""))
	assert.False(t, strings.HasSuffix(docs[0].Content, "\n"))
}

func TestOpenAPISplitterErrors(t *testing.T) {
	s, err := NewOpenAPISplitter()
	require.NoError(t, err)

	_, err = s.CreateDocuments("{not json", nil, false)
	assert.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrReference)

	_, err = s.CreateDocuments("[1, 2]", nil, false)
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, ErrReference)
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "#", refErr.Ref)
}

func TestOpenAPISplitterWithoutPaths(t *testing.T) {
	s, err := NewOpenAPISplitter()
	require.NoError(t, err)

	docs, err := s.CreateDocuments(`{"openapi": "3.0.0", "info": {"title": "empty"}}`, nil, false)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestJSONSplitter(t *testing.T) {
	s, err := NewJSONSplitter(WithChunkSize(5))
	require.NoError(t, err)
	assert.Zero(t, s.Options().ChunkSize)

	seed := map[string]any{"file_key": "f.json"}
	docs, err := s.CreateDocuments(`{"name": "value", "list": [1, 2, 3]}`, seed, false)
	require.NoError(t, err)
	assert.NotContains(t, seed, document.KeyTitle)

	require.Len(t, docs, 1)
	assert.Equal(t, `{"name": "value", "list": [1, 2, 3]}`, docs[0].Content)
	assert.Empty(t, docs[0].ContentToEmbed)
	assert.Equal(t, "json", docs[0].Metadata[document.KeyTitle])
	assert.Equal(t, "f.json", docs[0].Metadata[document.KeyFileKey])

	_, err = s.CreateDocuments(`{"name":`, nil, false)
	assert.ErrorIs(t, err, ErrParse)

	meta := document.Metadata{document.KeyFileKey: "g.json"}
	blocks, err := jsonSegmenter{}.SegmentText(`{}`, meta, false)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "json", blocks[0].Metadata[document.KeyTitle])
	assert.Equal(t, document.Metadata{document.KeyFileKey: "g.json"}, meta)
}

func TestOpenAPISplitterOperationCount(t *testing.T) {
	s, err := NewOpenAPISplitter()
	require.NoError(t, err)

	spec := `{"openapi": "3.0.0", "info": {"title": "T"}, "paths": {
	  "/users": {"get": {"summary": "list"}, "post": {"summary": "add"}},
	  "/users/{id}": {"put": {"summary": "edit"}, "delete": {"summary": "drop"}}
	}}`
	docs, err := s.CreateDocuments(spec, map[string]any{}, false)
	require.NoError(t, err)

	require.Len(t, docs, 4)
	var sections []string
	for _, d := range docs {
		sections = append(sections, d.Metadata[document.KeySection].(string))
	}
	assert.Equal(t, []string{"GET /users", "POST /users", "PUT /users/{id}", "DELETE /users/{id}"}, sections)

	meta := document.Metadata{document.KeyFileKey: "users.json"}
	blocks, err := openAPISegmenter{log: logging.Discard()}.SegmentText(spec, meta, false)
	require.NoError(t, err)
	require.Len(t, blocks, 4)
	assert.Equal(t, "endpoint", blocks[0].Metadata[document.KeySubtitle])
	blocks[0].Metadata[document.KeySection] = "changed"
	assert.Equal(t, "POST /users", blocks[1].Metadata[document.KeySection])
	assert.Equal(t, document.Metadata{document.KeyFileKey: "users.json"}, meta)
}
