package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/mcp/tools"
	"github.com/roivaz/ragsplit/internal/splitter"
)

type unknownTool struct{}

func (unknownTool) ToolAdapter(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("never"), nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	factory, err := splitter.NewFactory()
	require.NoError(t, err)
	return New(Config{
		ToolAdapters: map[string]ToolAdapter{
			"split_document": &tools.SplitDocumentHandler{Splitter: factory},
			"not_defined":    unknownTool{},
		},
		Options: HTTPOptions(),
		Logger:  logging.Discard(),
	})
}

func call(t *testing.T, s *Server, payload string) string {
	t.Helper()
	resp := s.MCP.HandleMessage(context.Background(), json.RawMessage(payload))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func TestServerListsRegisteredTools(t *testing.T) {
	s := newTestServer(t)
	defer s.Close()

	out := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Contains(t, out, `"split_document"`)
	assert.NotContains(t, out, `"not_defined"`)
	assert.NotContains(t, out, `"search_chunks"`)
}

func TestServerCallsTool(t *testing.T) {
	s := newTestServer(t)

	out := call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"split_document","arguments":{"file_name":"notes.txt","text":"Notes\nBody text."}}}`)
	assert.Contains(t, out, `notes.txt`)
	assert.Contains(t, out, `Body text.`)
}

func TestToolDefinitionsRequireArguments(t *testing.T) {
	defs := toolDefinitions()
	assert.ElementsMatch(t, []string{"query"}, defs["search_chunks"].InputSchema.Required)
	assert.ElementsMatch(t, []string{"file_key"}, defs["get_file_chunks"].InputSchema.Required)
	assert.ElementsMatch(t, []string{"file_name", "text"}, defs["split_document"].InputSchema.Required)
}
