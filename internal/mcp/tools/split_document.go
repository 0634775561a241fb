package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/mcp/tools/types"
	"github.com/roivaz/ragsplit/internal/splitter"
)

// DocumentSplitter is satisfied by *splitter.Factory.
type DocumentSplitter interface {
	Split(name, text string, metadata map[string]any, pretty bool) ([]document.Document, error)
}

// SplitDocumentHandler segments text sent by the client without storing it.
// The file name only selects the splitter.
type SplitDocumentHandler struct {
	Splitter DocumentSplitter
}

func (h *SplitDocumentHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := stringArgument(args, "file_name")
	if name == "" {
		return mcp.NewToolResultError("file_name is required"), nil
	}
	text, _ := args["text"].(string)
	pretty, _ := args["pretty"].(bool)

	metadata := map[string]any{document.KeyFileKey: name}
	if extra, ok := args["metadata"].(map[string]any); ok {
		for k, v := range extra {
			metadata[k] = v
		}
	}

	docs, err := h.Splitter.Split(name, text, metadata, pretty)
	switch {
	case errors.Is(err, splitter.ErrUnsupportedFormat), errors.Is(err, splitter.ErrParse):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return nil, err
	}

	rows := document.NewRows(docs)
	response := types.SplitDocumentResponse{FileName: name, Rows: rows, Total: len(rows)}
	return mcp.NewToolResultText(string(mustMarshal(response))), nil
}
