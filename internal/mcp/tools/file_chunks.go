package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/ragsplit/internal/mcp/tools/types"
)

type FileChunksService interface {
	FileChunks(ctx context.Context, fileKey string) ([]types.ChunkResult, error)
}

// GetFileChunksHandler returns every stored chunk of one file in reading
// order.
type GetFileChunksHandler struct {
	Service FileChunksService
}

func (h *GetFileChunksHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileKey := stringArgument(req.GetArguments(), "file_key")
	if fileKey == "" {
		return mcp.NewToolResultError("file_key is required"), nil
	}
	chunks, err := h.Service.FileChunks(ctx, fileKey)
	if err != nil {
		return nil, err
	}
	response := types.FileChunksResponse{FileKey: fileKey, Chunks: chunks, Total: len(chunks)}
	return mcp.NewToolResultText(string(mustMarshal(response))), nil
}
