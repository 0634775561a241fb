package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/ragsplit/internal/mcp/tools/types"
)

type ChunkSearchService interface {
	SearchChunks(ctx context.Context, query string, opts types.SearchOptions) ([]types.ChunkResult, error)
}

type SearchChunksHandler struct{ Service ChunkSearchService }

func (h *SearchChunksHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query := stringArgument(args, "query")
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	limit, err := limitArgument(args, "limit", defaultLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := h.Service.SearchChunks(ctx, query, types.SearchOptions{
		Limit:       limit,
		FileKey:     stringArgument(args, "file_key"),
		Category:    stringArgument(args, "category"),
		SubCategory: stringArgument(args, "sub_category"),
	})
	if err != nil {
		return nil, err
	}

	response := types.SearchChunksResponse{Query: query, Results: results, Total: len(results)}
	return mcp.NewToolResultText(string(mustMarshal(response))), nil
}
