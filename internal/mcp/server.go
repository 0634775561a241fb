package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/ragsplit/internal/db"
	"github.com/roivaz/ragsplit/internal/logging"
)

const (
	ServerName    = "ragsplit"
	ServerVersion = "1.0.0"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
	DB      *db.Database
	log     logging.Logger
}

// toolDefinitions lists every tool the server knows. Only tools with an
// adapter in Config are registered.
func toolDefinitions() map[string]mcp.Tool {
	return map[string]mcp.Tool{
		"search_chunks": mcp.NewTool("search_chunks",
			mcp.WithDescription("Semantic search across ingested document chunks using embeddings. Returns matching chunks with similarity scores and their metadata."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Natural language search query (e.g., 'How is a cluster upgraded?')"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results to return (default: 10)"),
			),
			mcp.WithString("category",
				mcp.Description("Optional: only return chunks of this category (landing folder or repository)"),
			),
			mcp.WithString("sub_category",
				mcp.Description("Optional: only return chunks of this sub category"),
			),
			mcp.WithString("file_key",
				mcp.Description("Optional: only return chunks of this file"),
			),
		),
		"get_file_chunks": mcp.NewTool("get_file_chunks",
			mcp.WithDescription("Return every stored chunk of one file in page and position order."),
			mcp.WithString("file_key",
				mcp.Required(),
				mcp.Description("The file key, as returned by search_chunks"),
			),
		),
		"split_document": mcp.NewTool("split_document",
			mcp.WithDescription("Split a document into retrieval chunks without storing it. The splitter is chosen from the file name extension (txt, md, mdx, html, pdf text, json, yaml)."),
			mcp.WithString("file_name",
				mcp.Required(),
				mcp.Description("File name used to pick the splitter (e.g., 'guide.md', 'api.yaml')"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Full text of the document"),
			),
			mcp.WithBoolean("pretty",
				mcp.Description("Pretty-print OpenAPI chunks (default: false)"),
			),
			mcp.WithObject("metadata",
				mcp.Description("Optional: metadata copied onto every chunk"),
			),
		),
	}
}

func New(cfg Config) *Server {
	log := cfg.Logger.WithName("mcp")
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	defs := toolDefinitions()
	for name, adapter := range cfg.ToolAdapters {
		tool, ok := defs[name]
		if !ok {
			log.Warn("no definition for tool adapter", "tool", name)
			continue
		}
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return adapter.ToolAdapter(ctx, req)
		})
		log.Debug("registered tool", "tool", name)
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
		DB:      cfg.Database,
		log:     log,
	}
}

func (s *Server) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.log.Error(err, "error closing database")
		}
	}
}
