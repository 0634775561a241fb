package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/ragsplit/internal/db"
	"github.com/roivaz/ragsplit/internal/embeddings"
	"github.com/roivaz/ragsplit/internal/ingest"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/mcp/tools"
	"github.com/roivaz/ragsplit/internal/splitter"
)

const EndpointPath = "/mcp/jsonrpc"

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
	Database     *db.Database
	Logger       logging.Logger
}

// HTTPOptions are the transport options every server uses.
func HTTPOptions() []server.StreamableHTTPOption {
	return []server.StreamableHTTPOption{
		server.WithEndpointPath(EndpointPath),
		server.WithStateLess(true),
	}
}

// DefaultConfig wires the search tools to postgres and ollama and the split
// tool to a splitter factory built from the segmentation settings.
func DefaultConfig(log logging.Logger) (Config, error) {
	cfg, err := ingest.LoadConfig()
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireStore(); err != nil {
		return Config{}, err
	}

	opts, err := cfg.SplitterOptions(log.WithName("splitter"))
	if err != nil {
		return Config{}, err
	}
	factory, err := splitter.NewFactory(opts...)
	if err != nil {
		return Config{}, fmt.Errorf("build splitters: %w", err)
	}

	database, err := db.NewDatabase(db.Config{DSN: cfg.PostgresURL, Debug: cfg.DBDebug})
	if err != nil {
		return Config{}, fmt.Errorf("connect database: %w", err)
	}

	embedClient, err := embeddings.NewClient(embeddings.Config{
		BaseURL:   cfg.OllamaURL,
		Model:     cfg.EmbeddingModel,
		Timeout:   cfg.LLMCallTimeout,
		BatchSize: cfg.EmbedBatchSize,
	}, log)
	if err != nil {
		_ = database.Close()
		return Config{}, fmt.Errorf("embedding client: %w", err)
	}

	repo := db.NewChunkRepository(database)
	searchService := tools.NewDBSearchService(repo, embedClient)

	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"search_chunks":   &tools.SearchChunksHandler{Service: searchService},
			"get_file_chunks": &tools.GetFileChunksHandler{Service: searchService},
			"split_document":  &tools.SplitDocumentHandler{Splitter: factory},
		},
		Options:  HTTPOptions(),
		Database: database,
		Logger:   log,
	}, nil
}
