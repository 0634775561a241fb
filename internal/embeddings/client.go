// Package embeddings turns chunk text into vectors through an Ollama server.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/roivaz/ragsplit/internal/logging"
)

// DefaultBatchSize is how many texts go into one embedding request.
const DefaultBatchSize = 100

type Config struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration // per request; 0 disables
	BatchSize int
}

type embedder interface {
	CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error)
}

type Client struct {
	model string
	llm   embedder
	to    time.Duration
	batch int
	log   logging.Logger
}

func NewClient(cfg Config, log logging.Logger) (*Client, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		opts = append(opts, ollama.WithServerURL(trimmed))
	}
	opts = append(opts, ollama.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}))

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return newClient(llm, cfg, log), nil
}

func newClient(llm embedder, cfg Config, log logging.Logger) *Client {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Client{
		model: cfg.Model,
		llm:   llm,
		to:    cfg.Timeout,
		batch: batch,
		log:   log.WithName("embeddings").WithValues("model", cfg.Model),
	}
}

func (c *Client) Model() string { return c.model }

// EmbedTexts returns one vector per input, in input order. Inputs are sent
// in batches of the configured size.
func (c *Client) EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided for embedding")
	}
	vectors := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += c.batch {
		end := min(start+c.batch, len(inputs))
		out, err := c.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		vectors = append(vectors, out...)
	}
	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	c.log.Debug("embedding inputs", "count", len(inputs))

	vectors, err := c.llm.CreateEmbedding(ctx, inputs)
	if err != nil {
		annotated := c.annotateError(err)
		c.log.Error(annotated, "embedding failed", "elapsed", time.Since(start).String())
		return nil, fmt.Errorf("create embedding: %w", annotated)
	}
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("create embedding: got %d vectors for %d inputs", len(vectors), len(inputs))
	}

	c.log.Debug("embedded inputs", "count", len(vectors), "elapsed", time.Since(start).String())
	return vectors, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}

func (c *Client) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("embedding call timed out after %s: %w", c.to, err)
	}
	return err
}
