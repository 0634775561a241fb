package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/roivaz/ragsplit/internal/config"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/splitter"
)

type Config struct {
	PostgresURL    string
	OllamaURL      string
	EmbeddingModel string
	LandingDir     string
	CacheDir       string
	GitHubToken    string
	MigrationsDir  string
	AutoMigrate    bool
	DBDebug        bool
	Workers        int
	EmbedBatchSize int
	LLMCallTimeout time.Duration
	Pretty         bool

	ContextSize    int
	ChunkSize      int
	ChunkOverlap   int
	LengthFunction string
	TokenEncoding  string
	// KeepSeparator is empty when each splitter keeps its own default.
	KeepSeparator string
}

// LoadConfig reads the viper-backed settings. Database and embedding
// settings are checked by RequireStore, since the split command needs
// neither.
func LoadConfig() (Config, error) {
	cfg := Config{
		PostgresURL:    config.PostgresURL(),
		OllamaURL:      config.OllamaURL(),
		EmbeddingModel: config.EmbeddingModel(),
		LandingDir:     config.LandingDir(),
		CacheDir:       config.CacheDir(),
		GitHubToken:    config.GitHubToken(),
		MigrationsDir:  config.MigrationsDir(),
		AutoMigrate:    config.AutoMigrate(),
		DBDebug:        config.DBDebug(),
		Workers:        config.IngestWorkers(),
		EmbedBatchSize: config.EmbedBatchSize(),
		Pretty:         config.PrettyJSON(),
		ContextSize:    config.ContextSize(),
		ChunkSize:      config.ChunkSize(),
		ChunkOverlap:   config.ChunkOverlap(),
		LengthFunction: config.LengthFunction(),
		TokenEncoding:  config.TokenEncoding(),
		KeepSeparator:  config.KeepSeparator(),
	}

	timeout, err := parseDuration(config.LLMCallTimeout(), 2*time.Minute)
	if err != nil {
		return Config{}, &splitter.ConfigError{Field: config.KeyLLMCallTimeout, Reason: err.Error()}
	}
	cfg.LLMCallTimeout = timeout

	if cfg.Workers < 1 {
		return Config{}, &splitter.ConfigError{Field: config.KeyIngestWorkers, Reason: fmt.Sprintf("must be >= 1, got %d", cfg.Workers)}
	}
	return cfg, nil
}

// RequireStore checks the settings needed to embed and persist chunks.
func (c Config) RequireStore() error {
	if strings.TrimSpace(c.PostgresURL) == "" {
		return &splitter.ConfigError{Field: config.KeyPostgresURL, Reason: "is required"}
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return &splitter.ConfigError{Field: config.KeyEmbeddingModel, Reason: "is required"}
	}
	return nil
}

// SplitterOptions turns the segmentation settings into factory options.
func (c Config) SplitterOptions(log logging.Logger) ([]splitter.Option, error) {
	length, err := splitter.LengthByName(c.LengthFunction, c.TokenEncoding)
	if err != nil {
		return nil, err
	}
	opts := []splitter.Option{
		splitter.WithContextSize(c.ContextSize),
		splitter.WithChunkSize(c.ChunkSize),
		splitter.WithChunkOverlap(c.ChunkOverlap),
		splitter.WithLengthFunc(length),
		splitter.WithLogger(log),
	}
	if strings.TrimSpace(c.KeepSeparator) != "" {
		keep, err := splitter.ParseKeepSeparator(c.KeepSeparator)
		if err != nil {
			return nil, err
		}
		opts = append(opts, splitter.WithKeepSeparator(keep))
	}
	return opts, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	return time.ParseDuration(trimmed)
}
