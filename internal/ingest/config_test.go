package ingest

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/ragsplit/internal/config"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/splitter"
)

func loadWith(t *testing.T, env map[string]string) (Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for k, v := range env {
		t.Setenv(k, v)
	}
	config.Init(nil)
	return LoadConfig()
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadWith(t, nil)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.LLMCallTimeout)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Empty(t, cfg.KeepSeparator)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := map[string]struct {
		env map[string]string
		key string
	}{
		"bad timeout":  {env: map[string]string{"LLM_CALL_TIMEOUT": "soon"}, key: config.KeyLLMCallTimeout},
		"zero workers": {env: map[string]string{"INGEST_WORKERS": "0"}, key: config.KeyIngestWorkers},
		"negative workers with valid timeout": {
			env: map[string]string{"LLM_CALL_TIMEOUT": "30s", "INGEST_WORKERS": "-1"},
			key: config.KeyIngestWorkers,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadWith(t, tc.env)
			assert.ErrorIs(t, err, splitter.ErrConfig)
			assert.ErrorContains(t, err, tc.key)
		})
	}
}

func TestRequireStore(t *testing.T) {
	cfg := Config{EmbeddingModel: "m"}
	assert.ErrorContains(t, cfg.RequireStore(), config.KeyPostgresURL)

	cfg = Config{PostgresURL: "postgres://localhost/db"}
	assert.ErrorContains(t, cfg.RequireStore(), config.KeyEmbeddingModel)

	cfg.EmbeddingModel = "m"
	assert.NoError(t, cfg.RequireStore())
}

func TestSplitterOptions(t *testing.T) {
	cfg := Config{ChunkSize: 40, LengthFunction: "chars"}
	opts, err := cfg.SplitterOptions(logging.Discard())
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	s, err := splitter.NewTextSplitter(opts...)
	require.NoError(t, err)
	assert.Equal(t, 40, s.Options().ChunkSize)

	cfg.KeepSeparator = "end"
	opts, err = cfg.SplitterOptions(logging.Discard())
	require.NoError(t, err)
	assert.Len(t, opts, 6)

	cfg.KeepSeparator = "sideways"
	_, err = cfg.SplitterOptions(logging.Discard())
	assert.ErrorIs(t, err, splitter.ErrConfig)

	cfg.KeepSeparator = ""
	cfg.LengthFunction = "bytes"
	_, err = cfg.SplitterOptions(logging.Discard())
	assert.Error(t, err)
}
