package config

const (
	KeyPostgresURL     = "postgres_url"
	KeyOllamaURL       = "ollama_url"
	KeyEmbeddingModel  = "embedding_model_name"
	KeyLogLevel        = "log_level"
	KeyCacheDir        = "cache_dir"
	KeyLandingDir      = "landing_dir"
	KeyContextSize     = "context_size"
	KeyChunkSize       = "chunk_size"
	KeyChunkOverlap    = "chunk_overlap"
	KeyLengthFunction  = "length_function"
	KeyTokenEncoding   = "token_encoding"
	KeyKeepSeparator   = "keep_separator"
	KeyPrettyJSON      = "pretty_json"
	KeyIngestWorkers   = "ingest_workers"
	KeyEmbedBatchSize  = "embed_batch_size"
	KeyGitHubToken     = "github_token"
	KeyMigrationsDir   = "db_migrations_dir"
	KeyAutoMigrate     = "auto_migrate"
	KeyLLMCallTimeout  = "llm_call_timeout"
	KeyMCPHost         = "mcp_host"
	KeyMCPPort         = "mcp_port"
	KeyDBDebug         = "db_debug"
	KeyDBAllowDestruct = "db_allow_destructive"
)
