package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvFile is loaded into the environment before flags and defaults apply.
const EnvFile = "manifests/config.env"

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(EnvFile)
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyOllamaURL, "http://localhost:11434")
	viper.SetDefault(KeyEmbeddingModel, "nomic-embed-text")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyCacheDir, "ignore/cache")
	viper.SetDefault(KeyLandingDir, "ignore/landing")
	viper.SetDefault(KeyContextSize, 0)
	viper.SetDefault(KeyChunkSize, 1000)
	viper.SetDefault(KeyChunkOverlap, 0)
	viper.SetDefault(KeyLengthFunction, "chars")
	viper.SetDefault(KeyTokenEncoding, "cl100k_base")
	viper.SetDefault(KeyKeepSeparator, "")
	viper.SetDefault(KeyPrettyJSON, false)
	viper.SetDefault(KeyIngestWorkers, 4)
	viper.SetDefault(KeyEmbedBatchSize, 100)
	viper.SetDefault(KeyAutoMigrate, false)
	viper.SetDefault(KeyLLMCallTimeout, "2m")
	viper.SetDefault(KeyMCPHost, "0.0.0.0")
	viper.SetDefault(KeyMCPPort, 8000)
	viper.SetDefault(KeyDBDebug, false)
	viper.SetDefault(KeyDBAllowDestruct, "no")
}

func PostgresURL() string    { return viper.GetString(KeyPostgresURL) }
func OllamaURL() string      { return viper.GetString(KeyOllamaURL) }
func EmbeddingModel() string { return viper.GetString(KeyEmbeddingModel) }
func LogLevel() string       { return viper.GetString(KeyLogLevel) }
func CacheDir() string       { return viper.GetString(KeyCacheDir) }
func LandingDir() string     { return viper.GetString(KeyLandingDir) }
func ContextSize() int       { return viper.GetInt(KeyContextSize) }
func ChunkSize() int         { return viper.GetInt(KeyChunkSize) }
func ChunkOverlap() int      { return viper.GetInt(KeyChunkOverlap) }
func LengthFunction() string { return viper.GetString(KeyLengthFunction) }
func TokenEncoding() string  { return viper.GetString(KeyTokenEncoding) }
func KeepSeparator() string  { return viper.GetString(KeyKeepSeparator) }
func PrettyJSON() bool       { return viper.GetBool(KeyPrettyJSON) }
func IngestWorkers() int     { return viper.GetInt(KeyIngestWorkers) }
func EmbedBatchSize() int    { return viper.GetInt(KeyEmbedBatchSize) }
func GitHubToken() string    { return viper.GetString(KeyGitHubToken) }
func MigrationsDir() string  { return viper.GetString(KeyMigrationsDir) }
func AutoMigrate() bool      { return viper.GetBool(KeyAutoMigrate) }
func LLMCallTimeout() string { return viper.GetString(KeyLLMCallTimeout) }
func MCPHost() string        { return viper.GetString(KeyMCPHost) }
func MCPPort() int           { return viper.GetInt(KeyMCPPort) }
func DBDebug() bool          { return viper.GetBool(KeyDBDebug) }
func AllowDestructive() bool { return viper.GetString(KeyDBAllowDestruct) == "yes" }
