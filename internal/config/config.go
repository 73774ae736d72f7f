package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Ai       AIConfig
	Agent    AgentConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	IngestLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	JwtSecret          string
	SessionCookieName  string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type CacheConfig struct {
	Driver           string // "redis" or "memory"
	RedisURL         string
	TTL              time.Duration
	LockLease        time.Duration // 0 disables the rebuild lock
	LockWait         time.Duration
	LockPollInterval time.Duration
}

type StorageConfig struct {
	Driver            string // "gcs" or "local"
	Bucket            string
	LocalRoot         string
	DataFolder        string
	ResourceFolder    string
	VectorStoreFolder string
	IndexFile         string
	MetadataFile      string
	DownloadTimeout   time.Duration
	SignedURLTTL      time.Duration
	TempDir           string
}

type AIConfig struct {
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	OpenAIKey         string
	OpenAIBaseURL     string
	OllamaBaseURL     string
	ChunkSize         int
	ChunkOverlap      int
	IngestTopic       string
}

type AgentConfig struct {
	ServiceURL string
	Timeout    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			IngestLogFilePath:  getEnv("INGEST_LOG_FILE_PATH", "logs/ingest.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost,http://localhost:8080,http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "session_id"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Cache: CacheConfig{
			Driver:           getEnv("CACHE_DRIVER", "redis"),
			RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:              getEnvAsDuration("CACHE_TTL", time.Hour),
			LockLease:        getEnvAsDuration("CACHE_LOCK_LEASE", 20*time.Second),
			LockWait:         getEnvAsDuration("CACHE_LOCK_WAIT", 15*time.Second),
			LockPollInterval: getEnvAsDuration("CACHE_LOCK_POLL_INTERVAL", 250*time.Millisecond),
		},
		Storage: StorageConfig{
			Driver:            getEnv("STORAGE_DRIVER", "gcs"),
			Bucket:            getEnv("BUCKET_NAME", ""),
			LocalRoot:         getEnv("STORAGE_LOCAL_ROOT", "./buckets"),
			DataFolder:        getEnv("DATA_FOLDER", "data"),
			ResourceFolder:    getEnv("RESOURCE_FOLDER", "resources"),
			VectorStoreFolder: getEnv("VECTOR_STORE_FOLDER", "vectorStore"),
			IndexFile:         getEnv("VECTOR_INDEX_FILE", "index.bin"),
			MetadataFile:      getEnv("VECTOR_METADATA_FILE", "metadata.bin"),
			DownloadTimeout:   getEnvAsDuration("STORAGE_DOWNLOAD_TIMEOUT", 60*time.Second),
			SignedURLTTL:      getEnvAsDuration("STORAGE_SIGNED_URL_TTL", 15*time.Minute),
			TempDir:           getEnv("STORAGE_TEMP_DIR", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 500),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 50),
			IngestTopic:       getEnv("INGEST_TOPIC_NAME", "BUILD_VECTOR_STORE"),
		},
		Agent: AgentConfig{
			ServiceURL: getEnv("AGENT_SERVICE_URL", "http://localhost:8001"),
			Timeout:    getEnvAsDuration("AGENT_TIMEOUT", 120*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("3600").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
