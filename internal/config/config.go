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
	Vector   VectorConfig
	Ai       AIConfig
	Keys     APIKeys
	Timeouts TimeoutConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	IngestedTopicName  string
}

type DatabaseConfig struct {
	Connection string
}

type VectorConfig struct {
	Engine           string // "elasticsearch", "pgvector" or "memory"
	ElasticsearchURL string
}

type AIConfig struct {
	EmbeddingProvider    string // "gemini", "ollama" or "deterministic"
	EmbeddingDimension   int
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "gemini" or "ollama"
	LLMModel             string
	StreamGroupSize      int
}

type APIKeys struct {
	GoogleGemini string
}

type TimeoutConfig struct {
	Store    time.Duration
	Index    time.Duration
	Provider time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			IngestedTopicName:  getEnv("KNOWLEDGE_INGESTED_TOPIC_NAME", "KNOWLEDGE_INGESTED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Vector: VectorConfig{
			Engine:           getEnv("VECTOR_ENGINE", "elasticsearch"),
			ElasticsearchURL: getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingDimension:   getEnvAsInt("EMBEDDING_DIMENSION", 768),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:             getEnv("LLM_MODEL", "gemini-1.5-flash"),
			StreamGroupSize:      getEnvAsInt("STREAM_GROUP_SIZE", 3),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Timeouts: TimeoutConfig{
			Store:    getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
			Index:    getEnvAsDuration("INDEX_TIMEOUT", 10*time.Second),
			Provider: getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
