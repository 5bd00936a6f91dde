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
	Crypto   CryptoConfig
	Chat     ChatConfig
	Ingest   IngestConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type CryptoConfig struct {
	// MasterKey is mixed into per-topic key derivation. Topic keys themselves
	// live in the topic record and are never rotated.
	MasterKey string
}

type ChatConfig struct {
	TriggerPrefix string
	HistoryLimit  int
	AnswerTimeout time.Duration
	IngestTopic   string
}

type IngestConfig struct {
	ChunkWords   int
	OverlapWords int
	TopK         int
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "gemini"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	GeminiAPIKey      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Crypto: CryptoConfig{
			MasterKey: getEnv("CHAT_MASTER_KEY", ""),
		},
		Chat: ChatConfig{
			TriggerPrefix: getEnv("AI_TRIGGER_PREFIX", "@chatbot"),
			HistoryLimit:  getEnvAsInt("CHAT_HISTORY_LIMIT", 50),
			AnswerTimeout: getEnvAsDuration("AI_ANSWER_TIMEOUT", 20*time.Second),
			IngestTopic:   getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
		},
		Ingest: IngestConfig{
			ChunkWords:   getEnvAsInt("INGEST_CHUNK_WORDS", 500),
			OverlapWords: getEnvAsInt("INGEST_OVERLAP_WORDS", 0),
			TopK:         getEnvAsInt("RETRIEVAL_TOP_K", 3),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
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
