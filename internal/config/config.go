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
	Ai       AIConfig
	Rag      RAGConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	TransportLogPath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	OllamaBaseURL     string
	EmbeddingModel    string // e.g. "nomic-embed-text"
	LLMProvider       string // "ollama"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	Temperature       float64
	MaxTokens         int
	GenerationTimeout time.Duration
}

type RAGConfig struct {
	TopK                     int
	SimilarityThreshold      float64
	SearchTimeout            time.Duration
	ContextTokenBudget       int
	MinTruncationTokens      int
	HistoryTurns             int
	IncludeHistory           bool
	PenalizeDroppedCitations bool
	CacheEnabled             bool
	CacheTTL                 time.Duration
}

type SessionConfig struct {
	MaxHistory      int
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			TransportLogPath:   getEnv("TRANSPORT_LOG_PATH", "logs/chat_transport.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.1),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 1024),
			GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", 120*time.Second),
		},
		Rag: RAGConfig{
			TopK:                     getEnvAsInt("RAG_TOP_K", 5),
			SimilarityThreshold:      getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.35),
			SearchTimeout:            getEnvAsDuration("SEARCH_TIMEOUT", 10*time.Second),
			ContextTokenBudget:       getEnvAsInt("RAG_CONTEXT_TOKEN_BUDGET", 3000),
			MinTruncationTokens:      getEnvAsInt("RAG_MIN_TRUNCATION_TOKENS", 200),
			HistoryTurns:             getEnvAsInt("RAG_HISTORY_TURNS", 5),
			IncludeHistory:           getEnvAsBool("RAG_INCLUDE_HISTORY", true),
			PenalizeDroppedCitations: getEnvAsBool("RAG_PENALIZE_DROPPED_CITATIONS", false),
			CacheEnabled:             getEnvAsBool("RAG_CACHE_ENABLED", false),
			CacheTTL:                 getEnvAsDuration("RAG_CACHE_TTL", time.Hour),
		},
		Session: SessionConfig{
			MaxHistory:      getEnvAsInt("SESSION_MAX_HISTORY", 10),
			IdleTTL:         getEnvAsDuration("SESSION_IDLE_TTL", time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
