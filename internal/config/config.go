package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Portal PortalConfig
	Ai     AIConfig
	Docs   DocumentConfig
	Agent  AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	DatabaseDSN        string
}

type PortalConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "openai"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	OpenAIEmbedModel  string
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string
}

type DocumentConfig struct {
	VectorStore  string // "memory" or "pgvector"
	ChunkSize    int
	ChunkOverlap int
	SearchTopK   int
	PgvectorDim  int
}

type AgentConfig struct {
	MaxTurns int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			DatabaseDSN:        getEnv("DB_CONNECTION_STRING", ""),
		},
		Portal: PortalConfig{
			BaseURL:        getEnv("PORTAL_BASE_URL", "https://ezedu.kcisbd.com"),
			TimeoutSeconds: getEnvAsInt("PORTAL_TIMEOUT_SECONDS", 10),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIEmbedModel:  getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Docs: DocumentConfig{
			VectorStore:  getEnv("VECTOR_STORE", "memory"),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 800),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 100),
			SearchTopK:   getEnvAsInt("SEARCH_TOP_K", 4),
			PgvectorDim:  getEnvAsInt("PGVECTOR_DIMENSION", 768),
		},
		Agent: AgentConfig{
			MaxTurns: getEnvAsInt("AGENT_MAX_TURNS", 6),
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
