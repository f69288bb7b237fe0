package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Limits   LimitsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI       string
	ProcessTopic string // Background pipeline topic
	EmbedTopic   string // Embedding indexer topic
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string // e.g. "gpt-4o-mini", "llama3"
	LLMBaseURL        string
	OllamaBaseURL     string
	TranscribeModel   string // e.g. "whisper-1"
	EmbeddingProvider string // "openai" or "ollama"
	OllamaEmbedModel  string
	OpenAIEmbedModel  string
}

type LimitsConfig struct {
	MinRecordingSeconds int // recordings shorter than this are rejected
	MinTranscriptWords  int // transcripts thinner than this are rejected
	FreeStartingCredits int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			// Read into config here, validated only at call time inside the
			// providers. No startup fail-fast.
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			ProcessTopic: getEnv("PROCESS_NOTE_TOPIC_NAME", "PROCESS_NOTE"),
			EmbedTopic:   getEnv("EMBED_NOTE_CONTENT_TOPIC_NAME", "EMBED_NOTE_CONTENT"),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TranscribeModel:   getEnv("TRANSCRIBE_MODEL", "whisper-1"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIEmbedModel:  getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Limits: LimitsConfig{
			MinRecordingSeconds: getEnvAsInt("MIN_RECORDING_SECONDS", 3),
			MinTranscriptWords:  getEnvAsInt("MIN_TRANSCRIPT_WORDS", 5),
			FreeStartingCredits: getEnvAsInt("FREE_STARTING_CREDITS", 3),
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
