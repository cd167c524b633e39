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
	Session  SessionConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string // empty disables event forwarding
	RedisURL           string // empty keeps sessions in process memory
	EventTopic         string
}

type DatabaseConfig struct {
	Connection string // empty disables server-side transcripts
	Verbose    bool
}

type AIConfig struct {
	Backend     string // "http" forwards to ChatURL, "llm" answers with the provider below
	ChatURL     string
	Timeout     time.Duration
	LLMProvider string // "ollama" or "huggingface"
	LLMModel    string
	LLMBaseURL  string
	MaxHistory  int
}

type SessionConfig struct {
	KeyPrefix string
	StoreTTL  time.Duration // lifetime of persisted session records, 0 = forever
	IdleTTL   time.Duration // how long an idle client's controller stays in memory
}

type APIKeys struct {
	JwtSecret   string
	HuggingFace string
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
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			EventTopic:         getEnv("CHAT_EVENT_TOPIC", "LEGALCHAT_EVENTS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Verbose:    getEnvAsBool("DB_VERBOSE", false),
		},
		Ai: AIConfig{
			Backend:     getEnv("AI_BACKEND", "http"),
			ChatURL:     getEnv("AI_CHAT_URL", "http://localhost:8000/api/chat"),
			Timeout:     getEnvAsDuration("AI_TIMEOUT", 90*time.Second),
			LLMProvider: getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:    getEnv("LLM_MODEL", "llama3.1:8b"),
			LLMBaseURL:  getEnv("LLM_BASE_URL", "http://localhost:11434"),
			MaxHistory:  getEnvAsInt("LLM_MAX_HISTORY", 20),
		},
		Session: SessionConfig{
			KeyPrefix: getEnv("SESSION_KEY_PREFIX", "legalchat"),
			StoreTTL:  getEnvAsDuration("SESSION_STORE_TTL", 30*24*time.Hour),
			IdleTTL:   getEnvAsDuration("SESSION_IDLE_TTL", 2*time.Hour),
		},
		Keys: APIKeys{
			JwtSecret:   getEnv("JWT_SECRET", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

// getEnvAsDuration accepts Go durations ("90s", "2h")
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
