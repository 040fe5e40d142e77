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
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Mirror   MirrorConfig
	Tracker  TrackerConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
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

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// Enabled reports whether mail delivery is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Email != ""
}

type APIKeys struct {
	OpenAI        string
	HuggingFace   string
	GenerateTopic string // watermill topic for generation jobs
}

type AIConfig struct {
	LLMProvider   string // "openai", "ollama", "huggingface"
	LLMModel      string
	OllamaBaseURL string
	OpenAIBaseURL string
}

type MirrorConfig struct {
	Threshold         int
	RateWindow        time.Duration
	SyncWait          time.Duration
	MaxEntries        int
	PromptTokenBudget int
	LLMTimeout        time.Duration
	StatusCacheTTL    time.Duration
}

type TrackerConfig struct {
	PollInterval    time.Duration
	MaxAttempts     int
	ForegroundRetry time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:8081"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8081"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Oxbow"),
		},
		Keys: APIKeys{
			OpenAI:        getEnv("OPENAI_API_KEY", ""),
			HuggingFace:   getEnv("HUGGINGFACE_API_KEY", ""),
			GenerateTopic: getEnv("MIRROR_GENERATE_TOPIC_NAME", "MIRROR_GENERATE"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Mirror: MirrorConfig{
			Threshold:         getEnvAsInt("MIRROR_THRESHOLD", 10),
			RateWindow:        getEnvAsDuration("MIRROR_RATE_WINDOW", time.Hour),
			SyncWait:          getEnvAsDuration("MIRROR_SYNC_WAIT", 0),
			MaxEntries:        getEnvAsInt("MIRROR_MAX_ENTRIES", 30),
			PromptTokenBudget: getEnvAsInt("MIRROR_PROMPT_TOKEN_BUDGET", 6000),
			LLMTimeout:        getEnvAsDuration("MIRROR_LLM_TIMEOUT", 90*time.Second),
			StatusCacheTTL:    getEnvAsDuration("MIRROR_STATUS_CACHE_TTL", 2*time.Second),
		},
		Tracker: TrackerConfig{
			PollInterval:    getEnvAsDuration("TRACKER_POLL_INTERVAL", 3*time.Second),
			MaxAttempts:     getEnvAsInt("TRACKER_MAX_ATTEMPTS", 80),
			ForegroundRetry: getEnvAsDuration("TRACKER_FOREGROUND_RETRY", 5*time.Second),
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

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
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
