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
	Ai       AIConfig
	Sandbox  SandboxConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TurnTopicName      string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider string // "ollama" or "groq"
	LLMModel    string // e.g. "llama3", "llama-3.3-70b-versatile"
	LLMBaseURL  string
	GroqAPIKey  string
}

type SandboxConfig struct {
	PistonURL string
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
			TurnTopicName:      getEnv("INTERVIEW_TURN_TOPIC_NAME", "INTERVIEW_TURN_COMPLETED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider: getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:    getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:  getEnv("LLM_BASE_URL", ""),
			GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		},
		Sandbox: SandboxConfig{
			PistonURL: getEnv("PISTON_API_URL", "https://emkc.org/api/v2/piston"),
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
