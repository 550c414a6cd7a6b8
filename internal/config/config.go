package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AI        AIConfig
	Crypto    CryptoConfig
	Quota     QuotaConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AIConfig struct {
	OpenAIKey     string
	OpenAIBaseURL string
	ModelName     string
	GroqKey       string
}

type CryptoConfig struct {
	// EncryptionKey is the process-wide master key for stored credentials.
	// Leaving it empty disables the bring-your-own-key features.
	EncryptionKey string
}

type QuotaConfig struct {
	FreeLimit int64
}

type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	freeLimit, _ := strconv.ParseInt(getEnv("FREE_USAGE_LIMIT", "10"), 10, 64)
	rateLimitMax, _ := strconv.ParseInt(getEnv("RATE_LIMIT_MAX", "1000"), 10, 64)
	rateLimitMins, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_MINUTES", "15"))

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "gutcheck"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		AI: AIConfig{
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_API_BASE_URL", ""),
			ModelName:     getEnv("OPENAI_MODEL_NAME", "gpt-4o-mini"),
			GroqKey:       getEnv("GROQ_API_KEY", ""),
		},
		Crypto: CryptoConfig{
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
		Quota: QuotaConfig{
			FreeLimit: freeLimit,
		},
		RateLimit: RateLimitConfig{
			Window:      time.Duration(rateLimitMins) * time.Minute,
			MaxRequests: rateLimitMax,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
