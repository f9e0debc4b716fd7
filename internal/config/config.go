package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI. An empty key switches the card generator to the local
	// heuristic strategy instead of calling out.
	GeminiAPIKey      string
	GenerationTimeout int // seconds
	GenerationModel   string

	// Topic research
	ResearchMaxResults int

	// File extraction
	EnableOCR bool

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		DatabaseURL:        mustGetEnv("DATABASE_URL"),
		RedisURL:           mustGetEnv("REDIS_URL"),
		JWTSecret:          mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GenerationTimeout:  getEnvAsIntOrDefault("GENERATION_TIMEOUT_SECONDS", 60),
		GenerationModel:    getEnvOrDefault("GENERATION_MODEL", "gemini-3-flash-preview"),
		ResearchMaxResults: getEnvAsIntOrDefault("RESEARCH_MAX_RESULTS", 2),
		EnableOCR:          getEnvAsBoolOrDefault("ENABLE_OCR", false),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
