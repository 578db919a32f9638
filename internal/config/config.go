package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port             string
	AllowedOrigins   []string
	LogLevel         string
	DatabaseURL      string
	DatabaseReadURL  string // Read replica URL for SELECT queries
	RedisURL         string
	LocalDBPath      string
	OwnerVisitorID   string // Operator's own device identifier, always excluded
	AdminTokenSecret string
	Environment      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseReadURL:  getEnv("DATABASE_READ_URL", getEnv("DATABASE_URL", "")), // Falls back to write DB if not set
		RedisURL:         getEnv("REDIS_URL", ""),
		LocalDBPath:      getEnv("LOCAL_DB_PATH", "portfolio.db"),
		OwnerVisitorID:   getEnv("OWNER_VISITOR_ID", ""),
		AdminTokenSecret: getEnv("ADMIN_TOKEN_SECRET", ""),
		Environment:      getEnv("ENVIRONMENT", "production"),
	}, nil
}

// HasRemoteStore reports whether a remote database is configured at all.
// An empty DATABASE_URL is a valid state, not an error: the application
// falls back to the local store.
func (c *Config) HasRemoteStore() bool {
	return c.DatabaseURL != "" || c.DatabaseReadURL != ""
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
