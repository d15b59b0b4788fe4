// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion       string
	LogLevel         string
	MetricsNamespace string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL lookups (airlines, equivalent positions)
	PostgresURI string

	// Redis legacy cache and invalidation relay
	RedisURL            string
	LegacyCacheEnabled  bool
	InvalidationChannel string

	// Invalidation
	InvalidationWindow time.Duration
	RefreshInterval    time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:       getEnv("APP_VERSION", "1.0.0"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "delegations"),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "delegations"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		RedisURL:            getEnv("REDIS_URL", ""),
		LegacyCacheEnabled:  getEnvAsBool("LEGACY_CACHE_ENABLED", true),
		InvalidationChannel: getEnv("INVALIDATION_CHANNEL", "delegations:invalidations"),

		InvalidationWindow: time.Duration(getEnvAsInt("INVALIDATION_WINDOW_MS", 100)) * time.Millisecond,
		RefreshInterval:    time.Duration(getEnvAsInt("REFRESH_INTERVAL", 300)) * time.Second,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
