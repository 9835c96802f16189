package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/workhive/notify/internal/shared/infrastructure/database"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database database.PostgresConfig
	Redis    database.RedisConfig
	JWT      JWTConfig
	Notify   NotifyConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// NotifyConfig holds the notification pipeline tunables.
type NotifyConfig struct {
	// UseRedisDelivery turns on cross-instance push via Redis pub/sub.
	UseRedisDelivery bool
	// PushTimeout bounds the best-effort delivery publish after a dispatch.
	PushTimeout time.Duration
	// RetentionMaxAge is how long read notifications are kept.
	RetentionMaxAge time.Duration
	// PurgeInterval is how often the retention sweep runs.
	PurgeInterval time.Duration
	// SourceTimeout bounds each unread aggregator source query.
	SourceTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "workhive"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: database.RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-dev-secret"),
			Expiry: parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		},
		Notify: NotifyConfig{
			UseRedisDelivery: getEnv("NOTIFY_REDIS_DELIVERY", "true") == "true",
			PushTimeout:      parseDuration(getEnv("NOTIFY_PUSH_TIMEOUT", "2s"), 2*time.Second),
			RetentionMaxAge:  parseDuration(getEnv("NOTIFY_RETENTION_AGE", "2160h"), 90*24*time.Hour),
			PurgeInterval:    parseDuration(getEnv("NOTIFY_PURGE_INTERVAL", "24h"), 24*time.Hour),
			SourceTimeout:    parseDuration(getEnv("NOTIFY_SOURCE_TIMEOUT", "3s"), 3*time.Second),
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
