package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SigningSecret string // Required: HMAC secret for token signing (min 32 bytes)
	Issuer        string // Required: issuer claim stamped into tokens
	Audience      string // Required: audience claim stamped into tokens

	AccessTTL     time.Duration // Optional: standard session lifetime (default: 24h)
	ExtendedTTL   time.Duration // Optional: "remember me" session lifetime (default: 30 days)
	RefreshWindow time.Duration // Optional: window before expiry when refresh activates (default: 1h)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./trailpost.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SigningSecret: os.Getenv("AUTH_SIGNING_SECRET"),
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "trailpost-auth"),
		Audience:      getEnvOrDefault("AUTH_AUDIENCE", "trailpost"),

		AccessTTL:     getEnvDurationOrDefault("AUTH_ACCESS_TTL", 24*time.Hour),
		ExtendedTTL:   getEnvDurationOrDefault("AUTH_EXTENDED_TTL", 30*24*time.Hour),
		RefreshWindow: getEnvDurationOrDefault("AUTH_REFRESH_WINDOW", time.Hour),

		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "trailpost.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
