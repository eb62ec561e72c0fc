// Package config resolves the server configuration from environment
// variables at startup.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// DefaultJWTSecret is only acceptable for local development; startup logs a
// warning when it is in effect.
const DefaultJWTSecret = "dev-insecure-jwt-secret-change-me"

// Config holds all server settings.
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	StreamInterval time.Duration
	AllowedOrigin  string
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "data/assistant.db"),
		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		AccessTTL:      time.Duration(getEnvInt("JWT_ACCESS_TTL_MIN", 30)) * time.Minute,
		RefreshTTL:     time.Duration(getEnvInt("JWT_REFRESH_TTL_HOURS", 168)) * time.Hour,
		StreamInterval: time.Duration(getEnvInt("STREAM_INTERVAL_SEC", 5)) * time.Second,
		AllowedOrigin:  getEnv("ALLOWED_ORIGINS", "*"),
	}

	if cfg.JWTSecret == DefaultJWTSecret {
		log.Println("WARNING: JWT_SECRET not set, using insecure development default")
	}
	return cfg
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
