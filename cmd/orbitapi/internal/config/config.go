package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). PostgreSQL URLs and SQLite
	// paths are both accepted.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Secret used to sign access tokens (HS256)
	JWTSecret string

	// Access token lifetime
	AccessTokenTTL time.Duration

	// Refresh token lifetime
	RefreshTokenTTL time.Duration

	// Refresh tokens closer than this to expiry are rotated on use
	RefreshRotateWindow time.Duration

	// Allowed CORS origins for browser clients
	CORSOrigins []string

	// Enable debug logging
	Debug bool
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "villageorbit.db"),
		ServerAddr:          getEnv("SERVER_ADDR", "localhost:8080"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		AccessTokenTTL:      getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:     getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		RefreshRotateWindow: getEnvDuration("REFRESH_ROTATE_WINDOW", 7*24*time.Hour),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		Debug:               getEnvBool("DEBUG", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}

	if cfg.RefreshTokenTTL <= cfg.RefreshRotateWindow {
		return nil, fmt.Errorf("REFRESH_TOKEN_TTL must be longer than REFRESH_ROTATE_WINDOW")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns a default value
func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
