// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full service configuration.
type Config struct {
	HTTP struct {
		Addr string
	}

	Auth struct {
		JWTSecret     string
		TokenTTLHours int
	}

	Database struct {
		// Driver selects the claim store backend: "sqlite", "postgres"
		// or "memory".
		Driver      string
		SQLitePath  string
		PostgresDSN string
	}

	Redis struct {
		// Addr empty means the in-memory idempotency store is used.
		Addr     string
		Password string
		DB       int
	}

	Idempotency struct {
		TTL time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.TokenTTLHours = getEnvInt("JWT_TTL_HOURS", 24)
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg.Database.Driver = getEnv("DB_DRIVER", "sqlite")
	cfg.Database.SQLitePath = getEnv("DB_SQLITE_PATH", ".data/claims.db")
	cfg.Database.PostgresDSN = getEnv("DB_POSTGRES_DSN", "")
	switch cfg.Database.Driver {
	case "sqlite", "memory":
	case "postgres":
		if cfg.Database.PostgresDSN == "" {
			return nil, fmt.Errorf("DB_POSTGRES_DSN must be set when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Idempotency.TTL = time.Duration(getEnvInt("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
