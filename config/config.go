/*
Package config loads runtime configuration from the environment.

PURPOSE:
  Centralizes every tunable the server needs. A .env file is loaded when
  present; real environment variables always win, which is what Docker and
  systemd deployments expect.

VARIABLES:
  SERVER_PORT          HTTP listen port (default 8080)
  SERVER_READ_TIMEOUT  Read timeout in seconds (default 30)
  SERVER_WRITE_TIMEOUT Write timeout in seconds (default 30)
  DB_PATH              SQLite database path (default ./data/finance.db)
  SHORTCUT_API_SECRET  Shared secret for the quick-capture endpoint
  CORS_ORIGINS         Comma-separated allowed origins (default *)
  LOG_LEVEL            zap level: debug, info, warn, error (default info)
*/
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Shortcut ShortcutConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Path string
}

type ShortcutConfig struct {
	// APISecret guards the unauthenticated quick-capture endpoint. Empty
	// means the endpoint rejects every request.
	APISecret string
}

type LoggerConfig struct {
	Level string
}

// Load reads configuration from .env (when present) and the environment.
func Load() (*Config, error) {
	// Try the current directory and project root. A missing .env is fine;
	// containerized deployments pass real environment variables.
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			CORSOrigins:  splitOrigins(getEnv("CORS_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/finance.db"),
		},
		Shortcut: ShortcutConfig{
			APISecret: os.Getenv("SHORTCUT_API_SECRET"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
