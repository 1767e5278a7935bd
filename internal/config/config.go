package config

import (
	"log/slog"
	"os"
	"strings"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

type Config struct {
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from the environment, falling back to defaults.
func Load() Config {
	return Config{
		LogLevel:  parseLogLevel(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat: getEnv("LOG_FORMAT", defaultLogFormat),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return strings.ToLower(value)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
