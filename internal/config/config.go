package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL  string
	WorldsDir string

	HistoryLimit int
	PruneCount   int

	GeminiAPIKey string
	GeminiModel  string
	LLMTimeout   time.Duration

	SDLocalURL  string
	SDRemoteURL string
	SDUseRemote bool
	SDTimeout   time.Duration

	TTSURL string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		WorldsDir: getEnv("WORLDS_DIR", "./data/worlds"),

		HistoryLimit: getEnvInt("HISTORY_LIMIT", 12),
		PruneCount:   getEnvInt("PRUNE_COUNT", 4),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTimeout:   getEnvDuration("LLM_TIMEOUT", 60*time.Second),

		SDLocalURL:  getEnv("SD_LOCAL_URL", "http://127.0.0.1:7860"),
		SDRemoteURL: getEnv("SD_REMOTE_URL", ""),
		SDUseRemote: getEnvBool("SD_USE_REMOTE", false),
		SDTimeout:   getEnvDuration("SD_TIMEOUT", 300*time.Second),

		TTSURL: getEnv("TTS_URL", ""),
	}
}

// SDBaseURL returns the image backend to talk to: the remote endpoint
// when configured and enabled, otherwise the local instance.
func (c *Config) SDBaseURL() string {
	if c.SDUseRemote && c.SDRemoteURL != "" {
		return c.SDRemoteURL
	}
	return c.SDLocalURL
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
