package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	// Local UI surface
	HTTPAddr string

	// Admin backend
	BackendURL string

	// Shared state
	StorageBackend string // "redis" or "memory"
	RedisAddr      string
	RedisPass      string
	RedisDB        int

	// Origin namespaces the persisted keys and the sync channel, so agents
	// of different deployments can share one Redis.
	Origin      string
	SyncChannel string

	// Refresh policy fallbacks; the margin can be overridden by the cached
	// Application.Security settings at runtime.
	RefreshMargin time.Duration
	RetryDelay    time.Duration
	MaxRetries    int

	SettingsTTL time.Duration
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:   getEnv("HTTP_ADDR", "127.0.0.1:7315"),
		BackendURL: getEnv("BACKEND_URL", "http://localhost:8000"),

		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:      getEnv("REDIS_PASS", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		Origin:      getEnv("AGENT_ORIGIN", "console"),
		SyncChannel: getEnv("SYNC_CHANNEL", "console:settings-sync"),

		RefreshMargin: getEnvDuration("REFRESH_MARGIN", 60*time.Second),
		RetryDelay:    getEnvDuration("REFRESH_RETRY_DELAY", 5*time.Second),
		MaxRetries:    getEnvInt("REFRESH_MAX_RETRIES", 3),

		SettingsTTL: getEnvDuration("SETTINGS_TTL", 5*time.Minute),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
