// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config holds the server's environment-backed settings. Values come from the
// process environment (a .env file is autoloaded by main in development).
type Config struct {
	Port     string
	LogLevel string

	// BlitzSeconds is the starting countdown for blitz-mode rooms.
	BlitzSeconds int
	// ReconnectGraceSeconds is the duel rejoin window after a disconnect.
	ReconnectGraceSeconds int

	// RedisAddr enables the match journal when set; empty disables it.
	RedisAddr    string
	JournalQueue string
}

// Load reads the configuration from the environment with defaults.
func Load() Config {
	return Config{
		Port:                  getEnv("PORT", "3001"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		BlitzSeconds:          getEnvInt("BLITZ_SECONDS", 300),
		ReconnectGraceSeconds: getEnvInt("RECONNECT_GRACE_SECONDS", 30),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		JournalQueue:          os.Getenv("JOURNAL_QUEUE_NAME"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
