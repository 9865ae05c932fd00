package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	Log     LogConfig
}

type APIConfig struct {
	ReviewsURL string        // Review Source, по умолчанию http://localhost:8083
	AuthURL    string        // внешний сервис авторизации
	Timeout    time.Duration // таймаут одного HTTP запроса
}

type SessionConfig struct {
	File string // JSON файл с текущим пользователем и токеном
}

type LogConfig struct {
	Level string // логи пишутся в stderr
}

// Load читает значения по умолчанию из окружения; флаги командной строки их перекрывают
func Load() *Config {
	return &Config{
		API: APIConfig{
			ReviewsURL: getEnv("REVIEWS_API_URL", "http://localhost:8083"),
			AuthURL:    getEnv("REVIEWS_AUTH_URL", "http://localhost:8081"),
			Timeout:    getEnvDuration("REVIEWS_API_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			File: getEnv("REVIEWS_SESSION_FILE", defaultSessionFile()),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "warn"),
		},
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "reviews-cli", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
