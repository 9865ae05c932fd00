package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки Stats Worker Service
type Config struct {
	MongoDB  MongoDBConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Stats    StatsConfig
	Health   HealthConfig
	Log      LogConfig
}

// MongoDBConfig - база отзывов, из которой считаются агрегаты
type MongoDBConfig struct {
	URI      string
	Database string
}

// DatabaseConfig - PostgreSQL для истории снимков статистики
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - подписка на review_events
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

type StatsConfig struct {
	RefreshSchedule  string        // cron расписание пересчета
	PruneSchedule    string        // cron расписание очистки истории
	HistoryRetention time.Duration // сколько хранить строки sentiment_snapshots
	CacheTTL         time.Duration // 0 - снимок в Redis без срока жизни
}

type HealthConfig struct {
	Addr         string
	MaxStaleness time.Duration // снимок старше считается устаревшим
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

func Load() (*Config, error) {
	cfg := &Config{
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "reviews_db"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stats_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:  getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:    getEnv("KAFKA_TOPIC", "review_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "stats-worker-group"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		Stats: StatsConfig{
			RefreshSchedule:  getEnv("STATS_REFRESH_SCHEDULE", "*/5 * * * *"),
			PruneSchedule:    getEnv("STATS_PRUNE_SCHEDULE", "0 3 * * *"),
			HistoryRetention: getEnvDuration("STATS_HISTORY_RETENTION", 30*24*time.Hour),
			CacheTTL:         getEnvDuration("STATS_CACHE_TTL", 0),
		},
		Health: HealthConfig{
			Addr:         getEnv("HEALTH_ADDR", ":8080"),
			MaxStaleness: getEnvDuration("STATS_MAX_STALENESS", 30*time.Minute),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}

	if cfg.Stats.HistoryRetention <= 0 {
		return nil, fmt.Errorf("STATS_HISTORY_RETENTION must be positive")
	}

	return cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

// getEnvList разбирает список через запятую, пустые элементы отбрасываются
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
