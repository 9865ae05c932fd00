package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Kafka      KafkaConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Stats      StatsConfig
	Classifier ClassifierConfig
	CORS       CORSConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host string // по умолчанию 0.0.0.0
	Port string // по умолчанию 8083
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type KafkaConfig struct {
	Brokers []string // host:port
	Topic   string   // топик событий REVIEW_CREATED / REVIEW_UPDATED / REVIEW_DELETED
}

type JWTConfig struct {
	Secret string // должен совпадать с секретом сервиса авторизации
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type StatsConfig struct {
	CacheTTL time.Duration // срок жизни снимка статистики, посчитанного на лету
}

type ClassifierConfig struct {
	URL     string
	Timeout time.Duration

	// Параметры circuit breaker
	BreakerTimeout      time.Duration // сколько breaker остается открытым
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8083"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "reviews_service"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Stats: StatsConfig{
			CacheTTL: getEnvDuration("STATS_CACHE_TTL", 5*time.Minute),
		},
		Classifier: ClassifierConfig{
			URL:                 getEnv("CLASSIFIER_URL", "http://localhost:5000/analyze"),
			Timeout:             getEnvDuration("CLASSIFIER_TIMEOUT", 5*time.Second),
			BreakerTimeout:      getEnvDuration("CLASSIFIER_BREAKER_TIMEOUT", 30*time.Second),
			BreakerMinRequests:  uint32(getEnvInt("CLASSIFIER_BREAKER_MIN_REQUESTS", 5)),
			BreakerFailureRatio: getEnvFloat("CLASSIFIER_BREAKER_FAILURE_RATIO", 0.5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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
func getEnvList(key, defaultValue string) []string {
	var result []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
