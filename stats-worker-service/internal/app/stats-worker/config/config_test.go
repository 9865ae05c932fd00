package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "review_events", cfg.Kafka.Topic)
	assert.Equal(t, "stats-worker-group", cfg.Kafka.GroupID)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "*/5 * * * *", cfg.Stats.RefreshSchedule)
	assert.Equal(t, 30*24*time.Hour, cfg.Stats.HistoryRetention)
	assert.Equal(t, time.Duration(0), cfg.Stats.CacheTTL)
	assert.Equal(t, ":8080", cfg.Health.Addr)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STATS_REFRESH_SCHEDULE", "@every 1m")
	t.Setenv("STATS_CACHE_TTL", "10m")
	t.Setenv("DB_NAME", "stats_test")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "@every 1m", cfg.Stats.RefreshSchedule)
	assert.Equal(t, 10*time.Minute, cfg.Stats.CacheTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Contains(t, cfg.Database.DSN(), "dbname=stats_test")
}

func TestLoad_InvalidRetention(t *testing.T) {
	t.Setenv("STATS_HISTORY_RETENTION", "-1h")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	t.Setenv("STATS_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, time.Duration(0), cfg.Stats.CacheTTL)
}
