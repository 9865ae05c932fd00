// Package statscache хранит в Redis последний снимок статистики тональности.
// Снимок пишет stats-worker-service, читает и сбрасывает reviews-service.
package statscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sentimentreviews/pkg/metrics"
	"sentimentreviews/pkg/reviewquery"

	"github.com/redis/go-redis/v9"
)

const (
	SnapshotKey = "stats:sentiment"
	keyPrefix   = "stats"
)

// Snapshot - агрегаты по всем отзывам на момент GeneratedAt
type Snapshot struct {
	Aggregates  reviewquery.Aggregates `json:"aggregates"`
	GeneratedAt time.Time              `json:"generated_at"`
}

type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	service string
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// New создает кеш; ttl = 0 хранит снимок без срока жизни
func New(client *redis.Client, ttl time.Duration, service string) *Cache {
	return &Cache{client: client, ttl: ttl, service: service}
}

// Get возвращает снимок или nil, nil если его нет
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	timer := metrics.NewRedisTimer(c.service, metrics.RedisOpGet)
	data, err := c.client.Get(ctx, SnapshotKey).Bytes()
	timer.ObserveDuration()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(c.service, keyPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(c.service, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get stats snapshot from cache: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats snapshot: %w", err)
	}

	metrics.RecordCacheHit(c.service, keyPrefix)
	return &snapshot, nil
}

func (c *Cache) Set(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal stats snapshot: %w", err)
	}

	timer := metrics.NewRedisTimer(c.service, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := c.client.Set(ctx, SnapshotKey, data, c.ttl).Err(); err != nil {
		metrics.RecordRedisError(c.service, metrics.RedisOpSet)
		return fmt.Errorf("failed to set stats snapshot in cache: %w", err)
	}

	return nil
}

// Invalidate удаляет снимок после изменения отзывов
func (c *Cache) Invalidate(ctx context.Context) error {
	timer := metrics.NewRedisTimer(c.service, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := c.client.Del(ctx, SnapshotKey).Err(); err != nil {
		metrics.RecordRedisError(c.service, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete stats snapshot from cache: %w", err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
