package infrastructure

import (
	"context"

	"sentimentreviews/pkg/statscache"
	"sentimentreviews/reviews-service/internal/app/reviews/entity"
)

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// SentimentClassifier определяет тональность текста отзыва (внешний сервис)
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (*entity.Classification, error)
}

// StatsCache - снимок статистики тональности в Redis
type StatsCache interface {
	Get(ctx context.Context) (*statscache.Snapshot, error)
	Set(ctx context.Context, snapshot *statscache.Snapshot) error
	Invalidate(ctx context.Context) error
}
