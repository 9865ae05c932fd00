package repository

import (
	"context"
	"time"

	"sentimentreviews/pkg/statscache"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"
)

// ReviewReader читает отзывы из MongoDB для пересчета статистики
type ReviewReader interface {
	// GetAll возвращает все отзывы в порядке создания
	GetAll(ctx context.Context) ([]entity.ReviewDocument, error)
}

// SnapshotRepository хранит историю снимков статистики в PostgreSQL
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.SentimentSnapshot) error

	// GetLatest возвращает последний снимок или ErrSnapshotNotFound
	GetLatest(ctx context.Context) (*entity.SentimentSnapshot, error)

	// DeleteOlderThan удаляет снимки старше before и возвращает их количество
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// SnapshotCache - текущий снимок в Redis, его читает reviews-service
type SnapshotCache interface {
	Set(ctx context.Context, snapshot *statscache.Snapshot) error
}
