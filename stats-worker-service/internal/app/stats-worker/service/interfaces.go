package service

import (
	"context"

	"sentimentreviews/pkg/statscache"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"
)

// StatsServiceInterface определяет пересчет и хранение статистики тональности
type StatsServiceInterface interface {
	// Refresh пересчитывает агрегаты по всем отзывам и публикует снимок
	Refresh(ctx context.Context, trigger string) (*statscache.Snapshot, error)
	// PruneHistory удаляет устаревшие строки истории
	PruneHistory(ctx context.Context) (int64, error)
	// LatestSnapshot возвращает последнюю запись истории
	LatestSnapshot(ctx context.Context) (*entity.SentimentSnapshot, error)
}
