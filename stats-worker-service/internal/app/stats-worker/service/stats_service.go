package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/metrics"
	"sentimentreviews/pkg/reviewquery"
	"sentimentreviews/pkg/statscache"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/repository"
)

// StatsService пересчитывает агрегаты тональности.
// Снимок в Redis обязателен, запись истории в PostgreSQL - нет.
type StatsService struct {
	reviews   repository.ReviewReader
	snapshots repository.SnapshotRepository
	cache     repository.SnapshotCache
	retention time.Duration
	now       func() time.Time

	// Kafka и cron могут запустить пересчет одновременно
	mu sync.Mutex
}

func NewStatsService(
	reviews repository.ReviewReader,
	snapshots repository.SnapshotRepository,
	cache repository.SnapshotCache,
	retention time.Duration,
) *StatsService {
	return &StatsService{
		reviews:   reviews,
		snapshots: snapshots,
		cache:     cache,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *StatsService) Refresh(ctx context.Context, trigger string) (_ *statscache.Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { metrics.RecordStatsRefresh(trigger, time.Since(start), err) }()

	docs, err := s.reviews.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	aggregates := reviewquery.Aggregate(entity.ToQueryReviews(docs))
	snapshot := &statscache.Snapshot{
		Aggregates:  aggregates,
		GeneratedAt: s.now(),
	}

	if err := s.cache.Set(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store stats snapshot: %w", err)
	}

	history := entity.NewSentimentSnapshot(aggregates, trigger, snapshot.GeneratedAt)
	if err := s.snapshots.Create(ctx, history); err != nil {
		logger.Warn().
			Err(err).
			Str("trigger", trigger).
			Msg("Failed to append stats snapshot to history")
	}

	shares := make(map[string]float64, len(reviewquery.Sentiments))
	for _, sentiment := range reviewquery.Sentiments {
		shares[string(sentiment)] = aggregates.Percentage(sentiment)
	}
	metrics.SetReviewStats(aggregates.Total, aggregates.AverageRating, shares)

	logger.Info().
		Str("trigger", trigger).
		Int("total", aggregates.Total).
		Float64("average_rating", aggregates.AverageRating).
		Dur("duration", time.Since(start)).
		Msg("Sentiment stats refreshed")

	return snapshot, nil
}

func (s *StatsService) PruneHistory(ctx context.Context) (int64, error) {
	before := s.now().Add(-s.retention)

	deleted, err := s.snapshots.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stats history: %w", err)
	}

	logger.Info().
		Int64("deleted", deleted).
		Time("before", before).
		Msg("Stats history pruned")

	return deleted, nil
}

func (s *StatsService) LatestSnapshot(ctx context.Context) (*entity.SentimentSnapshot, error) {
	return s.snapshots.GetLatest(ctx)
}
