package mocks

import (
	"context"
	"time"

	"sentimentreviews/pkg/statscache"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"

	"github.com/stretchr/testify/mock"
)

// MockReviewReader мок для ReviewReader
type MockReviewReader struct {
	mock.Mock
}

func (m *MockReviewReader) GetAll(ctx context.Context) ([]entity.ReviewDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewDocument), args.Error(1)
}

// MockSnapshotRepository мок для SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Create(ctx context.Context, snapshot *entity.SentimentSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) GetLatest(ctx context.Context) (*entity.SentimentSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SentimentSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockSnapshotCache мок для SnapshotCache
type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Set(ctx context.Context, snapshot *statscache.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// MockStatsService мок для StatsServiceInterface
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Refresh(ctx context.Context, trigger string) (*statscache.Snapshot, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*statscache.Snapshot), args.Error(1)
}

func (m *MockStatsService) PruneHistory(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsService) LatestSnapshot(ctx context.Context) (*entity.SentimentSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SentimentSnapshot), args.Error(1)
}
