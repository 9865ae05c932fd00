package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentimentreviews/pkg/metrics"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"

	"gorm.io/gorm"
)

var ErrSnapshotNotFound = errors.New("sentiment snapshot not found")

// snapshotRepository реализует SnapshotRepository через GORM
type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *entity.SentimentSnapshot) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, snapshotsTable)
	defer func() { timer.Done(err) }()

	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to create sentiment snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) GetLatest(ctx context.Context) (_ *entity.SentimentSnapshot, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, snapshotsTable)
	defer func() {
		if errors.Is(err, ErrSnapshotNotFound) {
			timer.ObserveDuration()
			return
		}
		timer.Done(err)
	}()

	var snapshot entity.SentimentSnapshot
	result := r.db.WithContext(ctx).Order("generated_at DESC").First(&snapshot)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest sentiment snapshot: %w", result.Error)
	}

	return &snapshot, nil
}

func (r *snapshotRepository) DeleteOlderThan(ctx context.Context, before time.Time) (_ int64, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, snapshotsTable)
	defer func() { timer.Done(err) }()

	result := r.db.WithContext(ctx).
		Where("generated_at < ?", before).
		Delete(&entity.SentimentSnapshot{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old sentiment snapshots: %w", result.Error)
	}

	return result.RowsAffected, nil
}
