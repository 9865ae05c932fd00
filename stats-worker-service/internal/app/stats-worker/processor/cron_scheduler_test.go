package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"sentimentreviews/pkg/statscache"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewCronScheduler(t *testing.T) {
	statsSvc := new(mocks.MockStatsService)

	scheduler := NewCronScheduler(statsSvc)

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, statsSvc, scheduler.statsSvc)
}

func TestCronScheduler_Start_RegistersJobsAndRefreshesImmediately(t *testing.T) {
	statsSvc := new(mocks.MockStatsService)
	scheduler := NewCronScheduler(statsSvc)
	ctx := context.Background()

	statsSvc.On("Refresh", ctx, entity.TriggerStartup).Return(&statscache.Snapshot{}, nil).Once()

	err := scheduler.Start(ctx, "*/5 * * * *", "0 3 * * *")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 2)

	scheduler.Stop()
	statsSvc.AssertExpectations(t)
}

func TestCronScheduler_Start_WithoutPrune(t *testing.T) {
	statsSvc := new(mocks.MockStatsService)
	scheduler := NewCronScheduler(statsSvc)
	ctx := context.Background()

	statsSvc.On("Refresh", ctx, entity.TriggerStartup).Return(&statscache.Snapshot{}, nil)

	err := scheduler.Start(ctx, "@every 1h", "")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	scheduler.Stop()
}

func TestCronScheduler_Start_InitialRefreshErrorIsNotFatal(t *testing.T) {
	statsSvc := new(mocks.MockStatsService)
	scheduler := NewCronScheduler(statsSvc)
	ctx := context.Background()

	statsSvc.On("Refresh", ctx, entity.TriggerStartup).Return(nil, errors.New("mongo down"))

	err := scheduler.Start(ctx, "*/5 * * * *", "")

	assert.NoError(t, err)
	scheduler.Stop()
	statsSvc.AssertExpectations(t)
}

func TestCronScheduler_Start_InvalidRefreshSchedule(t *testing.T) {
	statsSvc := new(mocks.MockStatsService)
	scheduler := NewCronScheduler(statsSvc)

	err := scheduler.Start(context.Background(), "invalid cron expression", "")

	assert.Error(t, err)
	statsSvc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestCronScheduler_Start_InvalidPruneSchedule(t *testing.T) {
	statsSvc := new(mocks.MockStatsService)
	scheduler := NewCronScheduler(statsSvc)

	err := scheduler.Start(context.Background(), "*/5 * * * *", "not a schedule")

	assert.Error(t, err)
	statsSvc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestCronScheduler_JobsRun(t *testing.T) {
	statsSvc := new(mocks.MockStatsService)
	scheduler := NewCronScheduler(statsSvc)
	ctx := context.Background()

	refreshed := make(chan struct{}, 10)
	pruned := make(chan struct{}, 10)

	statsSvc.On("Refresh", ctx, entity.TriggerStartup).Return(&statscache.Snapshot{}, nil)
	statsSvc.On("Refresh", ctx, entity.TriggerCron).Return(&statscache.Snapshot{}, nil).
		Run(func(mock.Arguments) { refreshed <- struct{}{} })
	statsSvc.On("PruneHistory", ctx).Return(int64(0), nil).
		Run(func(mock.Arguments) { pruned <- struct{}{} })

	err := scheduler.Start(ctx, "@every 1s", "@every 1s")
	assert.NoError(t, err)
	defer scheduler.Stop()

	for _, ch := range []chan struct{}{refreshed, pruned} {
		select {
		case <-ch:
		case <-time.After(3 * time.Second):
			t.Fatal("scheduled job did not run")
		}
	}
}
