package processor

import (
	"context"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/service"

	"github.com/robfig/cron/v3"
)

type CronScheduler struct {
	cron     *cron.Cron
	statsSvc service.StatsServiceInterface
}

func NewCronScheduler(statsSvc service.StatsServiceInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cronLogger{}))

	return &CronScheduler{
		cron:     c,
		statsSvc: statsSvc,
	}
}

// Start регистрирует пересчет и очистку истории, затем сразу считает статистику.
// Пустой pruneSchedule отключает очистку.
func (s *CronScheduler) Start(ctx context.Context, refreshSchedule, pruneSchedule string) error {
	_, err := s.cron.AddFunc(refreshSchedule, func() {
		if _, err := s.statsSvc.Refresh(ctx, entity.TriggerCron); err != nil {
			logger.Error().Err(err).Msg("Scheduled stats refresh failed")
		}
	})
	if err != nil {
		return err
	}

	if pruneSchedule != "" {
		_, err = s.cron.AddFunc(pruneSchedule, func() {
			if _, err := s.statsSvc.PruneHistory(ctx); err != nil {
				logger.Error().Err(err).Msg("Scheduled stats history prune failed")
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.Info().
		Str("refresh_schedule", refreshSchedule).
		Str("prune_schedule", pruneSchedule).
		Msg("Cron scheduler started")

	if _, err := s.statsSvc.Refresh(ctx, entity.TriggerStartup); err != nil {
		logger.Warn().Err(err).Msg("Initial stats refresh failed")
	}

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger направляет логи cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
