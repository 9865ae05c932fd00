package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/statscache"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/config"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/handler"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/processor"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/repository"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "stats-worker-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.AutoMigrate(&entity.SentimentSnapshot{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate sentiment_snapshots")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	// === ПОДКЛЮЧЕНИЕ К MONGODB ===
	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(disconnectCtx)
	}()
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	statsCache := statscache.New(redisClient, cfg.Stats.CacheTTL, serviceName)
	defer statsCache.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	// === СЕРВИСЫ ===
	statsSvc := service.NewStatsService(
		repository.NewReviewReader(mongoClient.Database(cfg.MongoDB.Database)),
		repository.NewSnapshotRepository(db),
		statsCache,
		cfg.Stats.HistoryRetention,
	)

	// === CRON SCHEDULER ===
	cronScheduler := processor.NewCronScheduler(statsSvc)
	if err := cronScheduler.Start(ctx, cfg.Stats.RefreshSchedule, cfg.Stats.PruneSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	// === KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		statsSvc,
	)
	kafkaConsumer.Start(ctx)
	defer kafkaConsumer.Stop()

	// === HEALTHCHECK HTTP СЕРВЕР ===
	healthHandler := handler.NewHealthCheckHandler(
		[]handler.DependencyCheck{
			{Name: "database", Ping: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}},
			{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
			{Name: "redis", Ping: statsCache.Ping},
		},
		statsSvc,
		cfg.Health.MaxStaleness,
	)

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.Health.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("address", cfg.Health.Addr).Msg("Starting healthcheck HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("refresh_schedule", cfg.Stats.RefreshSchedule).
		Msg("Stats Worker Service is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Stats Worker Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Healthcheck server forced to shutdown")
	}

	// отменяем контекст, чтобы consumer вышел из FetchMessage
	cancel()
	logger.Info().Msg("Stats Worker Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя GORM
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= 10; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Int("attempt", attempt).Err(err).Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= 10; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err != nil {
				client.Disconnect(context.Background())
			}
		}
		cancel()

		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warn().Int("attempt", attempt).Err(err).Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, lastErr
}

// connectRedis повторяет подключение, пока Redis поднимается в Docker
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= 10; attempt++ {
		client, err := statscache.NewRedisClient(ctx, cfg.Address(), cfg.Password, cfg.DB)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warn().Int("attempt", attempt).Err(err).Msg("Failed to connect to Redis, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts: %w", lastErr)
}
