package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример PromQL: rate(http_requests_total{service="reviews-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - время ответа, бакеты от 1ms до 10s
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Хранилища (MongoDB, PostgreSQL)
// =============================================================================

// DbQueryDuration - время запроса; table - коллекция или таблица
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis (кеш статистики)
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka (события отзывов)
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - operation: produce, consume, decode
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Классификатор тональности
// =============================================================================

// ClassifierRequests - outcome: success, error, rejected (circuit open)
var ClassifierRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "classifier_requests_total",
		Help: "Total number of sentiment classifier requests",
	},
	[]string{"outcome"},
)

var ClassifierDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "classifier_request_duration_seconds",
		Help:    "Duration of sentiment classifier requests",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	},
)

// ClassifierCircuitState - 0 closed, 1 half-open, 2 open
var ClassifierCircuitState = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "classifier_circuit_breaker_state",
		Help: "State of the classifier circuit breaker (0=closed, 1=half-open, 2=open)",
	},
)

// =============================================================================
// Бизнес метрики отзывов
// =============================================================================

var ReviewsCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created",
	},
	[]string{"sentiment"},
)

var ReviewsDeleted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reviews_deleted_total",
		Help: "Total number of reviews deleted",
	},
)

var ReviewsRating = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "reviews_rating",
		Help:    "Distribution of review ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

// StatsRefreshes - пересчёты статистики; trigger: cron, event
var StatsRefreshes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stats_refreshes_total",
		Help: "Total number of sentiment statistics refreshes",
	},
	[]string{"trigger", "status"},
)

var StatsRefreshDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "stats_refresh_duration_seconds",
		Help:    "Duration of sentiment statistics refresh",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	},
)

// SentimentShare - доля тональности в процентах по последнему пересчёту
var SentimentShare = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "reviews_sentiment_share_percent",
		Help: "Share of reviews per sentiment, percent",
	},
	[]string{"sentiment"},
)

var ReviewsAverageRating = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "reviews_average_rating",
		Help: "Average review rating at the last refresh",
	},
)

var ReviewsTotal = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "reviews_total",
		Help: "Number of reviews at the last refresh",
	},
)
