package metrics

import (
	"time"
)

type RedisOperation string

const (
	RedisOpGet RedisOperation = "get"
	RedisOpSet RedisOperation = "set"
	RedisOpDel RedisOperation = "del"
)

type RedisTimer struct {
	service   string
	operation RedisOperation
	start     time.Time
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{service: service, operation: op, start: time.Now()}
}

func (rt *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(time.Since(rt.start).Seconds())
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

func RecordKafkaMessageConsumed(service, topic, group string, processingDuration time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(processingDuration.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{service: service, topic: topic, start: time.Now()}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	RecordKafkaError(kt.service, kt.topic, "produce")
}

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
	DbOpDelete DbOperation = "delete"
)

type DbTimer struct {
	service   string
	operation DbOperation
	table     string
	start     time.Time
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{service: service, operation: op, table: table, start: time.Now()}
}

func (dt *DbTimer) ObserveDuration() {
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(time.Since(dt.start).Seconds())
}

// Done фиксирует длительность и, если err != nil, ошибку операции
func (dt *DbTimer) Done(err error) {
	dt.ObserveDuration()
	if err != nil {
		DbErrors.WithLabelValues(dt.service, string(dt.operation)).Inc()
	}
}

// ClassifierOutcome - исход запроса к классификатору
type ClassifierOutcome string

const (
	ClassifierSuccess  ClassifierOutcome = "success"
	ClassifierError    ClassifierOutcome = "error"
	ClassifierRejected ClassifierOutcome = "rejected"
)

func RecordClassifierRequest(outcome ClassifierOutcome, duration time.Duration) {
	ClassifierRequests.WithLabelValues(string(outcome)).Inc()
	if outcome != ClassifierRejected {
		ClassifierDuration.Observe(duration.Seconds())
	}
}

func RecordReviewCreated(sentiment string, rating int) {
	ReviewsCreated.WithLabelValues(sentiment).Inc()
	ReviewsRating.Observe(float64(rating))
}

func RecordStatsRefresh(trigger string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	StatsRefreshes.WithLabelValues(trigger, status).Inc()
	StatsRefreshDuration.Observe(duration.Seconds())
}

// SetReviewStats выставляет gauge'и по последнему снимку статистики
func SetReviewStats(total int, averageRating float64, shares map[string]float64) {
	ReviewsTotal.Set(float64(total))
	ReviewsAverageRating.Set(averageRating)
	for sentiment, share := range shares {
		SentimentShare.WithLabelValues(sentiment).Set(share)
	}
}
