package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/metrics"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/service"

	"github.com/segmentio/kafka-go"
)

const serviceName = "stats-worker-service"

// ErrMalformedEvent - сообщение не разбирается, повторная обработка не поможет
var ErrMalformedEvent = errors.New("malformed review event")

// KafkaConsumer пересчитывает статистику по событиям из топика review_events
type KafkaConsumer struct {
	reader   *kafka.Reader
	statsSvc service.StatsServiceInterface
	topic    string
	groupID  string
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	statsSvc service.StatsServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		statsSvc: statsSvc,
		topic:    topic,
		groupID:  groupID,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group_id", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}

				logger.Error().Err(err).Str("topic", c.topic).Msg("Error fetching message")
				metrics.RecordKafkaError(serviceName, c.topic, "fetch")
				time.Sleep(time.Second)
				continue
			}

			start := time.Now()
			err = c.processMessage(ctx, message)
			switch {
			case errors.Is(err, ErrMalformedEvent):
				logger.Warn().
					Err(err).
					Int64("offset", message.Offset).
					Msg("Skipping malformed message")
			case err != nil:
				// offset не коммитим, сообщение будет прочитано повторно
				logger.Error().
					Err(err).
					Int64("offset", message.Offset).
					Int("partition", message.Partition).
					Msg("Error processing message")
				metrics.RecordKafkaError(serviceName, c.topic, "process")
				continue
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).Msg("Error committing message")
				metrics.RecordKafkaError(serviceName, c.topic, "commit")
				continue
			}
			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
		}
	}
}

// processMessage разбирает событие отзыва и пересчитывает статистику.
// Неизвестные типы событий пропускаются без ошибки.
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ReviewEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if !event.IsKnown() {
		logger.Warn().
			Str("event_type", event.EventType).
			Int64("offset", message.Offset).
			Msg("Skipping unknown review event")
		return nil
	}

	logger.Debug().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("review_id", event.ReviewID).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received review event")

	if _, err := c.statsSvc.Refresh(ctx, entity.TriggerEvent); err != nil {
		return fmt.Errorf("failed to refresh stats for %s: %w", event.EventType, err)
	}

	return nil
}

func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
