package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/metrics"
	"sentimentreviews/pkg/reviewquery"
	"sentimentreviews/pkg/statscache"
	"sentimentreviews/reviews-service/internal/app/reviews/entity"
	"sentimentreviews/reviews-service/internal/app/reviews/infrastructure"
	"sentimentreviews/reviews-service/internal/app/reviews/repository"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound        = errors.New("review not found")
	ErrInvalidReviewID       = errors.New("invalid review id")
	ErrUnauthorized          = errors.New("unauthorized access to review")
	ErrClassifierUnavailable = errors.New("sentiment classifier unavailable")
)

// ReviewService координирует репозиторий, классификатор, Kafka и кеш статистики
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	kafkaProducer infrastructure.MessagePublisher
	classifier    infrastructure.SentimentClassifier
	statsCache    infrastructure.StatsCache
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	kafkaProducer infrastructure.MessagePublisher,
	classifier infrastructure.SentimentClassifier,
	statsCache infrastructure.StatsCache,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		kafkaProducer: kafkaProducer,
		classifier:    classifier,
		statsCache:    statsCache,
	}
}

// CreateReview создает отзыв:
// 1. Определяет тональность во внешнем классификаторе
// 2. Сохраняет отзыв в MongoDB
// 3. Отправляет REVIEW_CREATED в Kafka и сбрасывает кеш статистики
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	classification, err := s.classify(ctx, req.ReviewText)
	if err != nil {
		return nil, err
	}

	review := &entity.Review{
		UserID:      userID,
		ProductName: strings.TrimSpace(req.ProductName),
		ReviewText:  req.ReviewText,
		Rating:      req.Rating,
		Sentiment:   classification.Sentiment,
		Score:       classification.Score,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.RecordReviewCreated(string(review.Sentiment), review.Rating)
	s.afterChange(ctx, entity.EventReviewCreated, review)

	return review, nil
}

// GetReview получает отзыв по ID
func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to get review")
	}
	return review, nil
}

// ListReviews возвращает все отзывы, отобранные и упорядоченные по критериям
func (s *ReviewService) ListReviews(ctx context.Context, criteria reviewquery.Criteria) ([]reviewquery.Review, error) {
	reviews, err := s.reviewRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviewquery.ApplyQuery(entity.ToQueryReviews(reviews), criteria), nil
}

// ListUserReviews - то же, что ListReviews, но только по отзывам пользователя
func (s *ReviewService) ListUserReviews(ctx context.Context, userID string, criteria reviewquery.Criteria) ([]reviewquery.Review, error) {
	reviews, err := s.reviewRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}
	return reviewquery.ApplyQuery(entity.ToQueryReviews(reviews), criteria), nil
}

// UpdateReview обновляет отзыв автора; при изменении текста тональность
// определяется заново
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to get review")
	}

	if review.UserID != userID {
		return nil, ErrUnauthorized
	}

	if name := strings.TrimSpace(req.ProductName); name != "" {
		review.ProductName = name
	}
	if req.Rating > 0 {
		review.Rating = req.Rating
	}
	if req.ReviewText != "" && req.ReviewText != review.ReviewText {
		classification, err := s.classify(ctx, req.ReviewText)
		if err != nil {
			return nil, err
		}
		review.ReviewText = req.ReviewText
		review.Sentiment = classification.Sentiment
		review.Score = classification.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, mapRepositoryError(err, "failed to update review")
	}

	s.afterChange(ctx, entity.EventReviewUpdated, review)

	return review, nil
}

// DeleteReview удаляет отзыв автора
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, userID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return mapRepositoryError(err, "failed to get review")
	}

	if review.UserID != userID {
		return ErrUnauthorized
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return mapRepositoryError(err, "failed to delete review")
	}

	metrics.ReviewsDeleted.Inc()
	s.afterChange(ctx, entity.EventReviewDeleted, review)

	return nil
}

// GetSentimentStats возвращает снимок из Redis, а при его отсутствии
// считает агрегаты по всем отзывам и кладет результат в кеш
func (s *ReviewService) GetSentimentStats(ctx context.Context) (*entity.SentimentStatsResponse, error) {
	snapshot, err := s.statsCache.Get(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read stats snapshot, computing live")
	}
	if snapshot != nil {
		return &entity.SentimentStatsResponse{
			Aggregates:  snapshot.Aggregates,
			GeneratedAt: snapshot.GeneratedAt,
			Source:      entity.StatsSourceCache,
		}, nil
	}

	reviews, err := s.reviewRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	snapshot = &statscache.Snapshot{
		Aggregates:  reviewquery.Aggregate(entity.ToQueryReviews(reviews)),
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.statsCache.Set(ctx, snapshot); err != nil {
		logger.Warn().Err(err).Msg("Failed to store stats snapshot")
	}

	return &entity.SentimentStatsResponse{
		Aggregates:  snapshot.Aggregates,
		GeneratedAt: snapshot.GeneratedAt,
		Source:      entity.StatsSourceLive,
	}, nil
}

func (s *ReviewService) classify(ctx context.Context, text string) (*entity.Classification, error) {
	classification, err := s.classifier.Classify(ctx, text)
	if err != nil {
		logger.Error().Err(err).Msg("Sentiment classification failed")
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	return classification, nil
}

// afterChange публикует событие и сбрасывает кеш статистики.
// Отзыв уже сохранен, поэтому ошибки только логируются.
func (s *ReviewService) afterChange(ctx context.Context, eventType entity.ReviewEventType, review *entity.Review) {
	event := entity.ReviewEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		ReviewID:    review.ID.Hex(),
		UserID:      review.UserID,
		ProductName: review.ProductName,
		Rating:      review.Rating,
		Sentiment:   review.Sentiment,
		Timestamp:   time.Now().UTC(),
	}

	if err := s.publishReviewEvent(ctx, event); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Str("review_id", event.ReviewID).
			Msg("Failed to publish review event")
	}

	if err := s.statsCache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate stats snapshot")
	}
}

func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	// Ключ = ReviewID, события одного отзыва идут в одну партицию
	if err := s.kafkaProducer.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

func mapRepositoryError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrReviewNotFound):
		return ErrReviewNotFound
	case errors.Is(err, repository.ErrInvalidReviewID):
		return ErrInvalidReviewID
	}
	return fmt.Errorf("%s: %w", msg, err)
}
