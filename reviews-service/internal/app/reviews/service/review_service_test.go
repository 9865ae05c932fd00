package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sentimentreviews/pkg/reviewquery"
	"sentimentreviews/pkg/statscache"
	"sentimentreviews/reviews-service/internal/app/reviews/entity"
	"sentimentreviews/reviews-service/internal/app/reviews/repository"
	"sentimentreviews/reviews-service/internal/app/reviews/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testDeps struct {
	repo       *mocks.MockReviewRepository
	producer   *mocks.MockMessagePublisher
	classifier *mocks.MockSentimentClassifier
	cache      *mocks.MockStatsCache
	service    *ReviewService
}

func newTestDeps() *testDeps {
	d := &testDeps{
		repo:       new(mocks.MockReviewRepository),
		producer:   &mocks.MockMessagePublisher{Messages: make([][]byte, 0)},
		classifier: new(mocks.MockSentimentClassifier),
		cache:      new(mocks.MockStatsCache),
	}
	d.service = NewReviewService(d.repo, d.producer, d.classifier, d.cache)
	return d
}

func sampleReviews() []entity.Review {
	return []entity.Review{
		{ID: primitive.NewObjectID(), UserID: "user-1", ProductName: "iPhone 15", Rating: 5, Sentiment: reviewquery.SentimentPositive, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: primitive.NewObjectID(), UserID: "user-2", ProductName: "Laptop", Rating: 2, Sentiment: reviewquery.SentimentNegative, CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: primitive.NewObjectID(), UserID: "user-1", ProductName: "Headphones", Rating: 4, Sentiment: reviewquery.SentimentNeutral, CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
}

// ===================== CreateReview =====================

func TestCreateReview_Success(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	req := &entity.CreateReviewRequest{ProductName: "  Headphones ", ReviewText: "Great sound and comfy", Rating: 5}

	d.classifier.On("Classify", ctx, req.ReviewText).Return(&entity.Classification{Sentiment: reviewquery.SentimentPositive, Score: 0.87}, nil)
	d.repo.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil).Run(func(args mock.Arguments) {
		review := args.Get(1).(*entity.Review)
		review.ID = primitive.NewObjectID()
	})
	d.producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	d.cache.On("Invalidate", ctx).Return(nil)

	result, err := d.service.CreateReview(ctx, "user-123", req)

	require.NoError(t, err)
	assert.Equal(t, "user-123", result.UserID)
	assert.Equal(t, "Headphones", result.ProductName)
	assert.Equal(t, reviewquery.SentimentPositive, result.Sentiment)
	assert.Equal(t, 0.87, result.Score)

	require.Len(t, d.producer.Messages, 1)
	var event entity.ReviewEvent
	require.NoError(t, json.Unmarshal(d.producer.Messages[0], &event))
	assert.Equal(t, entity.EventReviewCreated, event.EventType)
	assert.Equal(t, result.ID.Hex(), event.ReviewID)
	assert.Equal(t, reviewquery.SentimentPositive, event.Sentiment)
	assert.NotEmpty(t, event.EventID)

	d.producer.AssertCalled(t, "PublishMessage", ctx, result.ID.Hex(), mock.Anything)
	d.cache.AssertExpectations(t)
}

func TestCreateReview_ClassifierUnavailable(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	req := &entity.CreateReviewRequest{ProductName: "Laptop", ReviewText: "Fans are very loud", Rating: 2}

	d.classifier.On("Classify", ctx, req.ReviewText).Return(nil, errors.New("circuit breaker is open"))

	result, err := d.service.CreateReview(ctx, "user-123", req)

	assert.ErrorIs(t, err, ErrClassifierUnavailable)
	assert.Nil(t, result)
	d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, d.producer.Messages)
}

func TestCreateReview_RepoError(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	req := &entity.CreateReviewRequest{ProductName: "Laptop", ReviewText: "Good keyboard overall", Rating: 4}

	d.classifier.On("Classify", ctx, req.ReviewText).Return(&entity.Classification{Sentiment: reviewquery.SentimentPositive}, nil)
	d.repo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

	result, err := d.service.CreateReview(ctx, "user-123", req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, d.producer.Messages)
}

func TestCreateReview_KafkaAndCacheErrorsIgnored(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	req := &entity.CreateReviewRequest{ProductName: "Tablet", ReviewText: "Average screen, fine", Rating: 3}

	d.classifier.On("Classify", ctx, req.ReviewText).Return(&entity.Classification{Sentiment: reviewquery.SentimentNeutral}, nil)
	d.repo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Review).ID = primitive.NewObjectID()
	})
	d.producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka error"))
	d.cache.On("Invalidate", ctx).Return(errors.New("redis error"))

	result, err := d.service.CreateReview(ctx, "user-123", req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

// ===================== List =====================

func TestListReviews_AppliesCriteria(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	d.repo.On("GetAll", ctx).Return(sampleReviews(), nil)

	result, err := d.service.ListReviews(ctx, reviewquery.DefaultCriteria().WithSearch("PHONE"))

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Headphones", result[0].ProductName)
	assert.Equal(t, "iPhone 15", result[1].ProductName)
}

func TestListReviews_DefaultNewestFirst(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	d.repo.On("GetAll", ctx).Return(sampleReviews(), nil)

	result, err := d.service.ListReviews(ctx, reviewquery.DefaultCriteria())

	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, []string{"Laptop", "Headphones", "iPhone 15"}, []string{result[0].ProductName, result[1].ProductName, result[2].ProductName})
}

func TestListReviews_RepoError(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	d.repo.On("GetAll", ctx).Return(nil, errors.New("db error"))

	result, err := d.service.ListReviews(ctx, reviewquery.DefaultCriteria())

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestListUserReviews_Success(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	var mine []entity.Review
	for _, r := range sampleReviews() {
		if r.UserID == "user-1" {
			mine = append(mine, r)
		}
	}
	d.repo.On("GetByUserID", ctx, "user-1").Return(mine, nil)

	result, err := d.service.ListUserReviews(ctx, "user-1", reviewquery.DefaultCriteria().WithSort(reviewquery.SortHighest))

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 5, result[0].Rating)
	assert.Equal(t, "user-1", result[1].OwnerID)
}

// ===================== GetReview =====================

func TestGetReview_NotFound(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	reviewID := primitive.NewObjectID().Hex()
	d.repo.On("GetByID", ctx, reviewID).Return(nil, repository.ErrReviewNotFound)

	result, err := d.service.GetReview(ctx, reviewID)

	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Nil(t, result)
}

func TestGetReview_InvalidID(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	d.repo.On("GetByID", ctx, "not-an-id").Return(nil, repository.ErrInvalidReviewID)

	_, err := d.service.GetReview(ctx, "not-an-id")

	assert.ErrorIs(t, err, ErrInvalidReviewID)
}

// ===================== UpdateReview =====================

func TestUpdateReview_RatingOnlyKeepsSentiment(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	review := sampleReviews()[0]
	d.repo.On("GetByID", ctx, review.ID.Hex()).Return(&review, nil)
	d.repo.On("Update", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)
	d.producer.On("PublishMessage", ctx, review.ID.Hex(), mock.Anything).Return(nil)
	d.cache.On("Invalidate", ctx).Return(nil)

	result, err := d.service.UpdateReview(ctx, review.ID.Hex(), "user-1", &entity.UpdateReviewRequest{Rating: 3})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Rating)
	assert.Equal(t, reviewquery.SentimentPositive, result.Sentiment)
	d.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)

	var event entity.ReviewEvent
	require.NoError(t, json.Unmarshal(d.producer.Messages[0], &event))
	assert.Equal(t, entity.EventReviewUpdated, event.EventType)
}

func TestUpdateReview_TextChangeReclassifies(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	review := sampleReviews()[0]
	newText := "Screen cracked in a week"
	d.repo.On("GetByID", ctx, review.ID.Hex()).Return(&review, nil)
	d.classifier.On("Classify", ctx, newText).Return(&entity.Classification{Sentiment: reviewquery.SentimentNegative, Score: -0.7}, nil)
	d.repo.On("Update", ctx, mock.Anything).Return(nil)
	d.producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	d.cache.On("Invalidate", ctx).Return(nil)

	result, err := d.service.UpdateReview(ctx, review.ID.Hex(), "user-1", &entity.UpdateReviewRequest{ReviewText: newText})

	require.NoError(t, err)
	assert.Equal(t, newText, result.ReviewText)
	assert.Equal(t, reviewquery.SentimentNegative, result.Sentiment)
	assert.Equal(t, -0.7, result.Score)
}

func TestUpdateReview_ClassifierUnavailable(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	review := sampleReviews()[0]
	d.repo.On("GetByID", ctx, review.ID.Hex()).Return(&review, nil)
	d.classifier.On("Classify", ctx, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := d.service.UpdateReview(ctx, review.ID.Hex(), "user-1", &entity.UpdateReviewRequest{ReviewText: "Changed my mind about it"})

	assert.ErrorIs(t, err, ErrClassifierUnavailable)
	d.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateReview_NotOwner(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	review := sampleReviews()[1]
	d.repo.On("GetByID", ctx, review.ID.Hex()).Return(&review, nil)

	result, err := d.service.UpdateReview(ctx, review.ID.Hex(), "user-1", &entity.UpdateReviewRequest{Rating: 5})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, result)
	d.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateReview_NotFound(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	reviewID := primitive.NewObjectID().Hex()
	d.repo.On("GetByID", ctx, reviewID).Return(nil, repository.ErrReviewNotFound)

	_, err := d.service.UpdateReview(ctx, reviewID, "user-1", &entity.UpdateReviewRequest{Rating: 5})

	assert.ErrorIs(t, err, ErrReviewNotFound)
}

// ===================== DeleteReview =====================

func TestDeleteReview_Success(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	review := sampleReviews()[2]
	d.repo.On("GetByID", ctx, review.ID.Hex()).Return(&review, nil)
	d.repo.On("Delete", ctx, review.ID.Hex()).Return(nil)
	d.producer.On("PublishMessage", ctx, review.ID.Hex(), mock.Anything).Return(nil)
	d.cache.On("Invalidate", ctx).Return(nil)

	err := d.service.DeleteReview(ctx, review.ID.Hex(), "user-1")

	require.NoError(t, err)
	var event entity.ReviewEvent
	require.NoError(t, json.Unmarshal(d.producer.Messages[0], &event))
	assert.Equal(t, entity.EventReviewDeleted, event.EventType)
	d.repo.AssertExpectations(t)
	d.cache.AssertExpectations(t)
}

func TestDeleteReview_NotOwner(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	review := sampleReviews()[1]
	d.repo.On("GetByID", ctx, review.ID.Hex()).Return(&review, nil)

	err := d.service.DeleteReview(ctx, review.ID.Hex(), "user-1")

	assert.ErrorIs(t, err, ErrUnauthorized)
	d.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteReview_RaceWithOtherDelete(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	review := sampleReviews()[0]
	d.repo.On("GetByID", ctx, review.ID.Hex()).Return(&review, nil)
	d.repo.On("Delete", ctx, review.ID.Hex()).Return(repository.ErrReviewNotFound)

	err := d.service.DeleteReview(ctx, review.ID.Hex(), "user-1")

	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Empty(t, d.producer.Messages)
}

// ===================== GetSentimentStats =====================

func TestGetSentimentStats_FromCache(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	generated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	snapshot := &statscache.Snapshot{
		Aggregates:  reviewquery.Aggregate(entity.ToQueryReviews(sampleReviews())),
		GeneratedAt: generated,
	}
	d.cache.On("Get", ctx).Return(snapshot, nil)

	stats, err := d.service.GetSentimentStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, entity.StatsSourceCache, stats.Source)
	assert.Equal(t, generated, stats.GeneratedAt)
	assert.Equal(t, 3.7, stats.AverageRating)
	d.repo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestGetSentimentStats_LiveOnMiss(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	d.cache.On("Get", ctx).Return(nil, nil)
	d.repo.On("GetAll", ctx).Return(sampleReviews(), nil)
	d.cache.On("Set", ctx, mock.AnythingOfType("*statscache.Snapshot")).Return(nil)

	stats, err := d.service.GetSentimentStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, entity.StatsSourceLive, stats.Source)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3.7, stats.AverageRating)
	assert.Equal(t, 33.3, stats.Percentage(reviewquery.SentimentPositive))
	d.cache.AssertCalled(t, "Set", ctx, mock.Anything)
}

func TestGetSentimentStats_CacheDownComputesLive(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	d.cache.On("Get", ctx).Return(nil, errors.New("redis down"))
	d.repo.On("GetAll", ctx).Return([]entity.Review{}, nil)
	d.cache.On("Set", ctx, mock.Anything).Return(errors.New("redis down"))

	stats, err := d.service.GetSentimentStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Equal(t, 0.0, stats.Percentage(reviewquery.SentimentNegative))
}

func TestGetSentimentStats_RepoError(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	d.cache.On("Get", ctx).Return(nil, nil)
	d.repo.On("GetAll", ctx).Return(nil, errors.New("db error"))

	stats, err := d.service.GetSentimentStats(ctx)

	assert.Error(t, err)
	assert.Nil(t, stats)
}
