package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/metrics"
	"sentimentreviews/reviews-service/internal/app/reviews/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	serviceName    = "reviews-service"
	collectionName = "reviews"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidReviewID = errors.New("invalid review id")
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает репозиторий и индексы по user_id и created_at
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection(collectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("user_id_created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	}

	// Индексы могут уже существовать, ошибка не критична
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", collectionName).Msg("Failed to create indexes")
	}

	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, collectionName)
	defer func() { timer.Done(err) }()

	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (_ *entity.Review, err error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidReviewID
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, collectionName)
	defer func() { timer.Done(err) }()

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

func (r *reviewRepository) GetAll(ctx context.Context) ([]entity.Review, error) {
	return r.find(ctx, bson.M{})
}

func (r *reviewRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Review, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *reviewRepository) find(ctx context.Context, filter bson.M) (_ []entity.Review, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, collectionName)
	defer func() { timer.Done(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]entity.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, collectionName)
	defer func() { timer.Done(err) }()

	review.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"product_name": review.ProductName,
			"review_text":  review.ReviewText,
			"rating":       review.Rating,
			"sentiment":    review.Sentiment,
			"score":        review.Score,
			"updated_at":   review.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) (err error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidReviewID
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, collectionName)
	defer func() { timer.Done(err) }()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}
