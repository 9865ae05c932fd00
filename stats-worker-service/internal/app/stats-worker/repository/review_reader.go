package repository

import (
	"context"
	"fmt"

	"sentimentreviews/pkg/metrics"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	serviceName       = "stats-worker-service"
	reviewsCollection = "reviews"
	snapshotsTable    = "sentiment_snapshots"
)

type reviewReader struct {
	collection *mongo.Collection
}

func NewReviewReader(db *mongo.Database) ReviewReader {
	return &reviewReader{collection: db.Collection(reviewsCollection)}
}

func (r *reviewReader) GetAll(ctx context.Context) (_ []entity.ReviewDocument, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	defer func() { timer.Done(err) }()

	// Порядок создания нужен для стабильного порядка входа в агрегаты
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"review_text": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	docs := make([]entity.ReviewDocument, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return docs, nil
}
