package entity

import (
	"time"

	"sentimentreviews/pkg/reviewquery"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewDocument - документ коллекции reviews, пишет его reviews-service
type ReviewDocument struct {
	ID          primitive.ObjectID    `bson:"_id"`
	UserID      string                `bson:"user_id"`
	ProductName string                `bson:"product_name"`
	ReviewText  string                `bson:"review_text"`
	Rating      int                   `bson:"rating"`
	Sentiment   reviewquery.Sentiment `bson:"sentiment"`
	Score       float64               `bson:"score"`
	CreatedAt   time.Time             `bson:"created_at"`
}

func (d *ReviewDocument) ToQueryReview() reviewquery.Review {
	return reviewquery.Review{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID,
		ProductName: d.ProductName,
		ReviewText:  d.ReviewText,
		Rating:      d.Rating,
		Sentiment:   d.Sentiment,
		Score:       d.Score,
		CreatedAt:   d.CreatedAt,
	}
}

func ToQueryReviews(docs []ReviewDocument) []reviewquery.Review {
	result := make([]reviewquery.Review, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].ToQueryReview())
	}
	return result
}

const (
	EventTypeReviewCreated = "REVIEW_CREATED"
	EventTypeReviewUpdated = "REVIEW_UPDATED"
	EventTypeReviewDeleted = "REVIEW_DELETED"
)

type ReviewEvent struct {
	EventID     string                `json:"event_id"`
	EventType   string                `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID    string                `json:"review_id"`
	UserID      string                `json:"user_id"`
	ProductName string                `json:"product_name,omitempty"`
	Rating      int                   `json:"rating,omitempty"`
	Sentiment   reviewquery.Sentiment `json:"sentiment,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
}

// IsKnown сообщает, влияет ли событие на статистику
func (e *ReviewEvent) IsKnown() bool {
	switch e.EventType {
	case EventTypeReviewCreated, EventTypeReviewUpdated, EventTypeReviewDeleted:
		return true
	}
	return false
}

// Источник пересчета статистики
const (
	TriggerStartup = "startup"
	TriggerCron    = "cron"
	TriggerEvent   = "event"
)

// SentimentSnapshot - строка истории статистики в PostgreSQL
type SentimentSnapshot struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Trigger         string      `json:"trigger" gorm:"type:varchar(20);not null"`
	Total           int         `json:"total" gorm:"not null"`
	PositiveCount   int         `json:"positive_count" gorm:"not null"`
	NegativeCount   int         `json:"negative_count" gorm:"not null"`
	NeutralCount    int         `json:"neutral_count" gorm:"not null"`
	PositivePercent float64     `json:"positive_percent" gorm:"type:decimal(5,1);not null"`
	NegativePercent float64     `json:"negative_percent" gorm:"type:decimal(5,1);not null"`
	NeutralPercent  float64     `json:"neutral_percent" gorm:"type:decimal(5,1);not null"`
	AverageRating   float64     `json:"average_rating" gorm:"type:decimal(3,1);not null"`
	RatingCounts    map[int]int `json:"rating_counts" gorm:"serializer:json;type:jsonb"`
	GeneratedAt     time.Time   `json:"generated_at" gorm:"not null;index"`
}

func (SentimentSnapshot) TableName() string {
	return "sentiment_snapshots"
}

// NewSentimentSnapshot раскладывает агрегаты по колонкам истории
func NewSentimentSnapshot(agg reviewquery.Aggregates, trigger string, generatedAt time.Time) *SentimentSnapshot {
	return &SentimentSnapshot{
		ID:              uuid.New(),
		Trigger:         trigger,
		Total:           agg.Total,
		PositiveCount:   agg.SentimentCounts[reviewquery.SentimentPositive],
		NegativeCount:   agg.SentimentCounts[reviewquery.SentimentNegative],
		NeutralCount:    agg.SentimentCounts[reviewquery.SentimentNeutral],
		PositivePercent: agg.Percentage(reviewquery.SentimentPositive),
		NegativePercent: agg.Percentage(reviewquery.SentimentNegative),
		NeutralPercent:  agg.Percentage(reviewquery.SentimentNeutral),
		AverageRating:   agg.AverageRating,
		RatingCounts:    agg.RatingCounts,
		GeneratedAt:     generatedAt,
	}
}
