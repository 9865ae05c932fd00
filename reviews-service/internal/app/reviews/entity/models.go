package entity

import (
	"time"

	"sentimentreviews/pkg/reviewquery"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID          primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	UserID      string                `json:"user_id" bson:"user_id"` // UUID пользователя из сервиса авторизации
	ProductName string                `json:"product_name" bson:"product_name"`
	ReviewText  string                `json:"review_text" bson:"review_text"`
	Rating      int                   `json:"rating" bson:"rating"`       // от 1 до 5
	Sentiment   reviewquery.Sentiment `json:"sentiment" bson:"sentiment"` // выставляет классификатор
	Score       float64               `json:"score" bson:"score"`
	CreatedAt   time.Time             `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at" bson:"updated_at"`
}

// ToQueryReview переводит документ в модель движка запросов
func (r *Review) ToQueryReview() reviewquery.Review {
	return reviewquery.Review{
		ID:          r.ID.Hex(),
		OwnerID:     r.UserID,
		ProductName: r.ProductName,
		ReviewText:  r.ReviewText,
		Rating:      r.Rating,
		Sentiment:   r.Sentiment,
		Score:       r.Score,
		CreatedAt:   r.CreatedAt,
	}
}

func ToQueryReviews(reviews []Review) []reviewquery.Review {
	result := make([]reviewquery.Review, 0, len(reviews))
	for i := range reviews {
		result = append(result, reviews[i].ToQueryReview())
	}
	return result
}

// Classification - ответ классификатора тональности
type Classification struct {
	Sentiment reviewquery.Sentiment `json:"sentiment"`
	Score     float64               `json:"score"`
}

type ReviewEventType string

const (
	EventReviewCreated ReviewEventType = "REVIEW_CREATED"
	EventReviewUpdated ReviewEventType = "REVIEW_UPDATED"
	EventReviewDeleted ReviewEventType = "REVIEW_DELETED"
)

type ReviewEvent struct {
	EventID     string                `json:"event_id"`
	EventType   ReviewEventType       `json:"event_type"`
	ReviewID    string                `json:"review_id"`
	UserID      string                `json:"user_id"`
	ProductName string                `json:"product_name,omitempty"`
	Rating      int                   `json:"rating,omitempty"`
	Sentiment   reviewquery.Sentiment `json:"sentiment,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
}
