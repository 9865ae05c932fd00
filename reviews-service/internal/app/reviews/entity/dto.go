package entity

import (
	"fmt"
	"strings"
	"time"

	"sentimentreviews/pkg/reviewquery"
)

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	ProductName string `json:"product_name" validate:"required,max=200"`
	ReviewText  string `json:"review_text" validate:"required,min=10,max=500"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
}

// UpdateReviewRequest - частичное обновление, пустые поля не меняются
type UpdateReviewRequest struct {
	ProductName string `json:"product_name" validate:"omitempty,max=200"`
	ReviewText  string `json:"review_text" validate:"omitempty,min=10,max=500"`
	Rating      int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// HasChanges сообщает, передано ли хотя бы одно поле
func (r *UpdateReviewRequest) HasChanges() bool {
	return strings.TrimSpace(r.ProductName) != "" || r.ReviewText != "" || r.Rating != 0
}

// ListReviewsQuery - фильтры и сортировка из query string
type ListReviewsQuery struct {
	Sentiment string `form:"sentiment"`
	Rating    string `form:"rating"`
	Search    string `form:"search"`
	Start     string `form:"start"`
	End       string `form:"end"`
	Sort      string `form:"sort"`
}

// ToCriteria собирает критерии движка; пустые параметры не фильтруют
func (q *ListReviewsQuery) ToCriteria() (reviewquery.Criteria, error) {
	criteria := reviewquery.DefaultCriteria()

	sentiment, err := reviewquery.ParseSentiment(q.Sentiment)
	if err != nil {
		return criteria, err
	}
	rating, err := reviewquery.ParseRatingFilter(q.Rating)
	if err != nil {
		return criteria, err
	}
	sortOrder, err := reviewquery.ParseSortOrder(q.Sort)
	if err != nil {
		return criteria, err
	}
	start, err := ParseDate(q.Start)
	if err != nil {
		return criteria, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := ParseDate(q.End)
	if err != nil {
		return criteria, fmt.Errorf("invalid end date: %w", err)
	}

	return criteria.
		WithSentiment(sentiment).
		WithRating(rating).
		WithSearch(q.Search).
		WithDateRange(start, end).
		WithSort(sortOrder), nil
}

const DateLayout = "2006-01-02"

// ParseDate принимает дату 2006-01-02 (полночь UTC) или RFC3339.
// Пустая строка означает отсутствие границы.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("expected %s or RFC3339, got %q", DateLayout, value)
	}
	return &t, nil
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ReviewListResponse - отзывы после фильтрации и сортировки
type ReviewListResponse struct {
	Reviews []reviewquery.Review `json:"reviews"`
	Total   int                  `json:"total"`
}

type StatsSource string

const (
	StatsSourceCache StatsSource = "cache"
	StatsSourceLive  StatsSource = "live"
)

// SentimentStatsResponse - агрегаты для дашборда
type SentimentStatsResponse struct {
	reviewquery.Aggregates
	GeneratedAt time.Time   `json:"generated_at"`
	Source      StatsSource `json:"source"`
}
