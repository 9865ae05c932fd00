package reviewquery

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentiment - метка тональности, которую выставляет внешний классификатор.
// Движок не вычисляет её, а только сравнивает.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"

	// SentimentAll отключает фильтр по тональности
	SentimentAll Sentiment = "All"
)

// Sentiments - закрытое множество допустимых меток в порядке отображения
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// Valid сообщает, входит ли метка в закрытое множество
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// ParseSentiment разбирает метку без учета регистра.
// Пустая строка и "all" дают SentimentAll.
func ParseSentiment(value string) (Sentiment, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, string(SentimentAll)) {
		return SentimentAll, nil
	}
	for _, s := range Sentiments {
		if strings.EqualFold(v, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown sentiment %q", value)
}

// Review - отзыв в том виде, в котором его потребляет движок запросов
type Review struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id,omitempty"`
	ProductName string    `json:"product_name"`
	ReviewText  string    `json:"review_text"`
	Rating      int       `json:"rating"`    // от 1 до 5
	Sentiment   Sentiment `json:"sentiment"` // Positive / Negative / Neutral
	Score       float64   `json:"score"`     // только для отображения
	CreatedAt   time.Time `json:"created_at"`
}

// SortOrder - порядок сортировки результата
type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	SortHighest SortOrder = "highest"
	SortLowest  SortOrder = "lowest"
)

// ParseSortOrder разбирает порядок сортировки, пустая строка дает SortNewest
func ParseSortOrder(value string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(value))); o {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortHighest, SortLowest:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", value)
}

// RatingAll отключает фильтр по оценке
const RatingAll = 0

// ParseRatingFilter разбирает фильтр по оценке: "", "all" или число 1..5
func ParseRatingFilter(value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "all") {
		return RatingAll, nil
	}
	rating, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid rating filter %q: %w", value, err)
	}
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating filter %d out of range 1..5", rating)
	}
	return rating, nil
}

// Criteria - набор фильтров и сортировки.
// Значение неизменяемое: при каждом действии пользователя создается новое.
type Criteria struct {
	Sentiment Sentiment
	Rating    int
	Search    string
	Start     *time.Time // включительно
	End       *time.Time // включительно
	SortBy    SortOrder
}

// DefaultCriteria возвращает критерии по умолчанию: All, All, "", без дат, newest
func DefaultCriteria() Criteria {
	return Criteria{
		Sentiment: SentimentAll,
		Rating:    RatingAll,
		SortBy:    SortNewest,
	}
}

// WithSentiment и остальные With* возвращают копию с одним измененным полем
func (c Criteria) WithSentiment(s Sentiment) Criteria {
	c.Sentiment = s
	return c
}

func (c Criteria) WithRating(rating int) Criteria {
	c.Rating = rating
	return c
}

func (c Criteria) WithSearch(query string) Criteria {
	c.Search = query
	return c
}

func (c Criteria) WithDateRange(start, end *time.Time) Criteria {
	c.Start = start
	c.End = end
	return c
}

func (c Criteria) WithSort(order SortOrder) Criteria {
	c.SortBy = order
	return c
}

// Equal сравнивает критерии по значению (даты сравниваются как моменты времени)
func (c Criteria) Equal(other Criteria) bool {
	return c.Sentiment == other.Sentiment &&
		c.Rating == other.Rating &&
		c.Search == other.Search &&
		c.SortBy == other.SortBy &&
		sameInstant(c.Start, other.Start) &&
		sameInstant(c.End, other.End)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
