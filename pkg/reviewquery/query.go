package reviewquery

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// ApplyQuery отбирает и упорядочивает отзывы по критериям.
// Входной срез не изменяется, результат - новый срез.
// Фильтры применяются в фиксированном порядке: тональность, оценка,
// поиск по названию товара, диапазон дат; затем устойчивая сортировка.
func ApplyQuery(reviews []Review, c Criteria) []Review {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	result := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if c.Sentiment != "" && c.Sentiment != SentimentAll && r.Sentiment != c.Sentiment {
			continue
		}
		if c.Rating != RatingAll && r.Rating != c.Rating {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.ProductName), search) {
			continue
		}
		if !inDateRange(r, c) {
			continue
		}
		result = append(result, r)
	}

	if less := comparator(c.SortBy); less != nil {
		slices.SortStableFunc(result, less)
	}

	return result
}

// inDateRange проверяет границы включительно.
// Нулевая дата создания не удовлетворяет ни одной заданной границе.
func inDateRange(r Review, c Criteria) bool {
	if c.Start == nil && c.End == nil {
		return true
	}
	if r.CreatedAt.IsZero() {
		return false
	}
	if c.Start != nil && r.CreatedAt.Before(*c.Start) {
		return false
	}
	if c.End != nil && r.CreatedAt.After(*c.End) {
		return false
	}
	return true
}

// comparator возвращает функцию сравнения для порядка сортировки.
// Для неизвестного порядка возвращает nil - исходный порядок сохраняется.
func comparator(order SortOrder) func(a, b Review) int {
	switch order {
	case SortNewest:
		return func(a, b Review) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortOldest:
		return func(a, b Review) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortHighest:
		return func(a, b Review) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortLowest:
		return func(a, b Review) int { return cmp.Compare(a.Rating, b.Rating) }
	}
	return nil
}

// Aggregates - сводная статистика по коллекции отзывов
type Aggregates struct {
	Total                int                   `json:"total"`
	SentimentCounts      map[Sentiment]int     `json:"sentiment_counts"`
	SentimentPercentages map[Sentiment]float64 `json:"sentiment_percentages"`
	RatingCounts         map[int]int           `json:"rating_counts"`
	AverageRating        float64               `json:"average_rating"`
}

// Aggregate считает количество по тональности и оценкам, среднюю оценку
// и доли тональностей. Для пустой коллекции средняя и доли равны 0.
func Aggregate(reviews []Review) Aggregates {
	agg := Aggregates{
		Total:                len(reviews),
		SentimentCounts:      make(map[Sentiment]int, len(Sentiments)),
		SentimentPercentages: make(map[Sentiment]float64, len(Sentiments)),
		RatingCounts:         make(map[int]int, 5),
	}
	for _, s := range Sentiments {
		agg.SentimentCounts[s] = 0
	}
	for rating := 1; rating <= 5; rating++ {
		agg.RatingCounts[rating] = 0
	}

	ratingSum := 0
	for _, r := range reviews {
		if r.Sentiment.Valid() {
			agg.SentimentCounts[r.Sentiment]++
		}
		if r.Rating >= 1 && r.Rating <= 5 {
			agg.RatingCounts[r.Rating]++
		}
		ratingSum += r.Rating
	}

	if agg.Total > 0 {
		agg.AverageRating = roundOneDecimal(float64(ratingSum) / float64(agg.Total))
	}
	for _, s := range Sentiments {
		agg.SentimentPercentages[s] = agg.Percentage(s)
	}

	return agg
}

// Percentage возвращает долю тональности в процентах с одним знаком после запятой
func (a Aggregates) Percentage(s Sentiment) float64 {
	if a.Total == 0 {
		return 0
	}
	return roundOneDecimal(float64(a.SentimentCounts[s]) / float64(a.Total) * 100)
}

// Recent возвращает последние n отзывов коллекции в обратном порядке
// (панель "Recent Reviews" на дашборде)
func Recent(reviews []Review, n int) []Review {
	if n <= 0 {
		return []Review{}
	}
	start := max(len(reviews)-n, 0)
	recent := slices.Clone(reviews[start:])
	slices.Reverse(recent)
	return recent
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
