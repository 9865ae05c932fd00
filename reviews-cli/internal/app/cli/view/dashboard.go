package view

import "sentimentreviews/pkg/reviewquery"

// RecentReviewsCount - сколько отзывов в панели "Recent Reviews"
const RecentReviewsCount = 6

type Dashboard struct {
	Stats  reviewquery.Aggregates
	Recent []reviewquery.Review
}

// BuildDashboard считает дашборд по коллекции в порядке создания
func BuildDashboard(reviews []reviewquery.Review) Dashboard {
	return Dashboard{
		Stats:  reviewquery.Aggregate(reviews),
		Recent: reviewquery.Recent(reviews, RecentReviewsCount),
	}
}
