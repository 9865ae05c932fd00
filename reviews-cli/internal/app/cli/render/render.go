// Package render печатает отзывы и дашборд в терминал
package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"sentimentreviews/pkg/reviewquery"
	"sentimentreviews/reviews-cli/internal/app/cli/view"

	"github.com/charmbracelet/lipgloss"
)

const (
	DateLayout = "Jan 2, 2006"
	barWidth   = 20
)

var sentimentColors = map[reviewquery.Sentiment]lipgloss.Color{
	reviewquery.SentimentPositive: lipgloss.Color("#10b981"),
	reviewquery.SentimentNegative: lipgloss.Color("#ef4444"),
	reviewquery.SentimentNeutral:  lipgloss.Color("#6b7280"),
}

// Stars рисует оценку пятью звездами: ★★★☆☆
func Stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// Bar - полоса доли в процентах
func Bar(percent float64) string {
	filled := int(math.Round(max(0, min(percent, 100)) / 100 * barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// Printer пишет в w; цвета включаются, только если w - терминал
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	title    lipgloss.Style
	muted    lipgloss.Style
	errStyle lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		renderer: r,
		title:    r.NewStyle().Bold(true),
		muted:    r.NewStyle().Faint(true),
		errStyle: r.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	}
}

func (p *Printer) sentiment(s reviewquery.Sentiment) string {
	color, ok := sentimentColors[s]
	if !ok {
		color = sentimentColors[reviewquery.SentimentNeutral]
	}
	return p.renderer.NewStyle().Foreground(color).Render(string(s))
}

func (p *Printer) Errorf(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.errStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Messagef(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Review печатает карточку отзыва
func (p *Printer) Review(r reviewquery.Review) {
	fmt.Fprintf(p.w, "%s  %s\n", p.title.Render(r.ProductName), Stars(r.Rating))
	fmt.Fprintf(p.w, "  %s (score %s)  %s\n", p.sentiment(r.Sentiment), FormatScore(r.Score), p.muted.Render(FormatDate(r.CreatedAt)))
	if r.ReviewText != "" {
		fmt.Fprintf(p.w, "  %s\n", r.ReviewText)
	}
	fmt.Fprintf(p.w, "  %s\n", p.muted.Render("id: "+r.ID))
}

// ReviewList печатает экран списка: загрузку, ошибку или отзывы
func (p *Printer) ReviewList(title string, snap view.Snapshot) {
	fmt.Fprintln(p.w, p.title.Render(title))

	if snap.Loading {
		fmt.Fprintln(p.w, p.muted.Render("Loading..."))
		return
	}
	if snap.Err != "" {
		p.Errorf("Error: %s", snap.Err)
	}

	fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf("Showing %d of %d reviews", len(snap.Reviews), snap.Total)))
	if len(snap.Reviews) == 0 {
		fmt.Fprintln(p.w, "No reviews found")
		return
	}
	for _, r := range snap.Reviews {
		fmt.Fprintln(p.w)
		p.Review(r)
	}
}

// Stats печатает агрегаты: итоги, доли тональностей и распределение оценок
func (p *Printer) Stats(agg reviewquery.Aggregates) {
	fmt.Fprintf(p.w, "Total reviews:  %d\n", agg.Total)
	fmt.Fprintf(p.w, "Average rating: %.1f %s\n", agg.AverageRating, Stars(int(math.Round(agg.AverageRating))))

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.title.Render("Sentiment"))
	for _, s := range reviewquery.Sentiments {
		fmt.Fprintf(p.w, "  %-8s %s %5.1f%% (%d)\n", s, Bar(agg.Percentage(s)), agg.Percentage(s), agg.SentimentCounts[s])
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.title.Render("Ratings"))
	for rating := 5; rating >= 1; rating-- {
		count := agg.RatingCounts[rating]
		share := 0.0
		if agg.Total > 0 {
			share = float64(count) / float64(agg.Total) * 100
		}
		fmt.Fprintf(p.w, "  %s %s %d\n", Stars(rating), Bar(share), count)
	}
}

func (p *Printer) Dashboard(d view.Dashboard) {
	fmt.Fprintln(p.w, p.title.Render("Dashboard"))
	p.Stats(d.Stats)

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.title.Render("Recent Reviews"))
	if len(d.Recent) == 0 {
		fmt.Fprintln(p.w, "No reviews yet")
		return
	}
	for _, r := range d.Recent {
		fmt.Fprintf(p.w, "  %s  %s  %s  %s\n", Stars(r.Rating), p.sentiment(r.Sentiment), r.ProductName, p.muted.Render(FormatDate(r.CreatedAt)))
	}
}
