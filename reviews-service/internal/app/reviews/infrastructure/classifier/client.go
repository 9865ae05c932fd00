package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/metrics"
	"sentimentreviews/pkg/reviewquery"
	"sentimentreviews/reviews-service/internal/app/reviews/entity"

	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable - классификатор не ответил или circuit breaker открыт
var ErrUnavailable = errors.New("sentiment classifier unavailable")

// responseError - классификатор ответил, но ответ нельзя использовать (4xx,
// неизвестная метка). Такие ответы не открывают breaker.
type responseError struct {
	msg string
}

func (e *responseError) Error() string {
	return e.msg
}

type Config struct {
	URL          string
	Timeout      time.Duration
	OpenTimeout  time.Duration // сколько breaker остается открытым
	MinRequests  uint32        // минимум запросов до оценки доли ошибок
	FailureRatio float64
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// Client - HTTP клиент внешнего классификатора тональности за circuit breaker
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*entity.Classification]
}

func NewClient(cfg Config) *Client {
	settings := gobreaker.Settings{
		Name:        "sentiment-classifier",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			var respErr *responseError
			return err == nil || errors.As(err, &respErr)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.ClassifierCircuitState.Set(stateValue(to))
		},
	}

	metrics.ClassifierCircuitState.Set(0)

	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[*entity.Classification](settings),
	}
}

// Classify отправляет текст на анализ. Любая ошибка возвращается как
// ErrUnavailable; breaker учитывает только ошибки транспорта и 5xx.
func (c *Client) Classify(ctx context.Context, text string) (*entity.Classification, error) {
	start := time.Now()

	result, err := c.breaker.Execute(func() (*entity.Classification, error) {
		return c.analyze(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordClassifierRequest(metrics.ClassifierRejected, 0)
		} else {
			metrics.RecordClassifierRequest(metrics.ClassifierError, time.Since(start))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	metrics.RecordClassifierRequest(metrics.ClassifierSuccess, time.Since(start))
	return result, nil
}

func (c *Client) analyze(ctx context.Context, text string) (*entity.Classification, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := fmt.Sprintf("classifier returned status %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, &responseError{msg: msg}
		}
		return nil, errors.New(msg)
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	sentiment, err := reviewquery.ParseSentiment(parsed.Sentiment)
	if err != nil || !sentiment.Valid() {
		return nil, &responseError{msg: fmt.Sprintf("classifier returned unknown sentiment %q", parsed.Sentiment)}
	}

	return &entity.Classification{Sentiment: sentiment, Score: parsed.Score}, nil
}

// State возвращает состояние circuit breaker
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}
