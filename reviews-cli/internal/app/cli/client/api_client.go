package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/reviewquery"
)

// APIError - ответ сервера со статусом не 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsStatus сообщает, что err - *APIError с данным статусом
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ReviewInput - тело создания и частичного обновления отзыва
type ReviewInput struct {
	ProductName string `json:"product_name,omitempty"`
	ReviewText  string `json:"review_text,omitempty"`
	Rating      int    `json:"rating,omitempty"`
}

type SentimentStats struct {
	reviewquery.Aggregates
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
}

type reviewListResponse struct {
	Reviews []reviewquery.Review `json:"reviews"`
	Total   int                  `json:"total"`
}

// APIClient - клиент Review Source и внешнего сервиса авторизации
type APIClient struct {
	apiURL     string
	authURL    string
	httpClient *http.Client
	authToken  string
}

func NewAPIClient(apiURL, authURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		apiURL:  strings.TrimRight(apiURL, "/"),
		authURL: strings.TrimRight(authURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetAuthToken устанавливает JWT токен для последующих запросов
func (c *APIClient) SetAuthToken(token string) {
	c.authToken = token
}

func (c *APIClient) Signup(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, http.MethodPost, c.authURL+"/auth/signup", req, nil)
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, c.authURL+"/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("login response has no token")
	}
	return &resp, nil
}

func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.authURL+"/auth/logout", nil, nil)
}

// ListReviews возвращает все отзывы в порядке создания; фильтрует и сортирует вызывающий
func (c *APIClient) ListReviews(ctx context.Context) ([]reviewquery.Review, error) {
	return c.listReviews(ctx, "/reviews")
}

// ListMyReviews возвращает отзывы текущего пользователя в порядке создания
func (c *APIClient) ListMyReviews(ctx context.Context) ([]reviewquery.Review, error) {
	return c.listReviews(ctx, "/reviews/mine")
}

func (c *APIClient) listReviews(ctx context.Context, path string) ([]reviewquery.Review, error) {
	query := url.Values{"sort": {string(reviewquery.SortOldest)}}

	var resp reviewListResponse
	if err := c.do(ctx, http.MethodGet, c.apiURL+path+"?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Reviews == nil {
		resp.Reviews = []reviewquery.Review{}
	}
	return resp.Reviews, nil
}

func (c *APIClient) GetReview(ctx context.Context, reviewID string) (*reviewquery.Review, error) {
	var review reviewquery.Review
	if err := c.do(ctx, http.MethodGet, c.apiURL+"/reviews/"+url.PathEscape(reviewID), nil, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *APIClient) CreateReview(ctx context.Context, input ReviewInput) (*reviewquery.Review, error) {
	var review reviewquery.Review
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/reviews", input, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *APIClient) UpdateReview(ctx context.Context, reviewID string, input ReviewInput) (*reviewquery.Review, error) {
	var review reviewquery.Review
	if err := c.do(ctx, http.MethodPatch, c.apiURL+"/reviews/"+url.PathEscape(reviewID), input, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *APIClient) DeleteReview(ctx context.Context, reviewID string) error {
	return c.do(ctx, http.MethodDelete, c.apiURL+"/reviews/"+url.PathEscape(reviewID), nil, nil)
}

func (c *APIClient) SentimentStats(ctx context.Context) (*SentimentStats, error) {
	var stats SentimentStats
	if err := c.do(ctx, http.MethodGet, c.apiURL+"/reviews/stats/sentiment", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// do отправляет JSON запрос и декодирует ответ в out (если out != nil)
func (c *APIClient) do(ctx context.Context, method, rawURL string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug().
		Str("method", method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// newAPIError достает сообщение из {"message": ...} или {"error": ...}
func newAPIError(resp *http.Response) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &payload)

	message := payload.Message
	if message == "" {
		message = payload.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
