package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sentimentreviews/pkg/reviewquery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAPIClient(server.URL+"/", server.URL, 5*time.Second)
}

func TestLogin_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ann@example.com", body["email"])
		assert.Equal(t, "secret1", body["password"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"user":  map[string]string{"id": "u1", "name": "Ann", "email": "ann@example.com"},
			"token": "jwt-token",
		})
	})

	resp, err := client.Login(context.Background(), "ann@example.com", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, "Ann", resp.User.Name)
}

func TestLogin_ServerMessageInError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})

	resp, err := client.Login(context.Background(), "ann@example.com", "wrong")

	assert.Nil(t, resp)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestLogin_MissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"user": map[string]string{"id": "u1"}})
	})

	_, err := client.Login(context.Background(), "ann@example.com", "secret1")

	assert.Error(t, err)
}

func TestSignup_SendsConfirmation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "secret1", body["confirmPassword"])
		w.WriteHeader(http.StatusCreated)
	})

	err := client.Signup(context.Background(), SignupRequest{
		Name: "Ann", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})

	assert.NoError(t, err)
}

func TestListReviews_RequestsCreationOrderWithToken(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reviews", r.URL.Path)
		assert.Equal(t, "oldest", r.URL.Query().Get("sort"))
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"reviews": []map[string]interface{}{
				{"id": "r1", "product_name": "Phone", "review_text": "Great phone overall", "rating": 5, "sentiment": "Positive", "score": 0.97, "created_at": created},
			},
			"total": 1,
		})
	})
	client.SetAuthToken("jwt-token")

	reviews, err := client.ListReviews(context.Background())

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "r1", reviews[0].ID)
	assert.Equal(t, reviewquery.SentimentPositive, reviews[0].Sentiment)
	assert.True(t, created.Equal(reviews[0].CreatedAt))
}

func TestListMyReviews_EmptyIsNotNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reviews/mine", r.URL.Path)
		w.Write([]byte(`{"reviews":null,"total":0}`))
	})

	reviews, err := client.ListMyReviews(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestCreateReview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reviews", r.URL.Path)

		var input ReviewInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, ReviewInput{ProductName: "Phone", ReviewText: "Great phone overall", Rating: 5}, input)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "r1", "product_name": "Phone", "rating": 5, "sentiment": "Positive"})
	})

	review, err := client.CreateReview(context.Background(), ReviewInput{ProductName: "Phone", ReviewText: "Great phone overall", Rating: 5})

	require.NoError(t, err)
	assert.Equal(t, "r1", review.ID)
}

func TestCreateReview_ClassifierUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Sentiment analysis is temporarily unavailable"})
	})

	_, err := client.CreateReview(context.Background(), ReviewInput{ProductName: "Phone", ReviewText: "Great phone overall", Rating: 5})

	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	assert.Contains(t, err.Error(), "temporarily unavailable")
}

func TestUpdateAndDeleteReview(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "/reviews/r1", r.URL.Path)
		if r.Method == http.MethodPatch {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]interface{}{"rating": float64(2)}, body)
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "r1", "rating": 2})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Review deleted successfully"})
	})

	review, err := client.UpdateReview(context.Background(), "r1", ReviewInput{Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, review.Rating)

	require.NoError(t, client.DeleteReview(context.Background(), "r1"))
	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestGetReview_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetReview(context.Background(), "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestSentimentStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reviews/stats/sentiment", r.URL.Path)
		w.Write([]byte(`{
			"total": 3,
			"sentiment_counts": {"Positive": 2, "Negative": 1, "Neutral": 0},
			"sentiment_percentages": {"Positive": 66.7, "Negative": 33.3, "Neutral": 0},
			"rating_counts": {"1": 0, "2": 1, "3": 0, "4": 1, "5": 1},
			"average_rating": 3.7,
			"generated_at": "2024-01-02T03:04:05Z",
			"source": "cache"
		}`))
	})

	stats, err := client.SentimentStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.SentimentCounts[reviewquery.SentimentPositive])
	assert.Equal(t, 1, stats.RatingCounts[2])
	assert.Equal(t, 3.7, stats.AverageRating)
	assert.Equal(t, "cache", stats.Source)
}

func TestRequest_Unreachable(t *testing.T) {
	client := NewAPIClient("http://127.0.0.1:1", "http://127.0.0.1:1", time.Second)

	_, err := client.ListReviews(context.Background())

	assert.Error(t, err)
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}
