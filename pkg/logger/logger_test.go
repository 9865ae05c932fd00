package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitWithWriter_AddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("reviews-service", "debug", &buf)

	Info().Str("review_id", "r1").Msg("review created")

	entry := lastLine(t, &buf)
	assert.Equal(t, "reviews-service", entry["service"])
	assert.Equal(t, "r1", entry["review_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestInitWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("svc", "verbose", &buf)

	Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestGinLoggerMiddleware_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("svc", "info", &buf)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/reviews", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews?sort=oldest", nil)
	router.ServeHTTP(w, req)

	requestID := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(requestID)
	require.NoError(t, err)
	assert.Equal(t, requestID, w.Body.String())

	entry := lastLine(t, &buf)
	assert.Equal(t, requestID, entry["request_id"])
	assert.Equal(t, "sort=oldest", entry["query"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}

func TestGinLoggerMiddleware_KeepsIncomingRequestIDAndWarnsOn4xx(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("svc", "info", &buf)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/missing", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	router.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
	entry := lastLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "fixed-id", entry["request_id"])
	assert.Equal(t, "user-1", entry["user_id"])
}
