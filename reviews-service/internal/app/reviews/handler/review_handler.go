package handler

import (
	"context"
	"errors"
	"net/http"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/reviewquery"
	"sentimentreviews/reviews-service/internal/app/reviews/entity"
	"sentimentreviews/reviews-service/internal/app/reviews/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReview(ctx context.Context, reviewID string) (*entity.Review, error)
	ListReviews(ctx context.Context, criteria reviewquery.Criteria) ([]reviewquery.Review, error)
	ListUserReviews(ctx context.Context, userID string, criteria reviewquery.Criteria) ([]reviewquery.Review, error)
	UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string, userID string) error
	GetSentimentStats(ctx context.Context) (*entity.SentimentStatsResponse, error)
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondError(c, err, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListReviews - все отзывы с фильтрами из query string
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	criteria, ok := bindCriteria(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListReviews(c.Request.Context(), criteria)
	if err != nil {
		h.respondError(c, err, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{Reviews: reviews, Total: len(reviews)})
}

// ListMyReviews - отзывы текущего пользователя с фильтрами из query string
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	criteria, ok := bindCriteria(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListUserReviews(c.Request.Context(), userID, criteria)
	if err != nil {
		h.respondError(c, err, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{Reviews: reviews, Total: len(reviews)})
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.GetReview(c.Request.Context(), c.Param("review_id"))
	if err != nil {
		h.respondError(c, err, "Failed to get review")
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if !req.HasChanges() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("review_id"), userID, &req)
	if err != nil {
		h.respondError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("review_id"), userID); err != nil {
		h.respondError(c, err, "Failed to delete review")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Review deleted successfully"})
}

// GetSentimentStats - агрегаты тональности и оценок для дашборда
func (h *ReviewHandler) GetSentimentStats(c *gin.Context) {
	stats, err := h.reviewService.GetSentimentStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch sentiment statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// respondError переводит ошибки сервиса в HTTP статусы
func (h *ReviewHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	case errors.Is(err, service.ErrInvalidReviewID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrClassifierUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sentiment analysis is temporarily unavailable"})
	default:
		logger.Error().
			Err(err).
			Str("request_id", logger.RequestID(c)).
			Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

func bindCriteria(c *gin.Context) (reviewquery.Criteria, bool) {
	var query entity.ListReviewsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return reviewquery.Criteria{}, false
	}

	criteria, err := query.ToCriteria()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return reviewquery.Criteria{}, false
	}
	return criteria, true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
