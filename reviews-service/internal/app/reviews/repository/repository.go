package repository

import (
	"context"

	"sentimentreviews/reviews-service/internal/app/reviews/entity"
)

// ReviewRepository определяет методы для работы с отзывами в MongoDB.
// Выборки возвращают отзывы в порядке создания (от старых к новым).
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetAll(ctx context.Context) ([]entity.Review, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
}
