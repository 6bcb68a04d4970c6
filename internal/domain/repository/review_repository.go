package repository

import (
	"context"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

// ReviewRepository stores reviews. Create fails with an apperror DuplicateKey when the user
// already reviewed the bootcamp.
type ReviewRepository interface {
	query.Source
	Create(ctx context.Context, r *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	Update(ctx context.Context, r *entity.Review) error
	Delete(ctx context.Context, id string) error
	ListByBootcamp(ctx context.Context, bootcampID string) ([]*entity.Review, error)
	DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error)
	AverageRating(ctx context.Context, bootcampID string) (*float64, error)
}
