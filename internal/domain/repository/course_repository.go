package repository

import (
	"context"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

type CourseRepository interface {
	query.Source
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	Update(ctx context.Context, c *entity.Course) error
	Delete(ctx context.Context, id string) error
	ListByBootcamp(ctx context.Context, bootcampID string) ([]*entity.Course, error)
	// ListByBootcamps groups the courses of several bootcamps by bootcamp id.
	ListByBootcamps(ctx context.Context, bootcampIDs []string) (map[string][]query.Record, error)
	DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error)
	// AverageTuition returns nil when the bootcamp has no courses.
	AverageTuition(ctx context.Context, bootcampID string) (*float64, error)
}
