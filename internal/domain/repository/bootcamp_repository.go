package repository

import (
	"context"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

// BootcampRepository defines the storage operations on bootcamps.
// Lookups by id return an apperror NotFound when nothing matches.
type BootcampRepository interface {
	query.Source
	Create(ctx context.Context, b *entity.Bootcamp) error
	GetByID(ctx context.Context, id string) (*entity.Bootcamp, error)
	// Update writes the editable fields of b. User, CreatedAt and the fields
	// owned by SetAverageCost, SetAverageRating and SetPhoto are left as stored.
	Update(ctx context.Context, b *entity.Bootcamp) error
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	// WithinRadius returns bootcamps whose location lies inside the spherical cap around (lng, lat).
	// radius is in radians.
	WithinRadius(ctx context.Context, lng, lat, radius float64) ([]*entity.Bootcamp, error)
	// Summaries returns id, name and description of the given bootcamps keyed by id.
	Summaries(ctx context.Context, ids []string) (map[string]query.Record, error)
	SetAverageCost(ctx context.Context, id string, avg *float64) error
	SetAverageRating(ctx context.Context, id string, avg *float64) error
	SetPhoto(ctx context.Context, id, photo string) error
}
