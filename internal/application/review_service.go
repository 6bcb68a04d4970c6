package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type ReviewInput struct {
	Title  string
	Text   string
	Rating int
}

type ReviewPatch struct {
	Title  *string
	Text   *string
	Rating *int
}

type ReviewDetail struct {
	*entity.Review
	Bootcamp query.Record `json:"bootcamp"`
}

type ReviewService struct {
	Reviews   repository.ReviewRepository
	Bootcamps repository.BootcampRepository
	Logger    *logrus.Logger
}

func NewReviewService(reviews repository.ReviewRepository, bootcamps repository.BootcampRepository, logger *logrus.Logger) *ReviewService {
	return &ReviewService{Reviews: reviews, Bootcamps: bootcamps, Logger: logger}
}

func (s *ReviewService) List(ctx context.Context, params map[string][]string) (*query.Result, error) {
	return query.Run(ctx, s.Reviews, params, BootcampSummaryExpander{Bootcamps: s.Bootcamps})
}

func (s *ReviewService) ListByBootcamp(ctx context.Context, bootcampID string) ([]*entity.Review, error) {
	reviews, err := s.Reviews.ListByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*entity.Review{}
	}
	return reviews, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (*ReviewDetail, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := bootcampSummary(ctx, s.Bootcamps, r.Bootcamp)
	if err != nil {
		return nil, err
	}
	return &ReviewDetail{Review: r, Bootcamp: summary}, nil
}

func (s *ReviewService) get(ctx context.Context, id string) (*entity.Review, error) {
	r, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("No review with the id of %s", id)
		}
		return nil, err
	}
	return r, nil
}

// Create records the actor's review of a bootcamp. A second review by the same user fails with DuplicateKey.
func (s *ReviewService) Create(ctx context.Context, actor *entity.User, bootcampID string, in ReviewInput) (*entity.Review, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("No bootcamp with the id of %s", bootcampID)
		}
		return nil, err
	}

	r := &entity.Review{
		Title:    in.Title,
		Text:     in.Text,
		Rating:   in.Rating,
		Bootcamp: b.ID,
		User:     actor.ID,
	}
	if err := s.Reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	s.refreshAverageRating(ctx, b.ID)
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, actor *entity.User, id string, p ReviewPatch) (*entity.Review, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(r.User) {
		return nil, apperror.Forbidden("User %s is not authorized to update review %s", actor.ID, r.ID)
	}

	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Text != nil {
		r.Text = *p.Text
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}

	if err := s.Reviews.Update(ctx, r); err != nil {
		return nil, err
	}
	s.refreshAverageRating(ctx, r.Bootcamp)
	return r, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor *entity.User, id string) error {
	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(r.User) {
		return apperror.Forbidden("User %s is not authorized to delete review %s", actor.ID, r.ID)
	}
	if err := s.Reviews.Delete(ctx, r.ID); err != nil {
		return err
	}
	s.refreshAverageRating(ctx, r.Bootcamp)
	return nil
}

func (s *ReviewService) refreshAverageRating(ctx context.Context, bootcampID string) {
	avg, err := s.Reviews.AverageRating(ctx, bootcampID)
	if err == nil {
		err = s.Bootcamps.SetAverageRating(ctx, bootcampID, avg)
	}
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("bootcamp_id", bootcampID).Warn("average rating update failed")
	}
}
