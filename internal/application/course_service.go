package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type CourseInput struct {
	Title                string
	Description          string
	Weeks                string
	Tuition              float64
	MinimumSkill         string
	ScholarshipAvailable bool
}

type CoursePatch struct {
	Title                *string
	Description          *string
	Weeks                *string
	Tuition              *float64
	MinimumSkill         *string
	ScholarshipAvailable *bool
}

// CourseDetail is a course with its bootcamp reference expanded into a summary.
type CourseDetail struct {
	*entity.Course
	Bootcamp query.Record `json:"bootcamp"`
}

type CourseService struct {
	Courses   repository.CourseRepository
	Bootcamps repository.BootcampRepository
	Logger    *logrus.Logger
}

func NewCourseService(courses repository.CourseRepository, bootcamps repository.BootcampRepository, logger *logrus.Logger) *CourseService {
	return &CourseService{Courses: courses, Bootcamps: bootcamps, Logger: logger}
}

func (s *CourseService) List(ctx context.Context, params map[string][]string) (*query.Result, error) {
	return query.Run(ctx, s.Courses, params, BootcampSummaryExpander{Bootcamps: s.Bootcamps})
}

func (s *CourseService) ListByBootcamp(ctx context.Context, bootcampID string) ([]*entity.Course, error) {
	courses, err := s.Courses.ListByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []*entity.Course{}
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*CourseDetail, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := bootcampSummary(ctx, s.Bootcamps, c.Bootcamp)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{Course: c, Bootcamp: summary}, nil
}

func (s *CourseService) get(ctx context.Context, id string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("No course with the id of %s", id)
		}
		return nil, err
	}
	return c, nil
}

// Create adds a course to a bootcamp the actor owns.
func (s *CourseService) Create(ctx context.Context, actor *entity.User, bootcampID string, in CourseInput) (*entity.Course, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("No bootcamp with the id of %s", bootcampID)
		}
		return nil, err
	}
	if !actor.CanModify(b.User) {
		return nil, apperror.Forbidden("User %s is not authorized to add a course to bootcamp %s", actor.ID, b.ID)
	}

	c := &entity.Course{
		Title:                in.Title,
		Description:          in.Description,
		Weeks:                in.Weeks,
		Tuition:              in.Tuition,
		MinimumSkill:         in.MinimumSkill,
		ScholarshipAvailable: in.ScholarshipAvailable,
		Bootcamp:             b.ID,
		User:                 actor.ID,
	}
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.refreshAverageCost(ctx, b.ID)
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, actor *entity.User, id string, p CoursePatch) (*entity.Course, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(c.User) {
		return nil, apperror.Forbidden("User %s is not authorized to update course %s", actor.ID, c.ID)
	}

	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Weeks != nil {
		c.Weeks = *p.Weeks
	}
	if p.Tuition != nil {
		c.Tuition = *p.Tuition
	}
	if p.MinimumSkill != nil {
		c.MinimumSkill = *p.MinimumSkill
	}
	if p.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *p.ScholarshipAvailable
	}

	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, err
	}
	s.refreshAverageCost(ctx, c.Bootcamp)
	return c, nil
}

func (s *CourseService) Delete(ctx context.Context, actor *entity.User, id string) error {
	c, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(c.User) {
		return apperror.Forbidden("User %s is not authorized to delete course %s", actor.ID, c.ID)
	}
	if err := s.Courses.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.refreshAverageCost(ctx, c.Bootcamp)
	return nil
}

// refreshAverageCost recomputes the bootcamp's mean tuition. Failures are logged, not returned.
func (s *CourseService) refreshAverageCost(ctx context.Context, bootcampID string) {
	avg, err := s.Courses.AverageTuition(ctx, bootcampID)
	if err == nil {
		err = s.Bootcamps.SetAverageCost(ctx, bootcampID, avg)
	}
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("bootcamp_id", bootcampID).Warn("average cost update failed")
	}
}
