package application

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

// EarthRadiusMiles converts a distance in miles into the radians expected by a spherical radius query.
const EarthRadiusMiles = 3963.0

type BootcampInput struct {
	Name          string
	Description   string
	Website       string
	Phone         string
	Email         string
	Address       string
	Careers       []string
	Housing       bool
	JobAssistance bool
	JobGuarantee  bool
	AcceptGi      bool
}

// BootcampPatch carries the fields of a partial update. Nil fields are left unchanged.
type BootcampPatch struct {
	Name          *string
	Description   *string
	Website       *string
	Phone         *string
	Email         *string
	Address       *string
	Careers       []string
	Housing       *bool
	JobAssistance *bool
	JobGuarantee  *bool
	AcceptGi      *bool
}

// PhotoUpload is a file received from a multipart form.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type BootcampService struct {
	Bootcamps repository.BootcampRepository
	Courses   repository.CourseRepository
	Reviews   repository.ReviewRepository
	Geocoder  Geocoder
	Photos    PhotoStore
	Index     SearchIndex // nil disables search
	MaxUpload int64
	Logger    *logrus.Logger
}

func NewBootcampService(
	bootcamps repository.BootcampRepository,
	courses repository.CourseRepository,
	reviews repository.ReviewRepository,
	geocoder Geocoder,
	photos PhotoStore,
	index SearchIndex,
	maxUpload int64,
	logger *logrus.Logger,
) *BootcampService {
	return &BootcampService{
		Bootcamps: bootcamps,
		Courses:   courses,
		Reviews:   reviews,
		Geocoder:  geocoder,
		Photos:    photos,
		Index:     index,
		MaxUpload: maxUpload,
		Logger:    logger,
	}
}

// List runs the advanced results pipeline over bootcamps and attaches their courses.
func (s *BootcampService) List(ctx context.Context, params map[string][]string) (*query.Result, error) {
	return query.Run(ctx, s.Bootcamps, params, CoursesExpander{Courses: s.Courses})
}

func (s *BootcampService) Get(ctx context.Context, id string) (*entity.Bootcamp, error) {
	b, err := s.Bootcamps.GetByID(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("Bootcamp not found with id of %s", id)
		}
		return nil, err
	}
	return b, nil
}

// Create publishes a bootcamp owned by actor. Publishers may own a single bootcamp.
func (s *BootcampService) Create(ctx context.Context, actor *entity.User, in BootcampInput) (*entity.Bootcamp, error) {
	if !actor.IsAdmin() {
		n, err := s.Bootcamps.CountByUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, apperror.BadRequest("The user with ID %s has already published a bootcamp", actor.ID)
		}
	}

	loc, err := s.Geocoder.Geocode(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	b := &entity.Bootcamp{
		User:          actor.ID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Website:       in.Website,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		Location:      loc,
		Careers:       in.Careers,
		Photo:         entity.DefaultPhoto,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGi:      in.AcceptGi,
	}
	b.Slug = slug.Make(b.Name)
	if err := s.Bootcamps.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

func (s *BootcampService) Update(ctx context.Context, actor *entity.User, id string, p BootcampPatch) (*entity.Bootcamp, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(b.User) {
		return nil, apperror.Forbidden("User %s is not authorized to update this bootcamp", actor.ID)
	}

	if p.Name != nil {
		b.Name = strings.TrimSpace(*p.Name)
		b.Slug = slug.Make(b.Name)
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Website != nil {
		b.Website = *p.Website
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	if p.Careers != nil {
		b.Careers = p.Careers
	}
	if p.Housing != nil {
		b.Housing = *p.Housing
	}
	if p.JobAssistance != nil {
		b.JobAssistance = *p.JobAssistance
	}
	if p.JobGuarantee != nil {
		b.JobGuarantee = *p.JobGuarantee
	}
	if p.AcceptGi != nil {
		b.AcceptGi = *p.AcceptGi
	}
	if p.Address != nil {
		loc, err := s.Geocoder.Geocode(ctx, *p.Address)
		if err != nil {
			return nil, err
		}
		b.Address = *p.Address
		b.Location = loc
	}

	if err := s.Bootcamps.Update(ctx, b); err != nil {
		return nil, err
	}
	// Re-read so the response carries averages written since the first read.
	if fresh, err := s.Bootcamps.GetByID(ctx, b.ID); err == nil {
		b = fresh
	}
	s.index(ctx, b)
	return b, nil
}

// Delete removes the bootcamp after its courses and reviews.
func (s *BootcampService) Delete(ctx context.Context, actor *entity.User, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(b.User) {
		return apperror.Forbidden("User %s is not authorized to delete this bootcamp", actor.ID)
	}

	courses, err := s.Courses.DeleteByBootcamp(ctx, b.ID)
	if err != nil {
		return err
	}
	reviews, err := s.Reviews.DeleteByBootcamp(ctx, b.ID)
	if err != nil {
		return err
	}
	if err := s.Bootcamps.Delete(ctx, b.ID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"bootcamp_id": b.ID,
			"courses":     courses,
			"reviews":     reviews,
		}).Info("bootcamp deleted")
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, b.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("bootcamp_id", b.ID).Warn("search index delete failed")
		}
	}
	return nil
}

// WithinRadius returns the bootcamps within distance miles of the zipcode.
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode, distance string) ([]*entity.Bootcamp, error) {
	miles, err := strconv.ParseFloat(distance, 64)
	if err != nil || miles <= 0 || math.IsInf(miles, 0) || math.IsNaN(miles) {
		return nil, apperror.BadRequest("Please provide a valid distance")
	}
	loc, err := s.Geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	if len(loc.Coordinates) != 2 {
		return nil, apperror.NotFound("No location found for %s", zipcode)
	}
	found, err := s.Bootcamps.WithinRadius(ctx, loc.Coordinates[0], loc.Coordinates[1], miles/EarthRadiusMiles)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []*entity.Bootcamp{}
	}
	return found, nil
}

// UploadPhoto stores an image for the bootcamp as photo_<id><ext> and returns the stored value.
func (s *BootcampService) UploadPhoto(ctx context.Context, actor *entity.User, id string, file *PhotoUpload) (string, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !actor.CanModify(b.User) {
		return "", apperror.Forbidden("User %s is not authorized to update this bootcamp", actor.ID)
	}
	if file == nil || file.Body == nil {
		return "", apperror.BadRequest("Please upload a file")
	}
	if !strings.HasPrefix(file.ContentType, "image") {
		return "", apperror.BadRequest("Please upload an image file")
	}
	if s.MaxUpload > 0 && file.Size > s.MaxUpload {
		return "", apperror.BadRequest("Please upload an image less than %d", s.MaxUpload)
	}

	name := fmt.Sprintf("photo_%s%s", b.ID, strings.ToLower(filepath.Ext(file.Filename)))
	stored, err := s.Photos.Save(ctx, name, file.ContentType, file.Body)
	if err != nil {
		return "", apperror.Internal("Problem with file upload", err)
	}
	if err := s.Bootcamps.SetPhoto(ctx, b.ID, stored); err != nil {
		return "", err
	}
	b.Photo = stored
	s.index(ctx, b)
	return stored, nil
}

// Search queries the full-text index. Without an index it returns no results.
func (s *BootcampService) Search(ctx context.Context, q string, size int) ([]query.Record, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.BadRequest("Please provide a search term")
	}
	if s.Index == nil {
		return []query.Record{}, nil
	}
	hits, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.Internal("search failed", err)
	}
	return hits, nil
}

func (s *BootcampService) index(ctx context.Context, b *entity.Bootcamp) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, b); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("bootcamp_id", b.ID).Warn("search index failed")
	}
}
