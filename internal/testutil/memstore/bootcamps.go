package memstore

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

func newID() string {
	return primitive.NewObjectID().Hex()
}

func notFound(id string) error {
	return apperror.NotFound("Resource not found with id of %s", id)
}

type Bootcamps struct {
	mu    sync.RWMutex
	items map[string]*entity.Bootcamp
	// ListErr, when set, is returned by List to simulate a storage failure.
	ListErr error
}

var _ repository.BootcampRepository = (*Bootcamps)(nil)

func NewBootcamps() *Bootcamps {
	return &Bootcamps{items: map[string]*entity.Bootcamp{}}
}

func (s *Bootcamps) Create(_ context.Context, b *entity.Bootcamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Name == b.Name {
			return apperror.DuplicateKey(errors.New("bootcamp name taken"))
		}
	}
	if b.ID == "" {
		b.ID = newID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	cp := *b
	s.items[b.ID] = &cp
	return nil
}

func (s *Bootcamps) GetByID(_ context.Context, id string) (*entity.Bootcamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *b
	return &cp, nil
}

func (s *Bootcamps) Update(_ context.Context, b *entity.Bootcamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[b.ID]
	if !ok {
		return notFound(b.ID)
	}
	for id, existing := range s.items {
		if id != b.ID && existing.Name == b.Name {
			return apperror.DuplicateKey(errors.New("bootcamp name taken"))
		}
	}
	cp := *b
	cp.User, cp.CreatedAt = stored.User, stored.CreatedAt
	cp.AverageCost, cp.AverageRating, cp.Photo = stored.AverageCost, stored.AverageRating, stored.Photo
	s.items[b.ID] = &cp
	return nil
}

func (s *Bootcamps) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	delete(s.items, id)
	return nil
}

func (s *Bootcamps) CountByUser(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, b := range s.items {
		if b.User == userID {
			n++
		}
	}
	return n, nil
}

// WithinRadius compares the central angle between points against radius.
func (s *Bootcamps) WithinRadius(_ context.Context, lng, lat, radius float64) ([]*entity.Bootcamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Bootcamp
	for _, b := range s.items {
		if b.Location == nil || len(b.Location.Coordinates) != 2 {
			continue
		}
		if centralAngle(lat, lng, b.Location.Coordinates[1], b.Location.Coordinates[0]) <= radius {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func centralAngle(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func (s *Bootcamps) Summaries(_ context.Context, ids []string) (map[string]query.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]query.Record, len(ids))
	for _, id := range ids {
		if b, ok := s.items[id]; ok {
			out[id] = query.Record{"id": b.ID, "name": b.Name, "description": b.Description}
		}
	}
	return out, nil
}

func (s *Bootcamps) SetAverageCost(_ context.Context, id string, avg *float64) error {
	return s.mutate(id, func(b *entity.Bootcamp) { b.AverageCost = avg })
}

func (s *Bootcamps) SetAverageRating(_ context.Context, id string, avg *float64) error {
	return s.mutate(id, func(b *entity.Bootcamp) { b.AverageRating = avg })
}

func (s *Bootcamps) SetPhoto(_ context.Context, id, photo string) error {
	return s.mutate(id, func(b *entity.Bootcamp) { b.Photo = photo })
}

func (s *Bootcamps) mutate(id string, fn func(*entity.Bootcamp)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[id]
	if !ok {
		return notFound(id)
	}
	fn(b)
	return nil
}

func (s *Bootcamps) List(_ context.Context, q query.Query) ([]query.Record, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]query.Record, 0, len(s.items))
	for _, b := range s.items {
		records = append(records, bootcampRecord(b))
	}
	return apply(records, q), nil
}

func (s *Bootcamps) CountAll(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

// Len returns the number of stored bootcamps.
func (s *Bootcamps) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func bootcampRecord(b *entity.Bootcamp) query.Record {
	r := query.Record{
		"id":            b.ID,
		"user":          b.User,
		"name":          b.Name,
		"slug":          b.Slug,
		"description":   b.Description,
		"careers":       append([]string(nil), b.Careers...),
		"photo":         b.Photo,
		"housing":       b.Housing,
		"jobAssistance": b.JobAssistance,
		"jobGuarantee":  b.JobGuarantee,
		"acceptGi":      b.AcceptGi,
		"createdAt":     b.CreatedAt,
	}
	for k, v := range map[string]string{"website": b.Website, "phone": b.Phone, "email": b.Email} {
		if v != "" {
			r[k] = v
		}
	}
	if b.AverageCost != nil {
		r["averageCost"] = *b.AverageCost
	}
	if b.AverageRating != nil {
		r["averageRating"] = *b.AverageRating
	}
	if l := b.Location; l != nil {
		r["location"] = query.Record{
			"type":             l.Type,
			"coordinates":      append([]float64(nil), l.Coordinates...),
			"formattedAddress": l.FormattedAddress,
			"street":           l.Street,
			"city":             l.City,
			"state":            l.State,
			"zipcode":          l.Zipcode,
			"country":          l.Country,
		}
	}
	return r
}
