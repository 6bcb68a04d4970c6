package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type Reviews struct {
	mu    sync.RWMutex
	items map[string]*entity.Review
}

var _ repository.ReviewRepository = (*Reviews)(nil)

func NewReviews() *Reviews {
	return &Reviews{items: map[string]*entity.Review{}}
}

func (s *Reviews) Create(_ context.Context, r *entity.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Bootcamp == r.Bootcamp && existing.User == r.User {
			return apperror.DuplicateKey(errors.New("bootcamp already reviewed by user"))
		}
	}
	if r.ID == "" {
		r.ID = newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	s.items[r.ID] = &cp
	return nil
}

func (s *Reviews) GetByID(_ context.Context, id string) (*entity.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *r
	return &cp, nil
}

func (s *Reviews) Update(_ context.Context, r *entity.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; !ok {
		return notFound(r.ID)
	}
	cp := *r
	s.items[r.ID] = &cp
	return nil
}

func (s *Reviews) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	delete(s.items, id)
	return nil
}

func (s *Reviews) ListByBootcamp(_ context.Context, bootcampID string) ([]*entity.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Review
	for _, r := range s.items {
		if r.Bootcamp == bootcampID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Reviews) DeleteByBootcamp(_ context.Context, bootcampID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.items {
		if r.Bootcamp == bootcampID {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

func (s *Reviews) AverageRating(_ context.Context, bootcampID string) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum, n int
	for _, r := range s.items {
		if r.Bootcamp == bootcampID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func (s *Reviews) List(_ context.Context, q query.Query) ([]query.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]query.Record, 0, len(s.items))
	for _, r := range s.items {
		records = append(records, query.Record{
			"id":        r.ID,
			"title":     r.Title,
			"text":      r.Text,
			"rating":    r.Rating,
			"createdAt": r.CreatedAt,
			"bootcamp":  r.Bootcamp,
			"user":      r.User,
		})
	}
	return apply(records, q), nil
}

func (s *Reviews) CountAll(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Reviews) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
