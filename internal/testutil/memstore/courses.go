package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type Courses struct {
	mu    sync.RWMutex
	items map[string]*entity.Course
}

var _ repository.CourseRepository = (*Courses)(nil)

func NewCourses() *Courses {
	return &Courses{items: map[string]*entity.Course{}}
}

func (s *Courses) Create(_ context.Context, c *entity.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *Courses) GetByID(_ context.Context, id string) (*entity.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *c
	return &cp, nil
}

func (s *Courses) Update(_ context.Context, c *entity.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; !ok {
		return notFound(c.ID)
	}
	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *Courses) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	delete(s.items, id)
	return nil
}

func (s *Courses) ListByBootcamp(_ context.Context, bootcampID string) ([]*entity.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Course
	for _, c := range s.items {
		if c.Bootcamp == bootcampID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Courses) ListByBootcamps(_ context.Context, bootcampIDs []string) (map[string][]query.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[string]bool, len(bootcampIDs))
	for _, id := range bootcampIDs {
		want[id] = true
	}
	out := map[string][]query.Record{}
	for _, c := range s.items {
		if want[c.Bootcamp] {
			out[c.Bootcamp] = append(out[c.Bootcamp], courseRecord(c))
		}
	}
	return out, nil
}

func (s *Courses) DeleteByBootcamp(_ context.Context, bootcampID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.items {
		if c.Bootcamp == bootcampID {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

func (s *Courses) AverageTuition(_ context.Context, bootcampID string) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	var n int
	for _, c := range s.items {
		if c.Bootcamp == bootcampID {
			sum += c.Tuition
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}

func (s *Courses) List(_ context.Context, q query.Query) ([]query.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]query.Record, 0, len(s.items))
	for _, c := range s.items {
		records = append(records, courseRecord(c))
	}
	return apply(records, q), nil
}

func (s *Courses) CountAll(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Courses) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func courseRecord(c *entity.Course) query.Record {
	return query.Record{
		"id":                   c.ID,
		"title":                c.Title,
		"description":          c.Description,
		"weeks":                c.Weeks,
		"tuition":              c.Tuition,
		"minimumSkill":         c.MinimumSkill,
		"scholarshipAvailable": c.ScholarshipAvailable,
		"createdAt":            c.CreatedAt,
		"bootcamp":             c.Bootcamp,
		"user":                 c.User,
	}
}
