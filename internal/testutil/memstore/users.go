package memstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type Users struct {
	mu    sync.RWMutex
	items map[string]*entity.User
	// Updates counts successful Update calls.
	Updates int
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{items: map[string]*entity.User{}}
}

func (s *Users) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperror.DuplicateKey(errors.New("email taken"))
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.items[u.ID] = cloneUser(u)
	return nil
}

func (s *Users) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.items[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneUser(u), nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.items {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NotFound("There is no user with that email")
}

func (s *Users) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.items {
		if tokenHash != "" && u.ResetPasswordToken == tokenHash && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, apperror.NotFound("reset token not found")
}

func (s *Users) Update(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[u.ID]; !ok {
		return notFound(u.ID)
	}
	for id, existing := range s.items {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return apperror.DuplicateKey(errors.New("email taken"))
		}
	}
	s.items[u.ID] = cloneUser(u)
	s.Updates++
	return nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	delete(s.items, id)
	return nil
}

func (s *Users) List(_ context.Context, q query.Query) ([]query.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]query.Record, 0, len(s.items))
	for _, u := range s.items {
		records = append(records, query.Record{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"role":      string(u.Role),
			"createdAt": u.CreatedAt,
		})
	}
	return apply(records, q), nil
}

func (s *Users) CountAll(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	if u.ResetPasswordExpire != nil {
		exp := *u.ResetPasswordExpire
		cp.ResetPasswordExpire = &exp
	}
	return &cp
}
