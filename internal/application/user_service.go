package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	repo "github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

type UserPatch struct {
	Name  *string
	Email *string
	Role  *entity.Role
}

// UserService backs the administration endpoints.
type UserService struct {
	Repo   repo.UserRepository
	Hasher PasswordHasher
	Logger *logrus.Logger
}

func NewUserService(repo repo.UserRepository, hasher PasswordHasher, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, Hasher: hasher, Logger: logger}
}

func (s *UserService) List(ctx context.Context, params map[string][]string) (*query.Result, error) {
	return query.Run(ctx, s.Repo, params)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Role:     role,
		Password: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created by admin")
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, p UserPatch) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
