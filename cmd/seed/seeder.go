package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/application"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type seedUser struct {
	Key      string      `json:"key"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     entity.Role `json:"role"`
	Password string      `json:"password"`
}

type seedBootcamp struct {
	entity.Bootcamp
	Owner string `json:"owner"`
}

type seedCourse struct {
	entity.Course
	BootcampName string `json:"bootcampName"`
}

type seedReview struct {
	entity.Review
	BootcampName string `json:"bootcampName"`
	Author       string `json:"author"`
}

// seeder imports the JSON fixtures under dir through the repositories.
// Bootcamps reference their owner by user key; courses and reviews reference bootcamps by name.
type seeder struct {
	users     repository.UserRepository
	bootcamps repository.BootcampRepository
	courses   repository.CourseRepository
	reviews   repository.ReviewRepository
	hasher    application.PasswordHasher
	logger    *logrus.Logger
}

func (s *seeder) importAll(ctx context.Context, dir string) error {
	var (
		users     []seedUser
		bootcamps []seedBootcamp
		courses   []seedCourse
		reviews   []seedReview
	)
	for name, dst := range map[string]any{
		"users.json": &users, "bootcamps.json": &bootcamps, "courses.json": &courses, "reviews.json": &reviews,
	} {
		if err := readJSON(filepath.Join(dir, name), dst); err != nil {
			return err
		}
	}

	userIDs := make(map[string]string, len(users))
	for _, su := range users {
		hash, err := s.hasher.Hash(su.Password)
		if err != nil {
			return err
		}
		u := &entity.User{Name: su.Name, Email: su.Email, Role: su.Role, Password: hash}
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", su.Email, err)
		}
		userIDs[su.Key] = u.ID
	}

	owners := make(map[string]string, len(bootcamps))
	bootcampIDs := make(map[string]string, len(bootcamps))
	for _, sb := range bootcamps {
		b := sb.Bootcamp
		b.User = userIDs[sb.Owner]
		if b.User == "" {
			return fmt.Errorf("bootcamp %s: unknown owner %q", b.Name, sb.Owner)
		}
		b.Slug = slug.Make(b.Name)
		if b.Photo == "" {
			b.Photo = entity.DefaultPhoto
		}
		if err := s.bootcamps.Create(ctx, &b); err != nil {
			return fmt.Errorf("bootcamp %s: %w", b.Name, err)
		}
		bootcampIDs[b.Name] = b.ID
		owners[b.ID] = b.User
	}

	for _, sc := range courses {
		c := sc.Course
		c.Bootcamp = bootcampIDs[sc.BootcampName]
		if c.Bootcamp == "" {
			return fmt.Errorf("course %s: unknown bootcamp %q", c.Title, sc.BootcampName)
		}
		c.User = owners[c.Bootcamp]
		if err := s.courses.Create(ctx, &c); err != nil {
			return fmt.Errorf("course %s: %w", c.Title, err)
		}
	}

	for _, sr := range reviews {
		r := sr.Review
		r.Bootcamp = bootcampIDs[sr.BootcampName]
		r.User = userIDs[sr.Author]
		if r.Bootcamp == "" || r.User == "" {
			return fmt.Errorf("review %s: unknown bootcamp or author", r.Title)
		}
		if err := s.reviews.Create(ctx, &r); err != nil {
			return fmt.Errorf("review %s: %w", r.Title, err)
		}
	}

	for _, id := range bootcampIDs {
		cost, err := s.courses.AverageTuition(ctx, id)
		if err != nil {
			return err
		}
		if err := s.bootcamps.SetAverageCost(ctx, id, cost); err != nil {
			return err
		}
		rating, err := s.reviews.AverageRating(ctx, id)
		if err != nil {
			return err
		}
		if err := s.bootcamps.SetAverageRating(ctx, id, rating); err != nil {
			return err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"users": len(users), "bootcamps": len(bootcamps), "courses": len(courses), "reviews": len(reviews),
	}).Info("data imported")
	return nil
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
