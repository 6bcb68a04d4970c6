package application

import (
	"context"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

// CoursesExpander attaches every course of a bootcamp under "courses".
type CoursesExpander struct {
	Courses repository.CourseRepository
}

func (e CoursesExpander) Expand(ctx context.Context, records []query.Record) error {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if id := r.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	grouped, err := e.Courses.ListByBootcamps(ctx, ids)
	if err != nil {
		return apperror.Internal("query failed", err)
	}
	for _, r := range records {
		courses := grouped[r.ID()]
		if courses == nil {
			courses = []query.Record{}
		}
		r["courses"] = courses
	}
	return nil
}

// BootcampSummaryExpander replaces the "bootcamp" reference with {id, name, description}.
// A reference to a deleted bootcamp becomes null.
type BootcampSummaryExpander struct {
	Bootcamps repository.BootcampRepository
}

func (e BootcampSummaryExpander) Expand(ctx context.Context, records []query.Record) error {
	seen := map[string]bool{}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		id, ok := r["bootcamp"].(string)
		if !ok || id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	summaries, err := e.Bootcamps.Summaries(ctx, ids)
	if err != nil {
		return apperror.Internal("query failed", err)
	}
	for _, r := range records {
		id, ok := r["bootcamp"].(string)
		if !ok || id == "" {
			continue
		}
		if s, found := summaries[id]; found {
			r["bootcamp"] = s
		} else {
			r["bootcamp"] = nil
		}
	}
	return nil
}

// bootcampSummary loads the summary of a single bootcamp, nil when it no longer exists.
func bootcampSummary(ctx context.Context, repo repository.BootcampRepository, id string) (query.Record, error) {
	summaries, err := repo.Summaries(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return summaries[id], nil
}
