package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
)

// Record is one document of a list result, keyed by its JSON field names. The identifier is "id".
type Record map[string]any

// ID returns the record identifier as a string.
func (r Record) ID() string {
	if v, ok := r["id"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// Source is a collection the pager can read from.
type Source interface {
	// List returns the filtered, sorted, projected page described by q.
	List(ctx context.Context, q Query) ([]Record, error)
	// CountAll returns the size of the whole collection, ignoring any filter.
	CountAll(ctx context.Context) (int64, error)
}

// Expander attaches related data to a page of records in place.
type Expander interface {
	Expand(ctx context.Context, records []Record) error
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Result is the list envelope payload. Count is the size of Data, not of the matching set.
type Result struct {
	Count      int
	Pagination Pagination
	Data       []Record
}

// Paginate computes the neighbour links of the page against total.
// The caller passes the unfiltered collection size, so "next" may point past the last matching record.
func (q Query) Paginate(total int64) Pagination {
	var p Pagination
	if q.Page < 1 || q.Limit < 1 {
		return p
	}
	q.Page = clampPage(q.Page, q.Limit)
	if int64(q.Page)*int64(q.Limit) < total {
		p.Next = &PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Skip() > 0 {
		p.Prev = &PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

// asQueryError keeps typed errors (a malformed id is a NotFound) and hides storage failures.
func asQueryError(err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Internal("query failed", err)
}

// Run parses params, reads the page from src, expands it and returns the list result.
func Run(ctx context.Context, src Source, params map[string][]string, expanders ...Expander) (*Result, error) {
	q := Parse(params)

	records, err := src.List(ctx, q)
	if err != nil {
		return nil, asQueryError(err)
	}
	total, err := src.CountAll(ctx)
	if err != nil {
		return nil, asQueryError(err)
	}
	for _, e := range expanders {
		if err := e.Expand(ctx, records); err != nil {
			return nil, err
		}
	}
	if records == nil {
		records = []Record{}
	}
	return &Result{Count: len(records), Pagination: q.Paginate(total), Data: records}, nil
}
