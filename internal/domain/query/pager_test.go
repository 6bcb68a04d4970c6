package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
)

// sliceSource pages a fixed slice. It filters only on equality, enough to exercise the pager.
type sliceSource struct {
	records []Record
	listErr error
}

func (s *sliceSource) List(_ context.Context, q Query) ([]Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var matched []Record
	for _, r := range s.records {
		ok := true
		for _, c := range q.Filter {
			if c.Op == Eq && fmt.Sprint(r[c.Field]) != c.Value {
				ok = false
			}
		}
		if ok {
			matched = append(matched, r)
		}
	}
	start := q.Skip()
	if start >= len(matched) {
		return nil, nil
	}
	end := len(matched)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	out := make([]Record, 0, end-start)
	for _, r := range matched[start:end] {
		if len(q.Select) == 0 {
			out = append(out, r)
			continue
		}
		p := Record{"id": r["id"]}
		for _, f := range q.Select {
			if v, ok := r[f]; ok {
				p[f] = v
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *sliceSource) CountAll(context.Context) (int64, error) {
	return int64(len(s.records)), nil
}

func seed(n int) *sliceSource {
	src := &sliceSource{}
	for i := 0; i < n; i++ {
		src.records = append(src.records, Record{
			"id":          fmt.Sprintf("b%03d", i),
			"name":        fmt.Sprintf("Bootcamp %d", i),
			"description": "desc",
			"housing":     i%2 == 0,
		})
	}
	return src
}

func TestRun_FirstPageOfMany(t *testing.T) {
	res, err := Run(context.Background(), seed(150), map[string][]string{"page": {"1"}, "limit": {"100"}})
	require.NoError(t, err)

	assert.Equal(t, 100, res.Count)
	assert.Len(t, res.Data, 100)
	require.NotNil(t, res.Pagination.Next)
	assert.Equal(t, PageRef{Page: 2, Limit: 100}, *res.Pagination.Next)
	assert.Nil(t, res.Pagination.Prev)
}

func TestRun_LastPage(t *testing.T) {
	res, err := Run(context.Background(), seed(150), map[string][]string{"page": {"2"}, "limit": {"100"}})
	require.NoError(t, err)

	assert.Equal(t, 50, res.Count)
	assert.Nil(t, res.Pagination.Next)
	require.NotNil(t, res.Pagination.Prev)
	assert.Equal(t, PageRef{Page: 1, Limit: 100}, *res.Pagination.Prev)
}

func TestRun_SelectProjectsIdentifierAndFields(t *testing.T) {
	res, err := Run(context.Background(), seed(3), map[string][]string{"select": {"name,description"}})
	require.NoError(t, err)

	for _, r := range res.Data {
		assert.Len(t, r, 3)
		assert.Contains(t, r, "id")
		assert.Contains(t, r, "name")
		assert.Contains(t, r, "description")
	}
}

func TestRun_PagesDoNotOverlapAndCoverTheSet(t *testing.T) {
	src := seed(23)
	seen := map[string]int{}
	for page := 1; page <= 5; page++ {
		res, err := Run(context.Background(), src, map[string][]string{"page": {fmt.Sprint(page)}, "limit": {"5"}})
		require.NoError(t, err)
		for _, r := range res.Data {
			seen[r.ID()]++
		}
	}
	assert.Len(t, seen, 23)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

// The next link is computed against the whole collection, not the filtered set.
func TestRun_NextUsesUnfilteredTotal(t *testing.T) {
	src := seed(10)
	res, err := Run(context.Background(), src, map[string][]string{"housing": {"true"}, "limit": {"5"}})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Count)
	require.NotNil(t, res.Pagination.Next)
	assert.Equal(t, 2, res.Pagination.Next.Page)

	res, err = Run(context.Background(), src, map[string][]string{"housing": {"true"}, "limit": {"5"}, "page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Data)
}

type tagExpander struct{}

func (tagExpander) Expand(_ context.Context, records []Record) error {
	for _, r := range records {
		r["courses"] = []Record{}
	}
	return nil
}

func TestRun_ExpandsOnlyThePage(t *testing.T) {
	src := seed(4)
	res, err := Run(context.Background(), src, map[string][]string{"limit": {"2"}}, tagExpander{})
	require.NoError(t, err)

	for _, r := range res.Data {
		assert.Contains(t, r, "courses")
	}
	assert.NotContains(t, src.records[3], "courses")
}

func TestRun_StorageFailureIsInternal(t *testing.T) {
	src := &sliceSource{listErr: errors.New("connection reset")}
	_, err := Run(context.Background(), src, nil)

	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, "Server Error", apperror.PublicMessage(err))
}

func TestRun_TypedErrorsPassThrough(t *testing.T) {
	src := &sliceSource{listErr: apperror.NotFound("Resource not found with id of %s", "zz")}
	_, err := Run(context.Background(), src, nil)

	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPaginate(t *testing.T) {
	q := Query{Page: 3, Limit: 10}
	p := q.Paginate(25)
	assert.Nil(t, p.Next)
	assert.Equal(t, &PageRef{Page: 2, Limit: 10}, p.Prev)

	p = q.Paginate(31)
	assert.Equal(t, &PageRef{Page: 4, Limit: 10}, p.Next)
}
