// Package memstore provides in-memory implementations of the storage ports for tests.
// Filtering follows the document store: array fields match when any element matches,
// values are compared after coercion to the stored type.
package memstore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

// apply runs q over records and returns the projected page. It does not modify records.
func apply(records []query.Record, q query.Query) []query.Record {
	var matched []query.Record
	for _, r := range records {
		if matches(r, q.Filter) {
			matched = append(matched, r)
		}
	}

	sortRecords(matched, q.Sort)

	start := q.Skip()
	if start >= len(matched) {
		return nil
	}
	end := len(matched)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	out := make([]query.Record, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, project(r, q.Select))
	}
	return out
}

func matches(r query.Record, clauses []query.Clause) bool {
	for _, c := range clauses {
		if strings.Contains(c.Field, "$") {
			continue
		}
		v, ok := lookup(r, c.Field)
		if !ok {
			return false
		}
		if !matchClause(v, c) {
			return false
		}
	}
	return true
}

func matchClause(v any, c query.Clause) bool {
	if list, ok := v.([]string); ok {
		for _, item := range list {
			if matchClause(item, c) {
				return true
			}
		}
		return false
	}
	switch c.Op {
	case query.In:
		for _, want := range c.Values {
			if cmp, ok := compare(v, want); ok && cmp == 0 {
				return true
			}
		}
		return false
	case query.Eq:
		cmp, ok := compare(v, c.Value)
		return ok && cmp == 0
	case query.Gt:
		cmp, ok := compare(v, c.Value)
		return ok && cmp > 0
	case query.Gte:
		cmp, ok := compare(v, c.Value)
		return ok && cmp >= 0
	case query.Lt:
		cmp, ok := compare(v, c.Value)
		return ok && cmp < 0
	case query.Lte:
		cmp, ok := compare(v, c.Value)
		return ok && cmp <= 0
	}
	return false
}

// compare orders a stored value against a raw query value, coercing raw to the stored type.
func compare(stored any, raw string) (int, bool) {
	switch s := stored.(type) {
	case float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return cmpFloat(s, f), true
	case int:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return cmpFloat(float64(s), f), true
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return 0, false
		}
		if s == b {
			return 0, true
		}
		if s {
			return 1, true
		}
		return -1, true
	case time.Time:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return 0, false
		}
		return s.Compare(t), true
	case string:
		return strings.Compare(s, raw), true
	default:
		return strings.Compare(fmt.Sprint(s), raw), true
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// lookup resolves a dotted path through nested records.
func lookup(r query.Record, path string) (any, bool) {
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(query.Record)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func sortRecords(records []query.Record, fields []query.SortField) {
	sort.SliceStable(records, func(i, j int) bool {
		for _, f := range fields {
			c := compareValues(records[i], records[j], f.Field)
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return records[i].ID() < records[j].ID()
	})
}

// compareValues orders two records on field; missing values sort first.
func compareValues(a, b query.Record, field string) int {
	va, okA := lookup(a, field)
	vb, okB := lookup(b, field)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	switch x := va.(type) {
	case float64:
		if y, ok := vb.(float64); ok {
			return cmpFloat(x, y)
		}
	case int:
		if y, ok := vb.(int); ok {
			return cmpFloat(float64(x), float64(y))
		}
	case time.Time:
		if y, ok := vb.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fmt.Sprint(va), fmt.Sprint(vb))
}

func project(r query.Record, fields []string) query.Record {
	out := query.Record{}
	if len(fields) == 0 {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	out["id"] = r["id"]
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}
