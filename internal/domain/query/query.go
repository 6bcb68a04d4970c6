// Package query turns list-endpoint query strings into a storage-neutral query description
// and pages the result into the list envelope.
package query

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Reserved parameter names; they never become filter clauses.
const (
	ParamSelect = "select"
	ParamSort   = "sort"
	ParamPage   = "page"
	ParamLimit  = "limit"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// DefaultSort orders records newest first.
var DefaultSort = []SortField{{Field: "createdAt", Desc: true}}

// Operator is a storage-neutral comparison. Adapters map it onto their native token.
type Operator int

const (
	Eq Operator = iota
	Gt
	Gte
	Lt
	Lte
	In
)

var operatorWords = map[string]Operator{
	"gt":  Gt,
	"gte": Gte,
	"lt":  Lt,
	"lte": Lte,
	"in":  In,
}

func (o Operator) String() string {
	switch o {
	case Gt:
		return "gt"
	case Gte:
		return "gte"
	case Lt:
		return "lt"
	case Lte:
		return "lte"
	case In:
		return "in"
	default:
		return "eq"
	}
}

// Clause is a single field/comparator/value triple. In clauses carry Values, all others Value.
type Clause struct {
	Field  string
	Op     Operator
	Value  string
	Values []string
}

type SortField struct {
	Field string
	Desc  bool
}

// Query describes a filtered, sorted, projected page of a collection.
// A zero Limit means no limit, which internal lookups use.
type Query struct {
	Filter []Clause
	Select []string
	Sort   []SortField
	Page   int
	Limit  int
}

// Skip is the index of the first record of the page.
func (q Query) Skip() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	return (clampPage(q.Page, q.Limit) - 1) * q.Limit
}

var bracketKey = regexp.MustCompile(`^(.+)\[([^\[\]]+)\]$`)

// Parse builds a Query from raw query-string parameters. It never fails and never mutates params.
func Parse(params map[string][]string) Query {
	q := Query{
		Select: splitList(first(params, ParamSelect)),
		Sort:   parseSort(first(params, ParamSort)),
		Page:   positiveInt(first(params, ParamPage), DefaultPage),
		Limit:  positiveInt(first(params, ParamLimit), DefaultLimit),
	}
	q.Page = clampPage(q.Page, q.Limit)

	keys := make([]string, 0, len(params))
	for k := range params {
		switch k {
		case ParamSelect, ParamSort, ParamPage, ParamLimit:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field, op := splitKey(key)
		if field == "" {
			continue
		}
		values := params[key]
		if op == In {
			var set []string
			for _, v := range values {
				set = append(set, splitList(v)...)
			}
			q.Filter = append(q.Filter, Clause{Field: field, Op: In, Values: set})
			continue
		}
		for _, v := range values {
			q.Filter = append(q.Filter, Clause{Field: field, Op: op, Value: v})
		}
	}
	return q
}

// splitKey separates "field[op]" or "field.op" into the field path and its operator.
// A bracketed word that is not an operator stays part of the path as a nested field.
func splitKey(key string) (string, Operator) {
	key = strings.TrimSpace(key)
	if m := bracketKey.FindStringSubmatch(key); m != nil {
		if op, ok := operatorWords[m[2]]; ok {
			return m[1], op
		}
		return m[1] + "." + m[2], Eq
	}
	if i := strings.LastIndex(key, "."); i > 0 {
		if op, ok := operatorWords[key[i+1:]]; ok {
			return key[:i], op
		}
	}
	return key, Eq
}

func parseSort(raw string) []SortField {
	fields := splitList(raw)
	if len(fields) == 0 {
		return append([]SortField(nil), DefaultSort...)
	}
	out := make([]SortField, 0, len(fields))
	for _, f := range fields {
		desc := strings.HasPrefix(f, "-")
		f = strings.TrimLeft(f, "-+")
		if f == "" {
			continue
		}
		out = append(out, SortField{Field: f, Desc: desc})
	}
	if len(out) == 0 {
		return append([]SortField(nil), DefaultSort...)
	}
	return out
}

func first(params map[string][]string, key string) string {
	if v := params[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// clampPage caps page so that page*limit cannot overflow.
func clampPage(page, limit int) int {
	if last := math.MaxInt / limit; page > last {
		return last
	}
	return page
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
