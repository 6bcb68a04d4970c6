package mongodb

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

// hiddenFields never leave the store through a list query.
var hiddenFields = []string{"password", "resetPasswordToken", "resetPasswordExpire"}

// refFields hold ObjectIDs; their query values are parsed as hex ids.
var refFields = map[string]bool{"_id": true, "user": true, "bootcamp": true}

func operatorToken(op query.Operator) string {
	switch op {
	case query.Gt:
		return "$gt"
	case query.Gte:
		return "$gte"
	case query.Lt:
		return "$lt"
	case query.Lte:
		return "$lte"
	case query.In:
		return "$in"
	default:
		return "$eq"
	}
}

func storedField(f string) string {
	if f == "id" {
		return "_id"
	}
	return f
}

// buildFilter maps clauses onto a Mongo filter document. Clauses on the same field are merged.
// Equality and membership match both the coerced and the literal value, so "12" finds a stored
// number 12 as well as a stored string "12".
func buildFilter(clauses []query.Clause) bson.D {
	filter := bson.D{}
	index := map[string]int{}
	for _, c := range clauses {
		if c.Field == "" || strings.Contains(c.Field, "$") {
			continue
		}
		field := storedField(c.Field)

		var cond bson.E
		switch c.Op {
		case query.Eq:
			cond = bson.E{Key: "$in", Value: candidates(field, c.Value)}
		case query.In:
			values := bson.A{}
			for _, v := range c.Values {
				values = append(values, candidates(field, v)...)
			}
			cond = bson.E{Key: "$in", Value: values}
		default:
			cond = bson.E{Key: operatorToken(c.Op), Value: coerce(field, c.Value)}
		}

		if i, ok := index[field]; ok {
			existing := filter[i].Value.(bson.D)
			filter[i].Value = append(existing, cond)
			continue
		}
		index[field] = len(filter)
		filter = append(filter, bson.E{Key: field, Value: bson.D{cond}})
	}
	return filter
}

func candidates(field, raw string) bson.A {
	v := coerce(field, raw)
	if s, ok := v.(string); ok && s == raw {
		return bson.A{raw}
	}
	return bson.A{v, raw}
}

// coerce converts a raw query value into the most specific BSON type it parses as.
func coerce(field, raw string) any {
	if refFields[field] {
		if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
			return oid
		}
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return raw
}

// buildProjection returns the projection for a select list. Hidden fields are always removed.
func buildProjection(fields []string) bson.D {
	if len(fields) == 0 {
		proj := bson.D{}
		for _, h := range hiddenFields {
			proj = append(proj, bson.E{Key: h, Value: 0})
		}
		return proj
	}
	hidden := map[string]bool{}
	for _, h := range hiddenFields {
		hidden[h] = true
	}
	proj := bson.D{}
	seen := map[string]bool{}
	for _, f := range fields {
		f = storedField(f)
		if hidden[f] || seen[f] || strings.Contains(f, "$") {
			continue
		}
		seen[f] = true
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	if len(proj) == 0 {
		proj = append(proj, bson.E{Key: "_id", Value: 1})
	}
	return proj
}

// buildSort maps sort fields onto a sort document ending with _id as tie-breaker.
func buildSort(fields []query.SortField) bson.D {
	sort := bson.D{}
	hasID := false
	for _, f := range fields {
		name := storedField(f.Field)
		if strings.Contains(name, "$") {
			continue
		}
		dir := 1
		if f.Desc {
			dir = -1
		}
		if name == "_id" {
			hasID = true
		}
		sort = append(sort, bson.E{Key: name, Value: dir})
	}
	if !hasID {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}
