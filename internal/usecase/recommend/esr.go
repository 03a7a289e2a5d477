// Package recommend derives compound index key orders from query shapes
// using the Equality, Sort, Range rule.
package recommend

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
)

var rangeOps = map[string]bool{
	"$gt":  true,
	"$gte": true,
	"$lt":  true,
	"$lte": true,
}

// predicate is how a filter value constrains its field.
type predicate int

const (
	predNone predicate = iota
	predEquality
	predRange
)

// Recommend returns the suggested index field order for a query shape.
// The result is never nil.
func Recommend(filter, sort bson.D) []string {
	keys := Plan(filter, sort)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Field
	}
	return out
}

// Plan places each field once, at its earliest phase: equality predicates in
// filter order, then sort fields in sort order with their direction, then
// range predicates in filter order. Top-level operators such as $and or $or
// and operator documents without $eq or a range bound are not placed.
func Plan(filter, sort bson.D) []query.SuggestedKey {
	out := make([]query.SuggestedKey, 0, len(filter)+len(sort))
	placed := make(map[string]bool, len(filter)+len(sort))
	place := func(field string, dir int, phase query.Phase) {
		if placed[field] {
			return
		}
		placed[field] = true
		out = append(out, query.SuggestedKey{Field: field, Direction: dir, Phase: phase})
	}

	for _, e := range filter {
		if isOperator(e.Key) {
			continue
		}
		if classify(e.Value) == predEquality {
			place(e.Key, 1, query.PhaseEquality)
		}
	}
	for _, e := range sort {
		if isOperator(e.Key) {
			continue
		}
		place(e.Key, direction(e.Value), query.PhaseSort)
	}
	for _, e := range filter {
		if isOperator(e.Key) {
			continue
		}
		if classify(e.Value) == predRange {
			place(e.Key, 1, query.PhaseRange)
		}
	}
	return out
}

func isOperator(key string) bool {
	return key == "" || strings.HasPrefix(key, "$")
}

// classify inspects a filter value. Plain values and sub-documents without
// operators are equality; $eq wins over range bounds in the same document.
func classify(v interface{}) predicate {
	keys, ok := docKeys(v)
	if !ok {
		return predEquality
	}

	hasOp, hasEq, hasRange := false, false, false
	for _, k := range keys {
		if !strings.HasPrefix(k, "$") {
			continue
		}
		hasOp = true
		switch {
		case k == "$eq":
			hasEq = true
		case rangeOps[k]:
			hasRange = true
		}
	}

	switch {
	case !hasOp:
		return predEquality
	case hasEq:
		return predEquality
	case hasRange:
		return predRange
	default:
		return predNone
	}
}

func docKeys(v interface{}) ([]string, bool) {
	switch d := v.(type) {
	case bson.D:
		keys := make([]string, len(d))
		for i, e := range d {
			keys[i] = e.Key
		}
		return keys, true
	case bson.M:
		return mapKeys(d), true
	case map[string]interface{}:
		return mapKeys(d), true
	}
	return nil, false
}

func mapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// direction reads a sort value; anything not a negative number sorts ascending.
func direction(v interface{}) int {
	var n float64
	switch x := v.(type) {
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	default:
		return 1
	}
	if n < 0 {
		return -1
	}
	return 1
}
