package query

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Record is one observed slow query. Filter and Sort keep their field order.
type Record struct {
	Collection string
	Filter     bson.D
	Sort       bson.D
	DurationMs int64
}

// Validate checks that the record can be classified.
func (r Record) Validate() error {
	if r.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if r.DurationMs < 0 {
		return fmt.Errorf("duration must not be negative, got %d", r.DurationMs)
	}
	return nil
}

// Severity is the advisory level of a slow query.
type Severity string

// Severity values.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Phase is the ESR phase a suggested key was placed in.
type Phase string

// ESR phases in key order.
const (
	PhaseEquality Phase = "equality"
	PhaseSort     Phase = "sort"
	PhaseRange    Phase = "range"
)

// SuggestedKey is one field of a recommended compound index.
type SuggestedKey struct {
	Field     string
	Direction int
	Phase     Phase
}

// GenericRationale is attached to medium advisories.
const GenericRationale = "add compound index or restructure query"

// Advisory is the classifier output for one slow query.
type Advisory struct {
	Severity          Severity
	Collection        string
	DurationMs        int64
	SuggestedKeyOrder []string
	SuggestedKeys     []SuggestedKey
	Rationale         string
}
