package provision

import (
	"time"

	"github.com/kailas-cloud/idxadvisor/internal/domain/index"
)

// Status is the provisioning result of a single index spec.
type Status string

// Provisioning status values.
const (
	StatusCreated       Status = "created"
	StatusAlreadyExists Status = "already_exists"
	StatusFailed        Status = "failed"
)

// Outcome is the result of applying one spec.
type Outcome struct {
	Spec     index.Spec
	Status   Status
	Err      error
	Duration time.Duration
}

// Error returns the failure message, or an empty string.
func (o Outcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Summary aggregates the outcomes of one provisioning run.
type Summary struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	Total         int
	Created       int
	AlreadyExists int
	Failed        int
}

// OK reports whether no spec failed.
func (s Summary) OK() bool { return s.Failed == 0 }

// Summarize counts outcomes by status.
func Summarize(runID string, startedAt time.Time, d time.Duration, outcomes []Outcome) Summary {
	s := Summary{RunID: runID, StartedAt: startedAt, Duration: d, Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusCreated:
			s.Created++
		case StatusAlreadyExists:
			s.AlreadyExists++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
