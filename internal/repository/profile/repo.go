package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
)

// store is the consumer interface for profiler reads (ISP).
type store interface {
	ProfiledQueries(ctx context.Context, q db.ProfileQuery) ([]db.ProfiledQuery, error)
}

// Repo implements usecase/slowquery.Source.
type Repo struct {
	store store
}

// New creates a profiler repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SlowQueries returns profiled find operations at or above minMillis, newest first.
func (r *Repo) SlowQueries(ctx context.Context, since time.Time, minMillis, limit int64) ([]query.Record, error) {
	rows, err := r.store.ProfiledQueries(ctx, db.ProfileQuery{Since: since, MinMillis: minMillis, Limit: limit})
	if err != nil {
		if errors.Is(err, db.ErrUnavailable) {
			return nil, fmt.Errorf("read profiler: %w: %w", domain.ErrConnectivity, err)
		}
		return nil, fmt.Errorf("read profiler: %w", err)
	}

	out := make([]query.Record, 0, len(rows))
	for _, row := range rows {
		coll := collectionOf(row.Namespace)
		if coll == "" {
			continue
		}
		out = append(out, query.Record{
			Collection: coll,
			Filter:     row.Filter,
			Sort:       row.Sort,
			DurationMs: row.Millis,
		})
	}
	return out, nil
}

// collectionOf strips the database prefix from a namespace.
func collectionOf(ns string) string {
	_, coll, ok := strings.Cut(ns, ".")
	if !ok {
		return ""
	}
	return coll
}
