package slowquery

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
)

// Recommender proposes compound index key orders for a query shape.
type Recommender interface {
	Plan(filter, sort bson.D) []query.SuggestedKey
}

// Source supplies slow query records captured by the database profiler.
type Source interface {
	SlowQueries(ctx context.Context, since time.Time, minMillis, limit int64) ([]query.Record, error)
}
