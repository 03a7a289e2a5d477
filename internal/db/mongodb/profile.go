package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/idxadvisor/internal/db"
)

type profileDoc struct {
	NS      string `bson:"ns"`
	Command struct {
		Filter bson.D `bson:"filter"`
		Sort   bson.D `bson:"sort"`
	} `bson:"command"`
	Millis int64     `bson:"millis"`
	TS     time.Time `bson:"ts"`
}

// ProfiledQueries reads find operations from system.profile, newest first.
// The profiler must be enabled on the database for entries to exist.
func (s *Store) ProfiledQueries(ctx context.Context, q db.ProfileQuery) ([]db.ProfiledQuery, error) {
	filter := bson.D{
		{Key: "op", Value: "query"},
		{Key: "millis", Value: bson.D{{Key: "$gte", Value: q.MinMillis}}},
	}
	if !q.Since.IsZero() {
		filter = append(filter, bson.E{Key: "ts", Value: bson.D{{Key: "$gte", Value: q.Since}}})
	}
	opts := options.Find().SetSort(bson.D{{Key: "ts", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	start := time.Now()
	cur, err := s.db.Collection("system.profile").Find(ctx, filter, opts)
	observe(db.OpProfile, start, err)
	if err != nil {
		return nil, wrapErr(db.OpProfile, err)
	}
	defer cur.Close(ctx)

	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr(db.OpProfile, err)
	}

	out := make([]db.ProfiledQuery, 0, len(docs))
	for i := range docs {
		out = append(out, db.ProfiledQuery{
			Namespace: docs[i].NS,
			Filter:    docs[i].Command.Filter,
			Sort:      docs[i].Command.Sort,
			Millis:    docs[i].Millis,
			At:        docs[i].TS,
		})
	}
	return out, nil
}
