package mongodb

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kailas-cloud/idxadvisor/internal/db"
)

// ListCollections returns regular collection names, excluding views and system collections.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "type", Value: "collection"}})
	observe(db.OpListCollections, start, err)
	if err != nil {
		return nil, wrapErr(db.OpListCollections, err)
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, "system.") {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

type indexStatDoc struct {
	Name     string `bson:"name"`
	Key      bson.D `bson:"key"`
	Accesses struct {
		Ops   int64     `bson:"ops"`
		Since time.Time `bson:"since"`
	} `bson:"accesses"`
}

// IndexStats runs the $indexStats stage on a collection.
func (s *Store) IndexStats(ctx context.Context, collection string) ([]db.IndexStat, error) {
	pipeline := mongo.Pipeline{{{Key: "$indexStats", Value: bson.D{}}}}

	start := time.Now()
	cur, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	observe(db.OpIndexStats, start, err)
	if err != nil {
		return nil, wrapErr(db.OpIndexStats, err)
	}
	defer cur.Close(ctx)

	var docs []indexStatDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr(db.OpIndexStats, err)
	}

	out := make([]db.IndexStat, 0, len(docs))
	for i := range docs {
		keys, err := keysFromDoc(docs[i].Key, nil)
		if err != nil {
			return nil, &db.Error{Op: db.OpIndexStats, Err: err}
		}
		out = append(out, db.IndexStat{
			Name:     docs[i].Name,
			Keys:     keys,
			Accesses: docs[i].Accesses.Ops,
			Since:    docs[i].Accesses.Since,
		})
	}
	return out, nil
}

type collStatsDoc struct {
	Count          int64            `bson:"count"`
	Size           int64            `bson:"size"`
	StorageSize    int64            `bson:"storageSize"`
	TotalIndexSize int64            `bson:"totalIndexSize"`
	IndexSizes     map[string]int64 `bson:"indexSizes"`
}

// CollectionStats runs collStats on a collection.
func (s *Store) CollectionStats(ctx context.Context, collection string) (*db.CollectionStats, error) {
	start := time.Now()
	res := s.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: collection}})
	err := res.Err()
	observe(db.OpCollStats, start, err)
	if err != nil {
		return nil, wrapErr(db.OpCollStats, err)
	}

	var doc collStatsDoc
	if err := res.Decode(&doc); err != nil {
		return nil, wrapErr(db.OpCollStats, err)
	}
	return &db.CollectionStats{
		Count:          doc.Count,
		Size:           doc.Size,
		StorageSize:    doc.StorageSize,
		TotalIndexSize: doc.TotalIndexSize,
		IndexSizes:     doc.IndexSizes,
	}, nil
}
