package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/idxadvisor/internal/db"
)

// CreateIndex creates one index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) (string, error) {
	if err := def.Validate(); err != nil {
		return "", &db.Error{Op: db.OpCreateIndexes, Err: err}
	}

	model := mongo.IndexModel{
		Keys:    keysDoc(def.Keys),
		Options: indexOptions(def),
	}

	start := time.Now()
	name, err := s.db.Collection(def.Collection).Indexes().CreateOne(ctx, model)
	observe(db.OpCreateIndexes, start, err)
	if err != nil {
		return "", classifyCreateErr(err)
	}
	return name, nil
}

// ListIndexes returns the live indexes of a collection. A missing collection yields none.
func (s *Store) ListIndexes(ctx context.Context, collection string) ([]db.IndexInfo, error) {
	start := time.Now()
	cur, err := s.db.Collection(collection).Indexes().List(ctx)
	observe(db.OpListIndexes, start, err)
	if err != nil {
		if serverCode(err) == db.CodeNamespaceNotFound {
			return nil, nil
		}
		return nil, wrapErr(db.OpListIndexes, err)
	}
	defer cur.Close(ctx)

	var docs []indexDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr(db.OpListIndexes, err)
	}

	out := make([]db.IndexInfo, 0, len(docs))
	for i := range docs {
		keys, err := keysFromDoc(docs[i].Key, docs[i].Weights)
		if err != nil {
			return nil, &db.Error{Op: db.OpListIndexes, Err: fmt.Errorf("index %s: %w", docs[i].Name, err)}
		}
		out = append(out, db.IndexInfo{
			Name:               docs[i].Name,
			Keys:               keys,
			Unique:             docs[i].Unique,
			Sparse:             docs[i].Sparse,
			ExpireAfterSeconds: docs[i].ExpireAfterSeconds,
		})
	}
	return out, nil
}

type indexDoc struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             bool   `bson:"unique"`
	Sparse             bool   `bson:"sparse"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds"`
	Weights            bson.D `bson:"weights"`
}

func keysDoc(keys []db.IndexKey) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		var v interface{}
		switch k.Kind {
		case db.IndexAsc:
			v = int32(1)
		case db.IndexDesc:
			v = int32(-1)
		default:
			v = string(k.Kind)
		}
		d = append(d, bson.E{Key: k.Field, Value: v})
	}
	return d
}

func indexOptions(def *db.IndexDefinition) *options.IndexOptions {
	o := options.Index()
	if def.Name != "" {
		o.SetName(def.Name)
	}
	if def.Unique {
		o.SetUnique(true)
	}
	if def.Sparse {
		o.SetSparse(true)
	}
	if def.ExpireAfterSeconds != nil {
		o.SetExpireAfterSeconds(*def.ExpireAfterSeconds)
	}
	return o
}

// keysFromDoc converts a server key document. The internal _fts/_ftsx pair of a
// text index expands to one text key per weighted field, in weights order.
func keysFromDoc(key, weights bson.D) ([]db.IndexKey, error) {
	out := make([]db.IndexKey, 0, len(key))
	for _, e := range key {
		switch e.Key {
		case "_ftsx":
			continue
		case "_fts":
			if len(weights) == 0 {
				out = append(out, db.IndexKey{Field: e.Key, Kind: db.IndexText})
				continue
			}
			for _, w := range weights {
				out = append(out, db.IndexKey{Field: w.Key, Kind: db.IndexText})
			}
			continue
		}
		kind, err := kindOf(e.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", e.Key, err)
		}
		out = append(out, db.IndexKey{Field: e.Key, Kind: kind})
	}
	return out, nil
}

func kindOf(v interface{}) (db.IndexKind, error) {
	if s, ok := v.(string); ok {
		return db.IndexKind(s), nil
	}
	n, ok := number(v)
	if !ok {
		return "", errors.New("unsupported key value")
	}
	if n < 0 {
		return db.IndexDesc, nil
	}
	return db.IndexAsc, nil
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
