package index

import (
	"fmt"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	domidx "github.com/kailas-cloud/idxadvisor/internal/domain/index"
)

// buildDefinition converts an index spec. Options are never inferred from the key shape.
func buildDefinition(spec domidx.Spec) (*db.IndexDefinition, error) {
	b := db.NewIndex(spec.Collection())
	for _, k := range spec.Keys() {
		kind, err := toDBKind(k.Kind)
		if err != nil {
			return nil, err
		}
		b.Key(k.Field, kind)
	}

	opts := spec.Options()
	if opts.Name != "" {
		b.Named(opts.Name)
	}
	if opts.Unique {
		b.Unique()
	}
	if opts.Sparse {
		b.Sparse()
	}
	if opts.TTLSeconds != nil {
		b.TTL(*opts.TTLSeconds)
	}
	return b.Build()
}

func toDBKind(k domidx.Kind) (db.IndexKind, error) {
	switch k {
	case domidx.Ascending:
		return db.IndexAsc, nil
	case domidx.Descending:
		return db.IndexDesc, nil
	case domidx.Geo2DSphere:
		return db.Index2DSphere, nil
	case domidx.Text:
		return db.IndexText, nil
	case domidx.Hashed:
		return db.IndexHashed, nil
	default:
		return "", fmt.Errorf("unknown index kind: %s", k)
	}
}
