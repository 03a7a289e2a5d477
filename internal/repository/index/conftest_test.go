package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	domidx "github.com/kailas-cloud/idxadvisor/internal/domain/index"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) (string, error)
	listIndexesFn func(ctx context.Context, collection string) ([]db.IndexInfo, error)
	createCalls   int
	listCalls     int
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) (string, error) {
	m.createCalls++
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return def.EffectiveName(), nil
}

func (m *mockStore) ListIndexes(ctx context.Context, collection string) ([]db.IndexInfo, error) {
	m.listCalls++
	if m.listIndexesFn != nil {
		return m.listIndexesFn(ctx, collection)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func statusSpec(t *testing.T) domidx.Spec {
	t.Helper()
	return domidx.MustNew("bookings", []domidx.Key{
		{Field: "status", Kind: domidx.Ascending},
		{Field: "checkInDate", Kind: domidx.Ascending},
	}, domidx.Options{})
}

func statusInfo(name string) db.IndexInfo {
	return db.IndexInfo{
		Name: name,
		Keys: []db.IndexKey{
			{Field: "status", Kind: db.IndexAsc},
			{Field: "checkInDate", Kind: db.IndexAsc},
		},
	}
}
