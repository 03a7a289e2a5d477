package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/usage"
)

// store is the consumer interface for usage statistics (ISP).
type store interface {
	ListCollections(ctx context.Context) ([]string, error)
	IndexStats(ctx context.Context, collection string) ([]db.IndexStat, error)
	CollectionStats(ctx context.Context, collection string) (*db.CollectionStats, error)
}

// Repo implements usecase/usage.Repository.
type Repo struct {
	store store
}

// New creates a statistics repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Collections lists live regular collections.
func (r *Repo) Collections(ctx context.Context) ([]string, error) {
	names, err := r.store.ListCollections(ctx)
	if err != nil {
		if errors.Is(err, db.ErrUnavailable) {
			return nil, fmt.Errorf("list collections: %w: %w", domain.ErrConnectivity, err)
		}
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// CollectionUsage builds the usage report of one collection.
// Any statistics failure is wrapped with domain.ErrPartialStatisticsUnavailable.
func (r *Repo) CollectionUsage(ctx context.Context, collection string) (usage.Report, error) {
	ixStats, err := r.store.IndexStats(ctx, collection)
	if err != nil {
		return usage.Report{}, fmt.Errorf("%w: %s: %w", domain.ErrPartialStatisticsUnavailable, collection, err)
	}
	cs, err := r.store.CollectionStats(ctx, collection)
	if err != nil {
		return usage.Report{}, fmt.Errorf("%w: %s: %w", domain.ErrPartialStatisticsUnavailable, collection, err)
	}

	indexes := make([]usage.IndexUsage, 0, len(ixStats))
	for _, st := range ixStats {
		indexes = append(indexes, usage.NewIndexUsage(
			st.Name,
			db.KeyPatternString(st.Keys),
			st.Accesses,
			st.Since,
			cs.IndexSizes[st.Name],
		))
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })

	return usage.Report{
		Collection:      collection,
		DocumentCount:   cs.Count,
		DataBytes:       cs.Size,
		StorageBytes:    cs.StorageSize,
		TotalIndexBytes: cs.TotalIndexSize,
		Indexes:         indexes,
	}, nil
}
