package usage

import (
	"context"

	domusage "github.com/kailas-cloud/idxadvisor/internal/domain/usage"
)

// Repository reads collection statistics.
type Repository interface {
	Collections(ctx context.Context) ([]string, error)
	CollectionUsage(ctx context.Context, collection string) (domusage.Report, error)
}
