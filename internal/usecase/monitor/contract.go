package monitor

import (
	"context"

	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
)

// Repository reads live server state.
type Repository interface {
	InFlightOps(ctx context.Context) ([]snapshot.Op, error)
	Storage(ctx context.Context) (snapshot.Storage, error)
	Server(ctx context.Context) (snapshot.Server, error)
}
