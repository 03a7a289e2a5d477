package provision

import (
	"context"

	domidx "github.com/kailas-cloud/idxadvisor/internal/domain/index"
	domprov "github.com/kailas-cloud/idxadvisor/internal/domain/provision"
)

// Ensurer makes sure one index exists.
type Ensurer interface {
	Ensure(ctx context.Context, spec domidx.Spec) (domprov.Status, error)
}
