package idxadvisor

import "github.com/kailas-cloud/idxadvisor/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrBenignDuplicate              = domain.ErrBenignDuplicate
	ErrConflictingDefinition        = domain.ErrConflictingDefinition
	ErrConnectivity                 = domain.ErrConnectivity
	ErrPartialStatisticsUnavailable = domain.ErrPartialStatisticsUnavailable
	ErrSnapshotAssembly             = domain.ErrSnapshotAssembly
	ErrInvalidSpec                  = domain.ErrInvalidSpec
)
