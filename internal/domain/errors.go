package domain

import "errors"

var (
	// ErrBenignDuplicate signals that an equivalent index already exists.
	ErrBenignDuplicate = errors.New("equivalent index already exists")
	// ErrConflictingDefinition signals an existing index with the same name or keys but an incompatible shape.
	ErrConflictingDefinition = errors.New("conflicting index definition")
	// ErrConnectivity signals a timed out or unreachable store.
	ErrConnectivity = errors.New("store unreachable")
	// ErrPartialStatisticsUnavailable signals that statistics for one collection could not be fetched.
	ErrPartialStatisticsUnavailable = errors.New("statistics unavailable")
	// ErrSnapshotAssembly signals that one of the snapshot's administrative queries failed.
	ErrSnapshotAssembly = errors.New("snapshot assembly failed")
	// ErrInvalidSpec signals a malformed index specification.
	ErrInvalidSpec = errors.New("invalid index spec")
	// ErrInvalidRequest signals malformed advisor input.
	ErrInvalidRequest = errors.New("invalid request")
)
