package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	IndexManager
	StatsReader
	AdminReader
	ProfileReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index creation and introspection.
type IndexManager interface {
	// CreateIndex creates the index and returns the name the server assigned.
	CreateIndex(ctx context.Context, def *IndexDefinition) (string, error)
	// ListIndexes returns the live indexes of a collection; a missing collection has none.
	ListIndexes(ctx context.Context, collection string) ([]IndexInfo, error)
}

// StatsReader reads per-collection statistics.
type StatsReader interface {
	ListCollections(ctx context.Context) ([]string, error)
	IndexStats(ctx context.Context, collection string) ([]IndexStat, error)
	CollectionStats(ctx context.Context, collection string) (*CollectionStats, error)
}

// AdminReader runs administrative server commands.
type AdminReader interface {
	CurrentOp(ctx context.Context) ([]CurrentOp, error)
	DatabaseStats(ctx context.Context) (*DatabaseStats, error)
	ServerStatus(ctx context.Context) (*ServerStatus, error)
}

// ProfileReader reads captured operations from the database profiler.
type ProfileReader interface {
	ProfiledQueries(ctx context.Context, q ProfileQuery) ([]ProfiledQuery, error)
}
