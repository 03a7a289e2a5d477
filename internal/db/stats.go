package db

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// IndexStat is one row of the $indexStats stage.
type IndexStat struct {
	Name     string
	Keys     []IndexKey
	Accesses int64
	Since    time.Time
}

// CollectionStats is the subset of collStats the advisor reads.
type CollectionStats struct {
	Count          int64
	Size           int64
	StorageSize    int64
	TotalIndexSize int64
	IndexSizes     map[string]int64
}

// DatabaseStats is the subset of dbStats the advisor reads.
type DatabaseStats struct {
	Collections int64
	Objects     int64
	AvgObjSize  float64
	DataSize    int64
	StorageSize int64
	Indexes     int64
	IndexSize   int64
}

// ConnectionStats are the serverStatus connection counters.
type ConnectionStats struct {
	Current      int64
	Available    int64
	TotalCreated int64
}

// ServerStatus is the subset of serverStatus the advisor reads.
type ServerStatus struct {
	Version       string
	UptimeSeconds int64
	Connections   ConnectionStats
	ResidentMB    int64
	VirtualMB     int64
}

// CurrentOp is one in-progress operation reported by currentOp.
type CurrentOp struct {
	OpID             string
	Type             string
	Namespace        string
	Client           string
	Description      string
	Active           bool
	MicrosecsRunning int64
}

// ProfileQuery selects profiler entries.
type ProfileQuery struct {
	Since     time.Time
	MinMillis int64
	Limit     int64
}

// ProfiledQuery is one captured read from system.profile.
type ProfiledQuery struct {
	Namespace string
	Filter    bson.D
	Sort      bson.D
	Millis    int64
	At        time.Time
}
