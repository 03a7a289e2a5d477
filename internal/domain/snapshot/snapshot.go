package snapshot

import "time"

// Op is an operation still running when the snapshot was taken.
type Op struct {
	OpID        string
	Type        string
	Namespace   string
	RunningMs   int64
	Client      string
	Description string
}

// Connections are the server connection counters.
type Connections struct {
	Current      int64
	Available    int64
	TotalCreated int64
}

// Utilization returns current / (current + available), or 0 when unknown.
func (c Connections) Utilization() float64 {
	total := c.Current + c.Available
	if total <= 0 {
		return 0
	}
	return float64(c.Current) / float64(total)
}

// Memory is the server process memory in megabytes.
type Memory struct {
	ResidentMB int64
	VirtualMB  int64
}

// Level is the alert level.
type Level string

// Alert levels.
const (
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Alert is a condition derived from a snapshot.
type Alert struct {
	Level   Level
	Code    string
	Message string
}

// Storage is the database-level storage summary from dbStats.
type Storage struct {
	Collections   int64
	Objects       int64
	AvgObjectSize float64
	DataBytes     int64
	StorageBytes  int64
	IndexCount    int64
	IndexBytes    int64
}

// Server is the process-level state from serverStatus.
type Server struct {
	Version       string
	UptimeSeconds int64
	Connections   Connections
	Memory        Memory
}

// Snapshot is a point-in-time operational record assembled from three admin queries.
type Snapshot struct {
	SampledAt time.Time

	InFlightOpCount int
	SlowInFlightOps []Op

	Storage
	Server

	Alerts []Alert
}
