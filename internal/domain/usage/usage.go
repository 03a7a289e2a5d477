// Package usage holds per-collection index usage reports.
//
// Access counters come from the store's $indexStats stage and count
// operations since the server last restarted (or since the index was
// created, whichever is later). IndexUsage.Since carries that instant.
// A zero count right after a restart says nothing about real usage.
package usage

import (
	"sort"
	"time"
)

// IndexUsage is the usage record for one index.
type IndexUsage struct {
	Name        string
	KeyPattern  string
	AccessCount int64
	Used        bool
	Since       time.Time
	SizeBytes   int64
}

// NewIndexUsage builds an IndexUsage; Used is derived from the access count.
func NewIndexUsage(name, keyPattern string, accesses int64, since time.Time, size int64) IndexUsage {
	return IndexUsage{
		Name:        name,
		KeyPattern:  keyPattern,
		AccessCount: accesses,
		Used:        accesses > 0,
		Since:       since,
		SizeBytes:   size,
	}
}

// Report is the usage report for one collection.
type Report struct {
	Collection      string
	DocumentCount   int64
	DataBytes       int64
	StorageBytes    int64
	TotalIndexBytes int64
	Indexes         []IndexUsage

	// StatsUnavailable marks a collection whose statistics could not be read.
	StatsUnavailable bool
	Reason           string
}

// Unavailable builds a flagged report for a collection whose statistics failed.
func Unavailable(collection string, err error) Report {
	return Report{Collection: collection, StatsUnavailable: true, Reason: err.Error()}
}

// Unused is an index that recorded no accesses.
type Unused struct {
	Collection string
	Index      string
	Since      time.Time
}

// UnusedIndexes lists unused indexes across reports, sorted by collection and name.
// The mandatory _id_ index and flagged reports are skipped.
func UnusedIndexes(reports map[string]Report) []Unused {
	var out []Unused
	for coll, r := range reports {
		if r.StatsUnavailable {
			continue
		}
		for _, ix := range r.Indexes {
			if ix.Used || ix.Name == "_id_" {
				continue
			}
			out = append(out, Unused{Collection: coll, Index: ix.Name, Since: ix.Since})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		return out[i].Index < out[j].Index
	})
	return out
}
