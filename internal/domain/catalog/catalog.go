// Package catalog declares the required index set for each logical collection.
package catalog

import (
	"fmt"

	"github.com/kailas-cloud/idxadvisor/internal/domain/index"
)

// Entry is the ordered list of required indexes for one collection.
type Entry struct {
	Collection string
	Specs      []index.Spec
}

// Catalog is an ordered, immutable sequence of collection entries.
type Catalog struct {
	entries []Entry
}

// New validates entries and builds a Catalog.
// Each collection may appear once; every spec must target its entry's collection.
func New(entries ...Entry) (*Catalog, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Collection == "" {
			return nil, fmt.Errorf("catalog entry without collection")
		}
		if seen[e.Collection] {
			return nil, fmt.Errorf("duplicate catalog entry for collection %q", e.Collection)
		}
		seen[e.Collection] = true
		for _, s := range e.Specs {
			if s.Collection() != e.Collection {
				return nil, fmt.Errorf("spec %s listed under collection %q", s, e.Collection)
			}
		}
		out = append(out, Entry{Collection: e.Collection, Specs: append([]index.Spec(nil), e.Specs...)})
	}
	return &Catalog{entries: out}, nil
}

// Entries returns a copy of the catalog entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{Collection: e.Collection, Specs: append([]index.Spec(nil), e.Specs...)}
	}
	return out
}

// Specs flattens the catalog into one ordered list.
func (c *Catalog) Specs() []index.Spec {
	var out []index.Spec
	for _, e := range c.entries {
		out = append(out, e.Specs...)
	}
	return out
}

// Len returns the total number of index specs.
func (c *Catalog) Len() int {
	n := 0
	for _, e := range c.entries {
		n += len(e.Specs)
	}
	return n
}

// Collections returns the collection names in declaration order.
func (c *Catalog) Collections() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Collection
	}
	return out
}
