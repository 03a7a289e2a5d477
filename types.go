package idxadvisor

import (
	"github.com/kailas-cloud/idxadvisor/internal/domain/catalog"
	"github.com/kailas-cloud/idxadvisor/internal/domain/index"
	domprov "github.com/kailas-cloud/idxadvisor/internal/domain/provision"
	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
	domusage "github.com/kailas-cloud/idxadvisor/internal/domain/usage"
)

// Catalog types.
type (
	Catalog      = catalog.Catalog
	CatalogEntry = catalog.Entry
	IndexSpec    = index.Spec
	IndexKey     = index.Key
	IndexKind    = index.Kind
	IndexOptions = index.Options
)

// Index key kinds.
const (
	Ascending   = index.Ascending
	Descending  = index.Descending
	Geo2DSphere = index.Geo2DSphere
	Text        = index.Text
	Hashed      = index.Hashed
)

// Provisioning results.
type (
	Outcome         = domprov.Outcome
	ProvisionStatus = domprov.Status
	Summary         = domprov.Summary
)

// Provisioning statuses.
const (
	StatusCreated       = domprov.StatusCreated
	StatusAlreadyExists = domprov.StatusAlreadyExists
	StatusFailed        = domprov.StatusFailed
)

// Usage reports.
type (
	UsageReport = domusage.Report
	IndexUsage  = domusage.IndexUsage
	UnusedIndex = domusage.Unused
)

// Slow query classification.
type (
	QueryRecord  = query.Record
	Advisory     = query.Advisory
	Severity     = query.Severity
	SuggestedKey = query.SuggestedKey
)

// Advisory severities.
const (
	SeverityHigh   = query.SeverityHigh
	SeverityMedium = query.SeverityMedium
)

// Operational snapshots.
type (
	Snapshot = snapshot.Snapshot
	Alert    = snapshot.Alert
)

// NewIndexSpec validates and builds an index spec.
func NewIndexSpec(collection string, keys []IndexKey, opts IndexOptions) (IndexSpec, error) {
	return index.New(collection, keys, opts)
}

// NewCatalog builds a catalog from ordered collection entries.
func NewCatalog(entries ...CatalogEntry) (*Catalog, error) {
	return catalog.New(entries...)
}

// DefaultCatalog returns the built-in storefront catalog.
func DefaultCatalog() *Catalog {
	return catalog.Default()
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	return catalog.Load(path)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	return catalog.Parse(data)
}

// UnusedIndexes lists indexes without recorded accesses across reports.
func UnusedIndexes(reports map[string]UsageReport) []UnusedIndex {
	return domusage.UnusedIndexes(reports)
}
