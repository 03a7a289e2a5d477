package chi

import (
	"encoding/json"
	"sort"
	"time"

	domprov "github.com/kailas-cloud/idxadvisor/internal/domain/provision"
	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
	domusage "github.com/kailas-cloud/idxadvisor/internal/domain/usage"
)

// ErrorCode is the machine-readable error code in error responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodeConflict            ErrorCode = "conflicting_definition"
	ErrorCodeStoreUnavailable    ErrorCode = "store_unavailable"
	ErrorCodeSnapshotUnavailable ErrorCode = "snapshot_unavailable"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

// --- Provisioning ---

// OutcomeResponse is one provisioning outcome.
type OutcomeResponse struct {
	Collection string `json:"collection"`
	Index      string `json:"index"`
	Definition string `json:"definition"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// ProvisionResponse is the body of POST /admin/indexes/provision.
type ProvisionResponse struct {
	RunID         string            `json:"run_id,omitempty"`
	Total         int               `json:"total"`
	Created       int               `json:"created"`
	AlreadyExists int               `json:"already_exists"`
	Failed        int               `json:"failed"`
	Outcomes      []OutcomeResponse `json:"outcomes"`
}

func provisionToResponse(runID string, outcomes []domprov.Outcome) ProvisionResponse {
	sum := domprov.Summarize(runID, time.Time{}, 0, outcomes)
	resp := ProvisionResponse{
		RunID:         runID,
		Total:         sum.Total,
		Created:       sum.Created,
		AlreadyExists: sum.AlreadyExists,
		Failed:        sum.Failed,
		Outcomes:      make([]OutcomeResponse, len(outcomes)),
	}
	for i, o := range outcomes {
		resp.Outcomes[i] = OutcomeResponse{
			Collection: o.Spec.Collection(),
			Index:      o.Spec.Name(),
			Definition: o.Spec.String(),
			Status:     string(o.Status),
			Error:      o.Error(),
			DurationMs: o.Duration.Milliseconds(),
		}
	}
	return resp
}

// --- Usage ---

// IndexUsageResponse is the usage of one index.
type IndexUsageResponse struct {
	Name        string     `json:"name"`
	KeyPattern  string     `json:"key_pattern"`
	AccessCount int64      `json:"access_count"`
	Used        bool       `json:"used"`
	Since       *time.Time `json:"since,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
}

// CollectionUsageResponse is the usage report of one collection.
type CollectionUsageResponse struct {
	Collection       string               `json:"collection"`
	DocumentCount    int64                `json:"document_count"`
	DataBytes        int64                `json:"data_bytes"`
	StorageBytes     int64                `json:"storage_bytes"`
	TotalIndexBytes  int64                `json:"total_index_bytes"`
	Indexes          []IndexUsageResponse `json:"indexes"`
	StatsUnavailable bool                 `json:"stats_unavailable"`
	Reason           string               `json:"reason,omitempty"`
}

// UnusedIndexResponse is an index with no recorded accesses.
type UnusedIndexResponse struct {
	Collection string     `json:"collection"`
	Index      string     `json:"index"`
	Since      *time.Time `json:"since,omitempty"`
}

// UsageResponse is the body of GET /admin/indexes/usage.
type UsageResponse struct {
	Collections []CollectionUsageResponse `json:"collections"`
	Unused      []UnusedIndexResponse     `json:"unused"`
}

func usageToResponse(reports map[string]domusage.Report) UsageResponse {
	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := UsageResponse{
		Collections: make([]CollectionUsageResponse, 0, len(names)),
		Unused:      make([]UnusedIndexResponse, 0),
	}
	for _, name := range names {
		r := reports[name]
		c := CollectionUsageResponse{
			Collection:       name,
			DocumentCount:    r.DocumentCount,
			DataBytes:        r.DataBytes,
			StorageBytes:     r.StorageBytes,
			TotalIndexBytes:  r.TotalIndexBytes,
			Indexes:          make([]IndexUsageResponse, len(r.Indexes)),
			StatsUnavailable: r.StatsUnavailable,
			Reason:           r.Reason,
		}
		for i, ix := range r.Indexes {
			c.Indexes[i] = IndexUsageResponse{
				Name:        ix.Name,
				KeyPattern:  ix.KeyPattern,
				AccessCount: ix.AccessCount,
				Used:        ix.Used,
				Since:       timePtr(ix.Since),
				SizeBytes:   ix.SizeBytes,
			}
		}
		resp.Collections = append(resp.Collections, c)
	}
	for _, u := range domusage.UnusedIndexes(reports) {
		resp.Unused = append(resp.Unused, UnusedIndexResponse{
			Collection: u.Collection,
			Index:      u.Index,
			Since:      timePtr(u.Since),
		})
	}
	return resp
}

// --- Queries ---

// QueryRecordRequest is one slow query. Filter and sort are Extended JSON
// documents; their key order is kept.
type QueryRecordRequest struct {
	Collection string          `json:"collection"`
	Filter     json.RawMessage `json:"filter"`
	Sort       json.RawMessage `json:"sort"`
	DurationMs int64           `json:"duration_ms"`
}

// ClassifyRequest is the body of POST /admin/queries/classify.
type ClassifyRequest struct {
	Records []QueryRecordRequest `json:"records"`
}

// RecommendRequest is the body of POST /admin/queries/recommend.
type RecommendRequest struct {
	Filter json.RawMessage `json:"filter"`
	Sort   json.RawMessage `json:"sort"`
}

// SuggestedKeyResponse is one field of a recommended index.
type SuggestedKeyResponse struct {
	Field     string `json:"field"`
	Direction int    `json:"direction"`
	Phase     string `json:"phase"`
}

// RecommendResponse is the body of POST /admin/queries/recommend.
type RecommendResponse struct {
	KeyOrder []string               `json:"key_order"`
	Keys     []SuggestedKeyResponse `json:"keys"`
}

// AdvisoryResponse is one slow query advisory.
type AdvisoryResponse struct {
	Severity          string                 `json:"severity"`
	Collection        string                 `json:"collection"`
	DurationMs        int64                  `json:"duration_ms"`
	SuggestedKeyOrder []string               `json:"suggested_key_order,omitempty"`
	SuggestedKeys     []SuggestedKeyResponse `json:"suggested_keys,omitempty"`
	Rationale         string                 `json:"rationale"`
}

// AdvisoryListResponse wraps a list of advisories.
type AdvisoryListResponse struct {
	Advisories []AdvisoryResponse `json:"advisories"`
	Total      int                `json:"total"`
}

func keysToResponse(keys []query.SuggestedKey) []SuggestedKeyResponse {
	if len(keys) == 0 {
		return nil
	}
	out := make([]SuggestedKeyResponse, len(keys))
	for i, k := range keys {
		out[i] = SuggestedKeyResponse{Field: k.Field, Direction: k.Direction, Phase: string(k.Phase)}
	}
	return out
}

func advisoriesToResponse(advisories []query.Advisory) AdvisoryListResponse {
	items := make([]AdvisoryResponse, len(advisories))
	for i, a := range advisories {
		items[i] = AdvisoryResponse{
			Severity:          string(a.Severity),
			Collection:        a.Collection,
			DurationMs:        a.DurationMs,
			SuggestedKeyOrder: a.SuggestedKeyOrder,
			SuggestedKeys:     keysToResponse(a.SuggestedKeys),
			Rationale:         a.Rationale,
		}
	}
	return AdvisoryListResponse{Advisories: items, Total: len(items)}
}

// --- Snapshot ---

// OpResponse is one in-flight operation.
type OpResponse struct {
	OpID        string `json:"op_id"`
	Type        string `json:"type"`
	Namespace   string `json:"namespace"`
	RunningMs   int64  `json:"running_ms"`
	Client      string `json:"client,omitempty"`
	Description string `json:"description,omitempty"`
}

// StorageResponse is the database storage summary.
type StorageResponse struct {
	Collections   int64   `json:"collections"`
	Objects       int64   `json:"objects"`
	AvgObjectSize float64 `json:"avg_object_size"`
	DataBytes     int64   `json:"data_bytes"`
	StorageBytes  int64   `json:"storage_bytes"`
	IndexCount    int64   `json:"index_count"`
	IndexBytes    int64   `json:"index_bytes"`
}

// ConnectionsResponse is the server connection state.
type ConnectionsResponse struct {
	Current      int64   `json:"current"`
	Available    int64   `json:"available"`
	TotalCreated int64   `json:"total_created"`
	Utilization  float64 `json:"utilization"`
}

// ServerResponse is the server process state.
type ServerResponse struct {
	Version       string              `json:"version"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	Connections   ConnectionsResponse `json:"connections"`
	ResidentMB    int64               `json:"resident_mb"`
	VirtualMB     int64               `json:"virtual_mb"`
}

// AlertResponse is one derived alert.
type AlertResponse struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SnapshotResponse is the body of GET /admin/snapshot.
type SnapshotResponse struct {
	SampledAt       time.Time       `json:"sampled_at"`
	InFlightOpCount int             `json:"in_flight_op_count"`
	SlowInFlightOps []OpResponse    `json:"slow_in_flight_ops"`
	Storage         StorageResponse `json:"storage"`
	Server          ServerResponse  `json:"server"`
	Alerts          []AlertResponse `json:"alerts"`
}

func snapshotToResponse(s snapshot.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		SampledAt:       s.SampledAt,
		InFlightOpCount: s.InFlightOpCount,
		SlowInFlightOps: make([]OpResponse, len(s.SlowInFlightOps)),
		Storage: StorageResponse{
			Collections:   s.Collections,
			Objects:       s.Objects,
			AvgObjectSize: s.AvgObjectSize,
			DataBytes:     s.DataBytes,
			StorageBytes:  s.StorageBytes,
			IndexCount:    s.IndexCount,
			IndexBytes:    s.IndexBytes,
		},
		Server: ServerResponse{
			Version:       s.Version,
			UptimeSeconds: s.UptimeSeconds,
			Connections: ConnectionsResponse{
				Current:      s.Connections.Current,
				Available:    s.Connections.Available,
				TotalCreated: s.Connections.TotalCreated,
				Utilization:  s.Connections.Utilization(),
			},
			ResidentMB: s.Memory.ResidentMB,
			VirtualMB:  s.Memory.VirtualMB,
		},
		Alerts: make([]AlertResponse, len(s.Alerts)),
	}
	for i, op := range s.SlowInFlightOps {
		resp.SlowInFlightOps[i] = OpResponse{
			OpID:        op.OpID,
			Type:        op.Type,
			Namespace:   op.Namespace,
			RunningMs:   op.RunningMs,
			Client:      op.Client,
			Description: op.Description,
		}
	}
	for i, a := range s.Alerts {
		resp.Alerts[i] = AlertResponse{Level: string(a.Level), Code: a.Code, Message: a.Message}
	}
	return resp
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
