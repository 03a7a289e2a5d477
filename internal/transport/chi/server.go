package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/catalog"
	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
	"github.com/kailas-cloud/idxadvisor/internal/logger"
	healthuc "github.com/kailas-cloud/idxadvisor/internal/usecase/health"
	"github.com/kailas-cloud/idxadvisor/internal/usecase/recommend"
	"github.com/kailas-cloud/idxadvisor/internal/version"
)

const (
	maxBodyBytes       = 1 << 20
	maxClassifyRecords = 1000
	defaultProfileAge  = time.Hour
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the admin API.
type Server struct {
	catalog       *catalog.Catalog
	provisioner   Provisioner
	analyzer      Analyzer
	classifier    Classifier
	monitor       Monitor
	health        HealthChecker
	logger        *zap.Logger
	now           func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates an admin API server. cat is the catalog applied by
// POST /admin/indexes/provision when the request carries none.
func NewServer(
	cat *catalog.Catalog,
	provisioner Provisioner,
	analyzer Analyzer,
	classifier Classifier,
	monitor Monitor,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog:     cat,
		provisioner: provisioner,
		analyzer:    analyzer,
		classifier:  classifier,
		monitor:     monitor,
		health:      health,
		logger:      logger,
		now:         time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidSpec, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrConflictingDefinition, http.StatusConflict, ErrorCodeConflict),
		sentinelHandler(domain.ErrSnapshotAssembly, http.StatusServiceUnavailable, ErrorCodeSnapshotUnavailable),
		sentinelHandler(domain.ErrConnectivity, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable),
	}
	return s
}

// Routes mounts the admin API, /health and /metrics on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/admin", func(r gochi.Router) {
		r.Post("/indexes/provision", s.ProvisionIndexes)
		r.Get("/indexes/usage", s.GetUsage)
		r.Post("/queries/classify", s.ClassifyQueries)
		r.Get("/queries/profile", s.ProfileQueries)
		r.Post("/queries/recommend", s.RecommendIndex)
		r.Get("/snapshot", s.GetSnapshot)
	})
}

// ProvisionIndexes handles POST /admin/indexes/provision. A YAML body
// replaces the configured catalog for this run.
func (s *Server) ProvisionIndexes(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog
	if isYAML(r.Header.Get("Content-Type")) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
		if len(data) > 0 {
			cat, err = catalog.Parse(data)
			if err != nil {
				writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "Invalid catalog: "+err.Error())
				return
			}
		}
	}
	if cat == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "No catalog configured")
		return
	}

	outcomes := s.provisioner.ProvisionAll(r.Context(), cat)
	runID := ""
	if last, ok := s.provisioner.LastRun(); ok {
		runID = last.RunID
	}

	logger.FromContext(r.Context()).Debug("Provisioning requested",
		zap.String("run_id", runID),
		zap.Int("specs", len(outcomes)),
	)
	writeJSON(w, http.StatusOK, provisionToResponse(runID, outcomes))
}

// GetUsage handles GET /admin/indexes/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	reports, err := s.analyzer.Analyze(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(reports))
}

// ClassifyQueries handles POST /admin/queries/classify.
func (s *Server) ClassifyQueries(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Records) > maxClassifyRecords {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("records count must be at most %d", maxClassifyRecords))
		return
	}

	records := make([]query.Record, 0, len(req.Records))
	for i, item := range req.Records {
		rec, err := recordFromRequest(item)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, fmt.Sprintf("records[%d]: %s", i, err))
			return
		}
		records = append(records, rec)
	}

	writeJSON(w, http.StatusOK, advisoriesToResponse(s.classifier.Classify(records)))
}

// ProfileQueries handles GET /admin/queries/profile?since=RFC3339&limit=N.
func (s *Server) ProfileQueries(w http.ResponseWriter, r *http.Request) {
	since := s.now().Add(-defaultProfileAge)
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "since must be an RFC 3339 timestamp")
			return
		}
		since = t
	}

	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = n
	}

	advisories, err := s.classifier.ClassifyProfile(r.Context(), since, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, advisoriesToResponse(advisories))
}

// RecommendIndex handles POST /admin/queries/recommend.
func (s *Server) RecommendIndex(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filter, err := decodeDocument(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "filter: "+err.Error())
		return
	}
	sort, err := decodeDocument(req.Sort)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "sort: "+err.Error())
		return
	}

	keys := recommend.Plan(filter, sort)
	order := make([]string, len(keys))
	for i, k := range keys {
		order[i] = k.Field
	}
	resp := RecommendResponse{KeyOrder: order, Keys: keysToResponse(keys)}
	if resp.Keys == nil {
		resp.Keys = []SuggestedKeyResponse{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSnapshot handles GET /admin/snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.monitor.Snapshot(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

func recordFromRequest(item QueryRecordRequest) (query.Record, error) {
	filter, err := decodeDocument(item.Filter)
	if err != nil {
		return query.Record{}, fmt.Errorf("filter: %w", err)
	}
	sort, err := decodeDocument(item.Sort)
	if err != nil {
		return query.Record{}, fmt.Errorf("sort: %w", err)
	}
	rec := query.Record{
		Collection: item.Collection,
		Filter:     filter,
		Sort:       sort,
		DurationMs: item.DurationMs,
	}
	if err := rec.Validate(); err != nil {
		return query.Record{}, err
	}
	return rec, nil
}

func isYAML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrInvalidSpec,
		domain.ErrConflictingDefinition,
		domain.ErrSnapshotAssembly,
		domain.ErrConnectivity,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
