package slowquery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterAdvisorMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type countingRecommender struct {
	calls int
	keys  []query.SuggestedKey
}

func (c *countingRecommender) Plan(_, _ bson.D) []query.SuggestedKey {
	c.calls++
	return c.keys
}

type mockSource struct {
	records  []query.Record
	err      error
	gotSince time.Time
	gotMin   int64
	gotLimit int64
}

func (m *mockSource) SlowQueries(_ context.Context, since time.Time, minMillis, limit int64) ([]query.Record, error) {
	m.gotSince, m.gotMin, m.gotLimit = since, minMillis, limit
	return m.records, m.err
}

func bookingsRecord(ms int64) query.Record {
	return query.Record{
		Collection: "bookings",
		Filter: bson.D{
			{Key: "status", Value: "confirmed"},
			{Key: "checkInDate", Value: bson.D{{Key: "$gte", Value: "2024-01-01"}}},
		},
		Sort:       bson.D{{Key: "createdAt", Value: -1}},
		DurationMs: ms,
	}
}

// --- Classify ---

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		ms        int64
		want      bool
		severity  query.Severity
		planCalls int
	}{
		{ms: 0, want: false},
		{ms: 500, want: false},
		{ms: 501, want: true, severity: query.SeverityMedium},
		{ms: 1000, want: true, severity: query.SeverityMedium},
		{ms: 1001, want: true, severity: query.SeverityHigh, planCalls: 1},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%dms", tc.ms), func(t *testing.T) {
			rec := &countingRecommender{keys: []query.SuggestedKey{{Field: "status", Direction: 1, Phase: query.PhaseEquality}}}
			svc := New(zap.NewNop()).WithRecommender(rec)

			got := svc.Classify([]query.Record{bookingsRecord(tc.ms)})
			assert.Equal(t, tc.planCalls, rec.calls)
			if !tc.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tc.severity, got[0].Severity)
			assert.Equal(t, tc.ms, got[0].DurationMs)
		})
	}
}

func TestClassify_HighUsesESR(t *testing.T) {
	got := New(zap.NewNop()).Classify([]query.Record{bookingsRecord(1001)})
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, query.SeverityHigh, a.Severity)
	assert.Equal(t, []string{"status", "createdAt", "checkInDate"}, a.SuggestedKeyOrder)
	require.Len(t, a.SuggestedKeys, 3)
	assert.Equal(t, -1, a.SuggestedKeys[1].Direction)
	assert.NotEmpty(t, a.Rationale)
}

func TestClassify_MediumIsGeneric(t *testing.T) {
	got := New(zap.NewNop()).Classify([]query.Record{bookingsRecord(1000)})
	require.Len(t, got, 1)
	assert.Equal(t, query.GenericRationale, got[0].Rationale)
	assert.Empty(t, got[0].SuggestedKeyOrder)
}

func TestClassify_OrderPreservedNoDedup(t *testing.T) {
	records := []query.Record{
		{Collection: "trips", DurationMs: 2000},
		{Collection: "users", DurationMs: 100},
		{Collection: "bookings", DurationMs: 700},
		{Collection: "trips", DurationMs: 2000},
	}
	got := New(zap.NewNop()).Classify(records)
	require.Len(t, got, 3)
	assert.Equal(t, "trips", got[0].Collection)
	assert.Equal(t, "bookings", got[1].Collection)
	assert.Equal(t, "trips", got[2].Collection)
}

func TestClassify_Metrics(t *testing.T) {
	c := metrics.SlowQueryAdvisoriesTotal.WithLabelValues("reviews", "high")
	before := testutil.ToFloat64(c)

	New(zap.NewNop()).Classify([]query.Record{{Collection: "reviews", DurationMs: 5000}})
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestWithThresholds(t *testing.T) {
	svc := New(zap.NewNop()).WithThresholds(Thresholds{MediumMs: 100, HighMs: 200})
	got := svc.Classify([]query.Record{{Collection: "a", DurationMs: 150}, {Collection: "b", DurationMs: 250}})
	require.Len(t, got, 2)
	assert.Equal(t, query.SeverityMedium, got[0].Severity)
	assert.Equal(t, query.SeverityHigh, got[1].Severity)

	svc = New(zap.NewNop()).WithThresholds(Thresholds{MediumMs: 300, HighMs: 200})
	assert.Equal(t, Thresholds{MediumMs: DefaultMediumMs, HighMs: DefaultHighMs}, svc.Thresholds())
}

// --- ClassifyProfile ---

func TestClassifyProfile(t *testing.T) {
	src := &mockSource{records: []query.Record{bookingsRecord(1500), bookingsRecord(600)}}
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := New(zap.NewNop()).WithSource(src).ClassifyProfile(context.Background(), since, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, query.SeverityHigh, got[0].Severity)
	assert.Equal(t, query.SeverityMedium, got[1].Severity)
	assert.Equal(t, since, src.gotSince)
	assert.Equal(t, DefaultMediumMs+1, src.gotMin)
	assert.Equal(t, DefaultProfileLimit, src.gotLimit)
}

func TestClassifyProfile_SourceError(t *testing.T) {
	src := &mockSource{err: fmt.Errorf("%w: timeout", domain.ErrConnectivity)}
	_, err := New(zap.NewNop()).WithSource(src).ClassifyProfile(context.Background(), time.Time{}, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConnectivity))
	assert.Equal(t, int64(10), src.gotLimit)
}

func TestClassifyProfile_NoSource(t *testing.T) {
	_, err := New(zap.NewNop()).ClassifyProfile(context.Background(), time.Time{}, 0)
	assert.Error(t, err)
}
