package idxadvisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/kailas-cloud/idxadvisor/internal/db/mongodb"
)

func TestNew_RequiresMongoDB(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error without WithMongoDB")
	}
}

func TestNew_RejectsInvertedThresholds(t *testing.T) {
	_, err := New(WithMongoDB("mongodb://localhost:27017", "storefront"), WithThresholds(1000, 500))
	if err == nil {
		t.Fatal("expected error for high below medium")
	}
}

func TestOptions_Apply(t *testing.T) {
	cfg := &advisorConfig{}
	for _, o := range []Option{
		WithMongoDB("mongodb://db:27017", "shop"),
		WithAppName("tests"),
		WithThresholds(200, 800),
		WithInFlightThreshold(50 * time.Millisecond),
		WithOpTimeout(5 * time.Second),
		WithAnalyzeConcurrency(2),
		WithReadinessTimeout(time.Second),
		WithMetrics(),
	} {
		o.apply(cfg)
	}
	if cfg.uri != "mongodb://db:27017" || cfg.database != "shop" || cfg.appName != "tests" {
		t.Errorf("connection options not applied: %+v", cfg)
	}
	if cfg.mediumMs != 200 || cfg.highMs != 800 {
		t.Errorf("thresholds = %d/%d", cfg.mediumMs, cfg.highMs)
	}
	if cfg.concurrency != 2 || cfg.opTimeout != 5*time.Second || !cfg.registerMetrics {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestRecommend(t *testing.T) {
	filter := bson.D{
		{Key: "status", Value: "confirmed"},
		{Key: "checkInDate", Value: bson.D{{Key: "$gte", Value: "2024-01-01"}}},
	}
	sort := bson.D{{Key: "createdAt", Value: -1}}

	got := Recommend(filter, sort)
	want := []string{"status", "createdAt", "checkInDate"}
	if len(got) != len(want) {
		t.Fatalf("Recommend() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recommend()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if plan := Plan(filter, sort); plan[1].Direction != -1 {
		t.Errorf("sort key direction = %d, want -1", plan[1].Direction)
	}
}

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(`
collections:
  - collection: bookings
    indexes:
      - key_pattern: {status: 1, checkInDate: 1}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	specs := cat.Specs()
	if len(specs) != 1 || specs[0].Name() != "status_1_checkInDate_1" {
		t.Errorf("unexpected specs: %v", specs)
	}
	if DefaultCatalog().Len() == 0 {
		t.Error("default catalog is empty")
	}
}

func TestAdvisor_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("provision catalog", func(mt *mtest.T) {
		spec, err := NewIndexSpec("bookings", []IndexKey{{Field: "status", Kind: Ascending}}, IndexOptions{})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		cat, err := NewCatalog(CatalogEntry{Collection: "bookings", Specs: []IndexSpec{spec}})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}

		adv, err := wireAdvisor(mongodb.NewStoreForTest(mt.Client, mt.DB.Name()), &advisorConfig{catalog: cat})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mt.DB.Name()+".bookings", mtest.FirstBatch,
				bson.D{{Key: "v", Value: 2}, {Key: "key", Value: bson.D{{Key: "_id", Value: 1}}}, {Key: "name", Value: "_id_"}},
			),
			mtest.CreateSuccessResponse(),
		)

		outcomes := adv.ProvisionAll(context.Background())
		if len(outcomes) != 1 {
			mt.Fatalf("got %d outcomes, want 1", len(outcomes))
		}
		if outcomes[0].Status != StatusCreated {
			mt.Errorf("status = %s, err = %v", outcomes[0].Status, outcomes[0].Err)
		}
		summary, ok := adv.LastRun()
		if !ok || summary.Created != 1 {
			mt.Errorf("unexpected summary: %+v", summary)
		}
	})

	mt.Run("snapshot failure", func(mt *mtest.T) {
		adv, err := wireAdvisor(mongodb.NewStoreForTest(mt.Client, mt.DB.Name()), &advisorConfig{})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		failure := mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"})
		mt.AddMockResponses(failure, failure, failure)

		snap, err := adv.Snapshot(context.Background())
		if !errors.Is(err, ErrSnapshotAssembly) {
			mt.Fatalf("expected ErrSnapshotAssembly, got %v", err)
		}
		if !snap.SampledAt.IsZero() {
			mt.Error("expected zero snapshot on failure")
		}
	})
}
