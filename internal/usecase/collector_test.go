package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	drepo "DraftPulse/internal/domain/repository"
	"DraftPulse/internal/service/mockdata"
	"DraftPulse/internal/service/oddscache"
)

func newCollectorFixture(t *testing.T, store *memStore, pub drepo.ObservationPublisher) *Collector {
	t.Helper()
	log := testLogger()
	source := &fakeSource{err: errors.New("provider down")}
	c := oddscache.New(oddscache.WithFile(filepath.Join(t.TempDir(), "odds_cache.json")))
	fetcher := NewOddsFetcher(source, c, NewNormalizer(log), mockdata.New(mockdata.WithSeed(3)),
		drepo.NoopMetrics{}, log, WithMockMode(true))
	return NewCollector(fetcher, store, pub, drepo.NoopMetrics{}, log)
}

func TestRunPersistsBatch(t *testing.T) {
	store := newMemStore()
	col := newCollectorFixture(t, store, nil)

	report, err := col.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.RunID == "" {
		t.Fatalf("expected run id assigned")
	}
	if report.Fetched != 30 || report.Persisted != 30 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if store.batchCalls != 1 {
		t.Fatalf("expected one batch commit, got %d", store.batchCalls)
	}
	if len(store.players) != 10 {
		t.Fatalf("expected 10 players created, got %d", len(store.players))
	}
	if len(store.obs) != 30 {
		t.Fatalf("expected 30 observations stored, got %d", len(store.obs))
	}

	// Repeated names resolve to the same player id across bookmakers.
	ids := map[string]uint64{}
	for _, o := range store.obs {
		if prev, ok := ids[o.PlayerName]; ok && prev != o.PlayerID {
			t.Fatalf("player %s mapped to two ids", o.PlayerName)
		}
		ids[o.PlayerName] = o.PlayerID
	}
}

func TestRunReusesExistingPlayers(t *testing.T) {
	store := newMemStore()
	col := newCollectorFixture(t, store, nil)

	if _, err := col.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := store.players["caleb williams"]
	if first == nil {
		t.Fatalf("expected player created on first run")
	}

	if _, err := col.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.players) != 10 {
		t.Fatalf("expected no duplicate players, got %d", len(store.players))
	}
	if store.players["caleb williams"].ID != first.ID {
		t.Fatalf("expected stable player id across runs")
	}
}

func TestRunSkipsUnresolvableRecords(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("lookup down")
	col := newCollectorFixture(t, store, nil)

	report, err := col.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Skipped != 30 || report.Persisted != 0 {
		t.Fatalf("expected every record skipped, got %+v", report)
	}
	if store.batchCalls != 0 {
		t.Fatalf("expected no batch commit for an empty batch")
	}
}

func TestRunStoreFailure(t *testing.T) {
	store := newMemStore()
	store.storeErr = errors.New("insert failed")
	col := newCollectorFixture(t, store, nil)

	_, err := col.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error when batch persistence fails")
	}
}

func TestRunPublishesBatch(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	col := newCollectorFixture(t, store, pub)

	if _, err := col.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(pub.batches) != 1 || len(pub.batches[0]) != 30 {
		t.Fatalf("expected one published batch of 30, got %d", len(pub.batches))
	}
}

func TestRunPublisherFailureDoesNotFailRun(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	col := newCollectorFixture(t, store, pub)

	report, err := col.Run(context.Background())
	if err != nil {
		t.Fatalf("publish failure must not fail the run: %v", err)
	}
	if report.Persisted != 30 {
		t.Fatalf("expected batch persisted despite publish failure, got %+v", report)
	}
}

func TestReportDuration(t *testing.T) {
	store := newMemStore()
	col := newCollectorFixture(t, store, nil)

	report, err := col.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, perr := time.ParseDuration(report.Duration); perr != nil {
		t.Fatalf("expected parsable duration, got %q", report.Duration)
	}
}
