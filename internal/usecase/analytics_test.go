package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"DraftPulse/internal/domain/models"
	drepo "DraftPulse/internal/domain/repository"
	"DraftPulse/pkg/cache"
)

func obsAt(player, book, market, odds string, pos float64, ts time.Time) models.Observation {
	return models.Observation{
		PlayerName:    player,
		Sportsbook:    book,
		MarketType:    market,
		Odds:          odds,
		DraftPosition: &pos,
		Timestamp:     ts,
	}
}

func newAnalyticsFixture(store *memStore) *Analytics {
	return NewAnalytics(store, cache.NewMemoryCache(), drepo.NoopMetrics{}, testLogger())
}

func TestCurrentFilters(t *testing.T) {
	now := time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.latest = []models.Observation{
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-300", 1, now),
		obsAt("Caleb Williams", "FanDuel", "draft_position", "-290", 1, now),
		obsAt("Drake Maye", "DraftKings", "draft_position", "-150", 2, now),
	}
	a := newAnalyticsFixture(store)

	all, err := a.Current(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(all))
	}

	byPlayer, err := a.Current(context.Background(), "caleb williams", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(byPlayer) != 2 {
		t.Fatalf("expected case-insensitive player filter to match 2, got %d", len(byPlayer))
	}

	byBook, err := a.Current(context.Background(), "", "fanduel")
	if err != nil {
		t.Fatal(err)
	}
	if len(byBook) != 1 || byBook[0].Sportsbook != "FanDuel" {
		t.Fatalf("unexpected sportsbook filter result: %+v", byBook)
	}
}

func TestHistoryUnknownPlayer(t *testing.T) {
	a := newAnalyticsFixture(newMemStore())
	_, err := a.History(context.Background(), "Nobody", 30)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestHistoryWindow(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	if _, err := store.CreatePlayer(context.Background(), "Caleb Williams", "QB", "USC"); err != nil {
		t.Fatal(err)
	}
	store.obs = []models.Observation{
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-300", 1, now.AddDate(0, 0, -40)),
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-280", 1, now.AddDate(0, 0, -5)),
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-310", 1, now.AddDate(0, 0, -1)),
	}
	a := newAnalyticsFixture(store)

	obs, err := a.History(context.Background(), "Caleb Williams", 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations inside 30-day window, got %d", len(obs))
	}
}

func TestRankings(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.latest = []models.Observation{
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-300", 1, now),
		obsAt("Caleb Williams", "FanDuel", "draft_position", "-290", 1, now),
		obsAt("Drake Maye", "DraftKings", "draft_position", "-150", 2, now),
		obsAt("Drake Maye", "FanDuel", "draft_position", "-140", 4, now),
	}
	a := newAnalyticsFixture(store)

	rankings, err := a.Rankings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rankings) != 2 {
		t.Fatalf("expected 2 rankings, got %d", len(rankings))
	}

	first := rankings[0]
	if first.PlayerName != "Caleb Williams" || first.ConsensusPosition != 1 || first.StandardDeviation != 0 {
		t.Fatalf("unexpected first ranking: %+v", first)
	}
	if first.MarketCount != 2 {
		t.Fatalf("expected 2 markets for first ranking, got %d", first.MarketCount)
	}

	second := rankings[1]
	if second.PlayerName != "Drake Maye" || second.ConsensusPosition != 3 {
		t.Fatalf("unexpected second ranking: %+v", second)
	}
	// Sample standard deviation of {2, 4} is sqrt(2) = 1.41 after rounding.
	if second.StandardDeviation != 1.41 {
		t.Fatalf("expected stddev 1.41, got %v", second.StandardDeviation)
	}
}

func TestRankingsSkipsMissingPositions(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.latest = []models.Observation{
		{PlayerName: "Caleb Williams", Sportsbook: "DraftKings", MarketType: "first_qb", Odds: "-500", Timestamp: now},
	}
	a := newAnalyticsFixture(store)

	rankings, err := a.Rankings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rankings) != 0 {
		t.Fatalf("expected no rankings without draft positions, got %d", len(rankings))
	}
}

func TestMovement(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.obs = []models.Observation{
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-300", 1, now.AddDate(0, 0, -6)),
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-250", 1, now.AddDate(0, 0, -1)),
		obsAt("Drake Maye", "DraftKings", "draft_position", "+150", 2, now.AddDate(0, 0, -6)),
		obsAt("Drake Maye", "DraftKings", "draft_position", "+160", 2, now.AddDate(0, 0, -1)),
		// Single observation, no movement to report.
		obsAt("Joe Alt", "DraftKings", "draft_position", "+200", 5, now.AddDate(0, 0, -2)),
	}
	a := newAnalyticsFixture(store)

	moves, err := a.Movement(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(moves))
	}

	// Sorted by absolute movement: Caleb's 50-point move leads.
	if moves[0].PlayerName != "Caleb Williams" || moves[0].Movement != 50 {
		t.Fatalf("unexpected top movement: %+v", moves[0])
	}
	if moves[0].StartOdds != "-300" || moves[0].EndOdds != "-250" {
		t.Fatalf("unexpected endpoints: %+v", moves[0])
	}
	if moves[1].Movement != 10 {
		t.Fatalf("expected +10 movement for Drake Maye, got %v", moves[1].Movement)
	}
}

func TestMovementCapsAtTen(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	for i := 0; i < 15; i++ {
		name := string(rune('A'+i)) + " Player"
		store.obs = append(store.obs,
			obsAt(name, "DraftKings", "draft_position", "+100", 1, now.AddDate(0, 0, -3)),
			obsAt(name, "DraftKings", "draft_position", "+120", 1, now.AddDate(0, 0, -1)),
		)
	}
	a := newAnalyticsFixture(store)

	moves, err := a.Movement(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 10 {
		t.Fatalf("expected movement list capped at 10, got %d", len(moves))
	}
}

func TestCurrentResponseCaching(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.latest = []models.Observation{
		obsAt("Caleb Williams", "DraftKings", "draft_position", "-300", 1, now),
	}
	a := newAnalyticsFixture(store)

	if _, err := a.Current(context.Background(), "", ""); err != nil {
		t.Fatal(err)
	}

	// A store-side change is invisible until the response cache expires.
	store.latest = nil
	cached, err := a.Current(context.Background(), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 1 {
		t.Fatalf("expected cached response served, got %d observations", len(cached))
	}
}

func TestParseAmerican(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"+150", 150, false},
		{"-300", -300, false},
		{"100", 100, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmerican(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseAmerican(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
