package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"DraftPulse/internal/domain/models"
	applogger "DraftPulse/pkg/logger"
)

type countingRunner struct {
	runs atomic.Int64
}

func (r *countingRunner) Run(context.Context) (models.RunReport, error) {
	r.runs.Add(1)
	return models.RunReport{RunID: "test"}, nil
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func at(hour int) time.Time {
	return time.Date(2026, 4, 20, hour, 30, 0, 0, time.UTC)
}

func TestTierActiveAtAlways(t *testing.T) {
	tier := Tier{Name: "baseline", Every: 4 * time.Hour}
	for hour := 0; hour < 24; hour++ {
		if !tier.ActiveAt(at(hour)) {
			t.Fatalf("baseline tier must always be active, inactive at hour %d", hour)
		}
	}
}

func TestTierActiveAtHourWindow(t *testing.T) {
	tier := Tier{Name: "peak", Every: 30 * time.Minute, HourStart: 9, HourEnd: 23}

	tests := []struct {
		hour int
		want bool
	}{
		{8, false},
		{9, true},
		{12, true},
		{22, true},
		{23, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := tier.ActiveAt(at(tt.hour)); got != tt.want {
			t.Fatalf("ActiveAt(hour=%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestTierActiveAtEventWindow(t *testing.T) {
	draft := time.Date(2026, 4, 23, 0, 0, 0, 0, time.UTC)
	tier := Tier{Name: "event", Every: 10 * time.Minute, EventDate: draft, DaysBefore: 1}

	tests := []struct {
		day  time.Time
		want bool
	}{
		{draft.AddDate(0, 0, -3), false},
		{draft.AddDate(0, 0, -1), true},
		{draft, true},
		{draft.Add(20 * time.Hour), true}, // still draft day
		{draft.AddDate(0, 0, 1), false},
	}
	for _, tt := range tests {
		if got := tier.ActiveAt(tt.day); got != tt.want {
			t.Fatalf("ActiveAt(%s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestDefaultTiers(t *testing.T) {
	draft := time.Date(2026, 4, 23, 0, 0, 0, 0, time.UTC)
	tiers := DefaultTiers(draft)

	if len(tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(tiers))
	}
	if tiers[0].Every != 4*time.Hour || tiers[1].Every != 30*time.Minute || tiers[2].Every != 10*time.Minute {
		t.Fatalf("unexpected cadences: %+v", tiers)
	}
	if tiers[2].EventDate.IsZero() || tiers[2].DaysBefore != 1 {
		t.Fatalf("expected event tier bound to the draft date: %+v", tiers[2])
	}
}

func TestSchedulerImmediateRunAndStop(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, []Tier{{Name: "slow", Every: time.Hour}}, testLogger(t))

	s.Start(context.Background())
	if got := runner.runs.Load(); got != 1 {
		t.Fatalf("expected one immediate startup run, got %d", got)
	}

	// Stop must return promptly with an hour-long ticker pending.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop did not return")
	}
}

func TestSchedulerTicksTier(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, []Tier{{Name: "fast", Every: 20 * time.Millisecond}}, testLogger(t))

	s.Start(context.Background())
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected ticker-driven runs, got %d", runner.runs.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerStartIdempotent(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, nil, testLogger(t))

	s.Start(context.Background())
	s.Start(context.Background())
	if got := runner.runs.Load(); got != 1 {
		t.Fatalf("expected a single startup run, got %d", got)
	}
	s.Stop()
}
