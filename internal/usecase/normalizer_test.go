package usecase

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		name    string
		decimal float64
		want    string
		wantErr bool
	}{
		{"even money boundary", 2.0, "+100", false},
		{"clear favorite", 1.25, "-400", false},
		{"mid underdog", 2.5, "+150", false},
		{"long shot", 5.5, "+450", false},
		{"short favorite", 1.56, "-179", false},
		{"rounding underdog", 3.333, "+233", false},
		{"barely above even", 1.91, "-110", false},
		{"exactly one", 1.0, "", true},
		{"below one", 0.5, "", true},
		{"zero", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecimalToAmerican(tt.decimal)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tt.decimal)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("DecimalToAmerican(%v) = %q, want %q", tt.decimal, got, tt.want)
			}
		})
	}
}

func TestParseOutcomeLabel(t *testing.T) {
	tests := []struct {
		name       string
		label      string
		wantPlayer string
		wantLine   *float64
		wantErr    bool
	}{
		{"over under", "Caleb Williams - Over 5.5", "Caleb Williams", f(5.5), false},
		{"pick number", "Marvin Harrison Jr. - Pick 2", "Marvin Harrison Jr.", f(2), false},
		{"no trailing number", "Drake Maye - First QB Drafted", "Drake Maye", nil, false},
		{"hyphenated name keeps last separator", "Smith-Njigba - Under 12.5", "Smith-Njigba", f(12.5), false},
		{"no separator", "Caleb Williams Over 5.5", "", nil, true},
		{"empty player", " - Over 5.5", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player, line, err := ParseOutcomeLabel(tt.label)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.label)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if player != tt.wantPlayer {
				t.Fatalf("player = %q, want %q", player, tt.wantPlayer)
			}
			if (line == nil) != (tt.wantLine == nil) {
				t.Fatalf("line = %v, want %v", line, tt.wantLine)
			}
			if line != nil && *line != *tt.wantLine {
				t.Fatalf("line = %v, want %v", *line, *tt.wantLine)
			}
		})
	}
}

func TestNormalizeOutrights(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`[
		{
			"id": "americanfootball_nfl_draft_pick_1",
			"sport_key": "americanfootball_nfl_draft",
			"bookmakers": [
				{
					"key": "draftkings",
					"title": "DraftKings",
					"markets": [
						{
							"key": "outrights",
							"outcomes": [
								{"name": "Caleb Williams", "price": 1.25},
								{"name": "Drake Maye", "price": 5.5},
								{"name": "Bad Price", "price": 0.5}
							]
						}
					]
				}
			]
		}
	]`)

	n := NewNormalizer(nil)
	records := n.Normalize(payload, "theoddsapi", now)

	if len(records) != 2 {
		t.Fatalf("expected 2 records (bad price skipped), got %d", len(records))
	}

	first := records[0]
	if first.PlayerName != "Caleb Williams" || first.Odds != "-400" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Sportsbook != "DraftKings" || first.MarketType != "draft_position" {
		t.Fatalf("unexpected record labels: %+v", first)
	}
	if first.DraftPosition == nil || *first.DraftPosition != 1 {
		t.Fatalf("expected pick 1 from event id, got %v", first.DraftPosition)
	}
	if !first.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp stamped with now")
	}

	if records[1].Odds != "+450" {
		t.Fatalf("expected +450 for Drake Maye, got %q", records[1].Odds)
	}
}

func TestNormalizeEventGroup(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`{
		"eventGroup": {
			"events": [
				{
					"name": "NFL Draft Specials",
					"offers": [
						{
							"label": "Draft Position Over/Under",
							"outcomes": [
								{"label": "Caleb Williams - Over 5.5", "oddsAmerican": "-110"},
								{"label": "NoSeparatorLabel", "oddsAmerican": "+150"},
								{"label": "Drake Maye - Under 3.5", "oddsAmerican": ""}
							]
						}
					]
				}
			]
		}
	}`)

	n := NewNormalizer(nil)
	records := n.Normalize(payload, "draftkings", now)

	if len(records) != 1 {
		t.Fatalf("expected 1 record (malformed skipped), got %d", len(records))
	}
	r := records[0]
	if r.PlayerName != "Caleb Williams" || r.Odds != "-110" || r.Sportsbook != "DraftKings" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.MarketType != "Draft Position Over/Under" {
		t.Fatalf("unexpected market type %q", r.MarketType)
	}
	if r.DraftPosition == nil || *r.DraftPosition != 5.5 {
		t.Fatalf("expected line 5.5, got %v", r.DraftPosition)
	}
}

func TestNormalizeGarbagePayload(t *testing.T) {
	n := NewNormalizer(nil)
	if got := n.Normalize(json.RawMessage(`{not json`), "theoddsapi", time.Now()); got != nil {
		t.Fatalf("expected nil for unparsable payload, got %v", got)
	}
	if got := n.Normalize(json.RawMessage(`[]`), "unknown-kind", time.Now()); got != nil {
		t.Fatalf("expected nil for unknown kind, got %v", got)
	}
}

func f(v float64) *float64 { return &v }
