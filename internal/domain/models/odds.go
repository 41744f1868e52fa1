package models

import "time"

// OddsRecord is one normalized odds observation, produced by the normalizer
// and consumed by the store. Odds keep their canonical American text form
// ("+150", "-180") so the exact betting line survives storage untouched.
type OddsRecord struct {
	PlayerName    string
	Sportsbook    string
	MarketType    string
	Odds          string
	DraftPosition *float64 // over/under lines allow fractional values (5.5)
	Timestamp     time.Time
}

// Player is a draft prospect, keyed by case-insensitive unique name.
type Player struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	College  string `json:"college"`
}

// Observation is one persisted odds row: the append-only time series behind
// the analytics endpoints.
type Observation struct {
	PlayerID      uint64    `json:"player_id"`
	PlayerName    string    `json:"player_name"`
	Sportsbook    string    `json:"sportsbook"`
	MarketType    string    `json:"market_type"`
	Odds          string    `json:"odds"`
	DraftPosition *float64  `json:"draft_position,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Quota mirrors the provider-reported request budget from response headers.
type Quota struct {
	Remaining int
	Used      int
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Fetched   int       `json:"fetched"`
	Persisted int       `json:"persisted"`
	Skipped   int       `json:"skipped"`
}

// PlayerRanking is one consensus draft-board row.
type PlayerRanking struct {
	PlayerName        string  `json:"player_name"`
	ConsensusPosition float64 `json:"consensus_position"`
	StandardDeviation float64 `json:"standard_deviation"`
	MarketCount       int     `json:"market_count"`
}

// OddsMovement captures the first-to-last line change for one player and book
// inside a query window.
type OddsMovement struct {
	PlayerName string    `json:"player_name"`
	Sportsbook string    `json:"sportsbook"`
	StartOdds  string    `json:"start_odds"`
	EndOdds    string    `json:"end_odds"`
	Movement   float64   `json:"movement"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
}

// CacheStats is the cache/quota introspection surface.
type CacheStats struct {
	CachedKeys        []string   `json:"cached_keys"`
	RemainingRequests int        `json:"remaining_requests"`
	UsedRequests      int        `json:"used_requests"`
	LastAPICall       *time.Time `json:"last_api_call,omitempty"`
	CacheFile         string     `json:"cache_file"`
}
