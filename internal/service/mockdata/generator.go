package mockdata

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"DraftPulse/internal/domain/models"
)

const (
	sportKey   = "americanfootball_nfl_draft"
	sportTitle = "NFL Draft"

	driftPeriod = 7 * 24 * time.Hour
	decayWindow = 3 * 24 * time.Hour

	maxPositiveOdds = 2000
	minNegativeOdds = -1000
)

// NewsEvent models a development (pro day, team visit) that transiently moves
// a player's odds, decaying linearly to zero over three days.
type NewsEvent struct {
	Timestamp time.Time
	Name      string
	Impact    map[string]int
}

type prospect struct {
	name     string
	position int
	baseOdds int
}

type book struct {
	key   string
	title string
	skew  float64
}

// Three synthetic books: one ~2% more generous than baseline, one ~2% less.
// Skew multiplies the decimal price after jitter, so the ordering
// generous > baseline > stingy holds for every generated outcome.
var books = []book{
	{key: "draftkings", title: "DraftKings", skew: 1.0},
	{key: "fanduel", title: "FanDuel", skew: 1.02},
	{key: "betmgm", title: "BetMGM", skew: 0.98},
}

// Generator produces placeholder draft odds: a fixed roster of ten ranked
// prospects with baseline lines, a weekly sinusoidal drift, news-event
// impacts, and a small random jitter. For a fixed input time the output is
// reproducible except for the jitter, which can be seeded or disabled.
type Generator struct {
	prospects []prospect
	events    []NewsEvent
	rng       *rand.Rand
	jitter    bool
}

type Option func(*Generator)

// WithSeed makes the jitter deterministic.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithoutJitter disables the random term entirely.
func WithoutJitter() Option {
	return func(g *Generator) { g.jitter = false }
}

// WithNewsEvents replaces the default event table.
func WithNewsEvents(events []NewsEvent) Option {
	return func(g *Generator) { g.events = events }
}

func New(opts ...Option) *Generator {
	g := &Generator{
		prospects: []prospect{
			{"Caleb Williams", 1, -300},
			{"Drake Maye", 2, -150},
			{"Marvin Harrison Jr.", 3, -110},
			{"Malik Nabers", 4, 150},
			{"Joe Alt", 5, 200},
			{"Brock Bowers", 6, 250},
			{"Jayden Daniels", 7, 300},
			{"Rome Odunze", 8, 350},
			{"Dallas Turner", 9, 400},
			{"Jared Verse", 10, 450},
		},
		events: defaultNewsEvents(time.Now()),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		jitter: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func defaultNewsEvents(now time.Time) []NewsEvent {
	return []NewsEvent{
		{
			Timestamp: now.Add(-5 * 24 * time.Hour),
			Name:      "Caleb Williams Pro Day",
			Impact:    map[string]int{"Caleb Williams": -50},
		},
		{
			Timestamp: now.Add(-3 * 24 * time.Hour),
			Name:      "Drake Maye Team Visit",
			Impact:    map[string]int{"Drake Maye": -30},
		},
		{
			Timestamp: now.Add(-2 * 24 * time.Hour),
			Name:      "Jayden Daniels Heisman Ceremony",
			Impact:    map[string]int{"Jayden Daniels": -100},
		},
	}
}

// Events generates one outright event per draft pick with every synthetic
// bookmaker quoting the pick's prospect at a decimal price.
func (g *Generator) Events(now time.Time) []models.OutrightEvent {
	adjusted := g.adjustedOdds(now)

	events := make([]models.OutrightEvent, 0, len(g.prospects))
	for _, p := range g.prospects {
		bookmakers := make([]models.Bookmaker, 0, len(books))
		for _, b := range books {
			price := americanToDecimal(adjusted[p.name]) * b.skew
			bookmakers = append(bookmakers, models.Bookmaker{
				Key:   b.key,
				Title: b.title,
				Markets: []models.Market{{
					Key: "outrights",
					Outcomes: []models.Outcome{{
						Name:  p.name,
						Price: price,
					}},
				}},
			})
		}
		events = append(events, models.OutrightEvent{
			ID:           eventID(p.position),
			SportKey:     sportKey,
			SportTitle:   sportTitle,
			CommenceTime: now.Add(24 * time.Hour).Unix(),
			Bookmakers:   bookmakers,
		})
	}
	return events
}

// Payload returns the event list marshaled as a raw The Odds API payload,
// ready for the normalizer or the cache.
func (g *Generator) Payload(now time.Time) json.RawMessage {
	b, _ := json.Marshal(g.Events(now))
	return b
}

// adjustedOdds applies, in order: weekly sinusoidal drift, decaying news
// impact, jitter, and the realism clamp. All terms are additive on the
// American line; skew is multiplicative on the decimal price later.
func (g *Generator) adjustedOdds(now time.Time) map[string]int {
	out := make(map[string]int, len(g.prospects))
	for _, p := range g.prospects {
		odds := p.baseOdds
		odds += timeDrift(now)
		odds += g.newsImpact(p.name, now)
		if g.jitter {
			odds += g.rng.Intn(21) - 10
		}
		out[p.name] = clamp(odds)
	}
	return out
}

// timeDrift is a sine wave over current_time mod one week, amplitude ±20.
func timeDrift(now time.Time) int {
	phase := float64(now.Unix()%int64(driftPeriod.Seconds())) / driftPeriod.Seconds()
	return int(math.Sin(2*math.Pi*phase) * 20)
}

func (g *Generator) newsImpact(player string, now time.Time) int {
	total := 0
	for _, ev := range g.events {
		impact, ok := ev.Impact[player]
		if !ok || now.Before(ev.Timestamp) {
			continue
		}
		elapsed := now.Sub(ev.Timestamp)
		decay := 1 - elapsed.Seconds()/decayWindow.Seconds()
		if decay < 0 {
			decay = 0
		}
		total += int(float64(impact) * decay)
	}
	return total
}

func clamp(odds int) int {
	if odds > 0 && odds > maxPositiveOdds {
		return maxPositiveOdds
	}
	if odds < 0 && odds < minNegativeOdds {
		return minNegativeOdds
	}
	return odds
}

func americanToDecimal(american int) float64 {
	if american > 0 {
		return 1 + float64(american)/100
	}
	return 1 + 100/math.Abs(float64(american))
}

func eventID(pick int) string {
	return fmt.Sprintf("%s_pick_%d", sportKey, pick)
}
