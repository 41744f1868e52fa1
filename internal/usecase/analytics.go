package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"DraftPulse/internal/domain/models"
	drepo "DraftPulse/internal/domain/repository"
	"DraftPulse/pkg/cache"
	applogger "DraftPulse/pkg/logger"
)

// ErrPlayerNotFound marks a history query for an unknown player. The HTTP
// layer turns it into a 404 rather than a server error.
var ErrPlayerNotFound = errors.New("player not found")

const analyticsCacheTTL = 30 * time.Second

// Analytics serves the derived read models: latest odds, per-player history,
// consensus rankings, and movement. Responses are cached briefly; cache
// failures fall through to the store.
type Analytics struct {
	store   drepo.OddsStore
	cache   cache.Service // optional
	metrics drepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

func NewAnalytics(store drepo.OddsStore, c cache.Service, metrics drepo.Metrics, log *applogger.Logger) *Analytics {
	return &Analytics{
		store:   store,
		cache:   c,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Current returns the latest observation per player and market, optionally
// filtered by player name and sportsbook.
func (a *Analytics) Current(ctx context.Context, player, sportsbook string) ([]models.Observation, error) {
	key := fmt.Sprintf("current:%s:%s", strings.ToLower(player), strings.ToLower(sportsbook))
	if cached, ok := a.fromCache(ctx, key, &[]models.Observation{}); ok {
		return *cached.(*[]models.Observation), nil
	}

	obs, err := a.queryLatest(ctx)
	if err != nil {
		return nil, err
	}

	filtered := obs[:0:0]
	for _, o := range obs {
		if player != "" && !strings.EqualFold(o.PlayerName, player) {
			continue
		}
		if sportsbook != "" && !strings.EqualFold(o.Sportsbook, sportsbook) {
			continue
		}
		filtered = append(filtered, o)
	}

	a.toCache(ctx, key, filtered)
	return filtered, nil
}

// History returns a player's observations over the trailing window, newest
// first.
func (a *Analytics) History(ctx context.Context, playerName string, days int) ([]models.Observation, error) {
	p, err := a.store.FindPlayerByName(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("find player: %w", err)
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	since := a.now().AddDate(0, 0, -days)
	start := a.now()
	obs, err := a.store.QueryHistory(ctx, p.Name, since)
	a.metrics.ObserveQueryDuration("history", a.now().Sub(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return obs, nil
}

// Rankings computes the consensus draft board: per-player mean, standard
// deviation, and market count of the draft position across the latest
// observation of every market, sorted by the mean.
func (a *Analytics) Rankings(ctx context.Context) ([]models.PlayerRanking, error) {
	if cached, ok := a.fromCache(ctx, "rankings", &[]models.PlayerRanking{}); ok {
		return *cached.(*[]models.PlayerRanking), nil
	}

	obs, err := a.queryLatest(ctx)
	if err != nil {
		return nil, err
	}

	positions := make(map[string][]float64)
	for _, o := range obs {
		if o.DraftPosition == nil {
			continue
		}
		positions[o.PlayerName] = append(positions[o.PlayerName], *o.DraftPosition)
	}

	rankings := make([]models.PlayerRanking, 0, len(positions))
	for name, vals := range positions {
		mean, stddev := meanStddev(vals)
		rankings = append(rankings, models.PlayerRanking{
			PlayerName:        name,
			ConsensusPosition: round2(mean),
			StandardDeviation: round2(stddev),
			MarketCount:       len(vals),
		})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].ConsensusPosition != rankings[j].ConsensusPosition {
			return rankings[i].ConsensusPosition < rankings[j].ConsensusPosition
		}
		return rankings[i].PlayerName < rankings[j].PlayerName
	})

	a.toCache(ctx, "rankings", rankings)
	return rankings, nil
}

// Movement returns the ten largest first-to-last line moves per player and
// sportsbook inside the trailing window.
func (a *Analytics) Movement(ctx context.Context, days int) ([]models.OddsMovement, error) {
	key := fmt.Sprintf("movement:%d", days)
	if cached, ok := a.fromCache(ctx, key, &[]models.OddsMovement{}); ok {
		return *cached.(*[]models.OddsMovement), nil
	}

	since := a.now().AddDate(0, 0, -days)
	start := a.now()
	obs, err := a.store.QuerySince(ctx, since)
	a.metrics.ObserveQueryDuration("movement", a.now().Sub(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}

	type series struct {
		first, last models.Observation
	}
	byKey := make(map[string]*series)
	for _, o := range obs {
		k := o.PlayerName + "\x00" + o.Sportsbook
		s, ok := byKey[k]
		if !ok {
			byKey[k] = &series{first: o, last: o}
			continue
		}
		if o.Timestamp.Before(s.first.Timestamp) {
			s.first = o
		}
		if !o.Timestamp.Before(s.last.Timestamp) {
			s.last = o
		}
	}

	movements := make([]models.OddsMovement, 0, len(byKey))
	for _, s := range byKey {
		if s.first.Timestamp.Equal(s.last.Timestamp) {
			continue // single observation, no movement to report
		}
		startOdds, err1 := ParseAmerican(s.first.Odds)
		endOdds, err2 := ParseAmerican(s.last.Odds)
		if err1 != nil || err2 != nil {
			continue
		}
		movements = append(movements, models.OddsMovement{
			PlayerName: s.first.PlayerName,
			Sportsbook: s.first.Sportsbook,
			StartOdds:  s.first.Odds,
			EndOdds:    s.last.Odds,
			Movement:   endOdds - startOdds,
			From:       s.first.Timestamp,
			To:         s.last.Timestamp,
		})
	}
	sort.Slice(movements, func(i, j int) bool {
		return math.Abs(movements[i].Movement) > math.Abs(movements[j].Movement)
	})
	if len(movements) > 10 {
		movements = movements[:10]
	}

	a.toCache(ctx, key, movements)
	return movements, nil
}

func (a *Analytics) queryLatest(ctx context.Context) ([]models.Observation, error) {
	start := a.now()
	obs, err := a.store.QueryLatestPerPlayerAndMarket(ctx)
	a.metrics.ObserveQueryDuration("latest", a.now().Sub(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	return obs, nil
}

func (a *Analytics) fromCache(ctx context.Context, key string, dest interface{}) (interface{}, bool) {
	if a.cache == nil {
		return nil, false
	}
	b, err := a.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return nil, false
	}
	return dest, true
}

func (a *Analytics) toCache(ctx context.Context, key string, value interface{}) {
	if a.cache == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, b, analyticsCacheTTL); err != nil && a.log != nil {
		a.log.Debug("response cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

// ParseAmerican converts canonical American odds text back to a number.
func ParseAmerican(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
}

func meanStddev(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	if len(vals) < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(ss / float64(len(vals)-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
