package usecase

import (
	"context"
	"time"

	"DraftPulse/internal/domain/models"
	drepo "DraftPulse/internal/domain/repository"
	"DraftPulse/internal/service/mockdata"
	"DraftPulse/internal/service/oddscache"
	applogger "DraftPulse/pkg/logger"
)

// OddsFetcher orchestrates one source behind the rate-limit gate and cache.
// FetchAll never fails: fresh cache, then the network, then stale cache, then
// synthetic data, in that order, so the pipeline always has some output.
type OddsFetcher struct {
	source      drepo.OddsSource
	cache       *oddscache.Cache
	norm        *Normalizer
	mock        *mockdata.Generator
	metrics     drepo.Metrics
	log         *applogger.Logger
	minInterval time.Duration
	useMock     bool
	now         func() time.Time
}

type FetcherOption func(*OddsFetcher)

// WithMockMode routes every fetch to the synthetic generator, the designated
// development mode.
func WithMockMode(enabled bool) FetcherOption {
	return func(f *OddsFetcher) { f.useMock = enabled }
}

// WithMinInterval sets the minimum spacing between external calls.
func WithMinInterval(d time.Duration) FetcherOption {
	return func(f *OddsFetcher) {
		if d > 0 {
			f.minInterval = d
		}
	}
}

// WithFetcherClock overrides the time source.
func WithFetcherClock(now func() time.Time) FetcherOption {
	return func(f *OddsFetcher) {
		if now != nil {
			f.now = now
		}
	}
}

func NewOddsFetcher(
	source drepo.OddsSource,
	cache *oddscache.Cache,
	norm *Normalizer,
	mock *mockdata.Generator,
	metrics drepo.Metrics,
	log *applogger.Logger,
	opts ...FetcherOption,
) *OddsFetcher {
	f := &OddsFetcher{
		source:      source,
		cache:       cache,
		norm:        norm,
		mock:        mock,
		metrics:     metrics,
		log:         log,
		minInterval: time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll returns normalized records for every configured source. The result
// may be empty but the call never returns an error.
func (f *OddsFetcher) FetchAll(ctx context.Context) []models.OddsRecord {
	start := f.now()
	defer func() {
		f.metrics.ObserveFetchDuration(f.now().Sub(start).Seconds())
	}()

	now := f.now()
	if f.useMock {
		f.metrics.RecordFetchSuccess()
		return f.norm.Normalize(f.mock.Payload(now), models.SourceTheOddsAPI, now)
	}

	key := string(f.source.Kind())

	if payload, ok := f.cache.Get(key); ok {
		f.log.Debug("using cached odds", applogger.String("source", key))
		return f.norm.Normalize(payload, f.source.Kind(), now)
	}

	if !f.cache.AllowedNow(f.minInterval) {
		f.metrics.RecordFetchFailure("rate_limit")
		f.log.Warn("rate limit denied external call", applogger.String("source", key))
		return f.fallback(key, now)
	}

	f.metrics.RecordFetchAttempt()
	payload, quota, quotaOK, err := f.source.FetchDraftOdds(ctx)
	if quotaOK {
		f.cache.UpdateQuota(quota.Remaining, quota.Used)
	}
	if err != nil {
		f.metrics.RecordFetchFailure("network")
		f.log.Error("odds fetch failed", applogger.String("source", key), applogger.Error(err))
		return f.fallback(key, now)
	}

	f.cache.Put(key, payload)
	f.metrics.RecordFetchSuccess()
	records := f.norm.Normalize(payload, f.source.Kind(), now)
	f.log.Info("odds fetched",
		applogger.String("source", key),
		applogger.Int("records", len(records)),
	)
	return records
}

// fallback prefers stale reality over fabricated freshness: an expired cache
// entry first, synthetic data only when no entry exists at all.
func (f *OddsFetcher) fallback(key string, now time.Time) []models.OddsRecord {
	if payload, ok := f.cache.GetStale(key); ok {
		f.log.Warn("using stale cached odds", applogger.String("source", key))
		return f.norm.Normalize(payload, f.source.Kind(), now)
	}
	f.log.Warn("no cache entry, using synthetic odds", applogger.String("source", key))
	return f.norm.Normalize(f.mock.Payload(now), models.SourceTheOddsAPI, now)
}
