package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal   *prometheus.CounterVec
	cacheOpsTotal  *prometheus.CounterVec
	entriesCleared prometheus.Counter
	recordsSkipped prometheus.Counter
	cacheEntries   prometheus.Gauge
	lastBatchSize  prometheus.Gauge
	fetchDuration  prometheus.Histogram
	queryDuration  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "draftpulse_odds_fetches_total",
				Help: "Odds fetch attempts by outcome",
			},
			[]string{"outcome"},
		),
		cacheOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "draftpulse_cache_lookups_total",
				Help: "Odds cache lookups by result",
			},
			[]string{"result"},
		),
		entriesCleared: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "draftpulse_cache_entries_cleared_total",
				Help: "Cache entries removed by TTL eviction",
			},
		),
		recordsSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "draftpulse_records_skipped_total",
				Help: "Odds records skipped during a pipeline run",
			},
		),
		cacheEntries: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "draftpulse_cache_entries",
				Help: "Current number of odds cache entries",
			},
		),
		lastBatchSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "draftpulse_observations_last_batch",
				Help: "Observations persisted by the most recent run",
			},
		),
		fetchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "draftpulse_fetch_duration_seconds",
				Help:    "Duration of odds fetch cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		queryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "draftpulse_store_query_duration_seconds",
				Help:    "Duration of persistence queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// RecordFetchAttempt records one external fetch attempt.
func (r *Recorder) RecordFetchAttempt() {
	r.fetchesTotal.WithLabelValues("attempt").Inc()
}

// RecordFetchSuccess records a successful fetch cycle.
func (r *Recorder) RecordFetchSuccess() {
	r.fetchesTotal.WithLabelValues("success").Inc()
}

// RecordFetchFailure records a failed fetch cycle by failure kind.
func (r *Recorder) RecordFetchFailure(kind string) {
	r.fetchesTotal.WithLabelValues("failure_" + kind).Inc()
}

// RecordCacheHit records a fresh cache hit.
func (r *Recorder) RecordCacheHit() {
	r.cacheOpsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a cache miss.
func (r *Recorder) RecordCacheMiss() {
	r.cacheOpsTotal.WithLabelValues("miss").Inc()
}

// RecordCacheEntriesCleared counts TTL evictions.
func (r *Recorder) RecordCacheEntriesCleared(n int) {
	r.entriesCleared.Add(float64(n))
}

// RecordCacheSize tracks the current entry count.
func (r *Recorder) RecordCacheSize(n int) {
	r.cacheEntries.Set(float64(n))
}

// RecordRecordSkipped counts per-record skips inside a run.
func (r *Recorder) RecordRecordSkipped() {
	r.recordsSkipped.Inc()
}

// RecordObservationCount tracks the last persisted batch size.
func (r *Recorder) RecordObservationCount(n int) {
	r.lastBatchSize.Set(float64(n))
}

// ObserveFetchDuration records fetch cycle latency in seconds.
func (r *Recorder) ObserveFetchDuration(seconds float64) {
	r.fetchDuration.Observe(seconds)
}

// ObserveQueryDuration records persistence latency in seconds.
func (r *Recorder) ObserveQueryDuration(op string, seconds float64) {
	r.queryDuration.WithLabelValues(op).Observe(seconds)
}
