package repository

import (
	"context"
	"encoding/json"
	"time"

	"DraftPulse/internal/domain/models"
)

// OddsSource is an external sports-book odds provider.
type OddsSource interface {
	// FetchDraftOdds returns the raw payload plus the provider-reported quota.
	// Quota is valid whenever ok is true, even if err is non-nil (a failed
	// response can still carry quota headers).
	FetchDraftOdds(ctx context.Context) (payload json.RawMessage, quota models.Quota, ok bool, err error)
	Kind() models.SourceKind
}

// OddsStore is the persistence collaborator: lazy player creation plus an
// append-only odds time series, committed once per pipeline run.
type OddsStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	FindPlayerByName(ctx context.Context, name string) (*models.Player, error)
	CreatePlayer(ctx context.Context, name, position, college string) (*models.Player, error)
	// StoreBatch inserts all observations in one transaction.
	StoreBatch(ctx context.Context, obs []models.Observation) error
	QueryHistory(ctx context.Context, playerName string, since time.Time) ([]models.Observation, error)
	QueryLatestPerPlayerAndMarket(ctx context.Context) ([]models.Observation, error)
	QuerySince(ctx context.Context, since time.Time) ([]models.Observation, error)
	Health(ctx context.Context) error
	Close() error
}

// ObservationPublisher fans persisted batches out to downstream consumers.
// Publication is fire-and-forget from the pipeline's point of view.
type ObservationPublisher interface {
	PublishBatch(ctx context.Context, obs []models.Observation) error
	Close() error
}

// Metrics is the injected observability recorder. Implementations must never
// block or fail the pipeline.
type Metrics interface {
	RecordFetchAttempt()
	RecordFetchSuccess()
	RecordFetchFailure(kind string)
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheEntriesCleared(n int)
	RecordCacheSize(n int)
	RecordRecordSkipped()
	RecordObservationCount(n int)
	ObserveFetchDuration(seconds float64)
	ObserveQueryDuration(op string, seconds float64)
}

// NoopMetrics discards every observation. Handy in tests.
type NoopMetrics struct{}

func (NoopMetrics) RecordFetchAttempt() {}
func (NoopMetrics) RecordFetchSuccess() {}
func (NoopMetrics) RecordFetchFailure(string) {}
func (NoopMetrics) RecordCacheHit() {}
func (NoopMetrics) RecordCacheMiss() {}
func (NoopMetrics) RecordCacheEntriesCleared(int) {}
func (NoopMetrics) RecordCacheSize(int) {}
func (NoopMetrics) RecordRecordSkipped() {}
func (NoopMetrics) RecordObservationCount(int) {}
func (NoopMetrics) ObserveFetchDuration(float64) {}
func (NoopMetrics) ObserveQueryDuration(string, float64) {}
