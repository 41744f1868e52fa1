package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"DraftPulse/internal/domain/models"
	drepo "DraftPulse/internal/domain/repository"
	applogger "DraftPulse/pkg/logger"

	"github.com/google/uuid"
)

// Collector executes one pipeline run: fetch all records, resolve or create
// each player, and append observations in a single batch commit. One bad
// record is skipped and logged; it never sinks the run. Overlapping runs from
// different scheduler tiers are safe because the store is append-only and
// commits per run.
type Collector struct {
	fetcher *OddsFetcher
	store   drepo.OddsStore
	pub     drepo.ObservationPublisher // optional
	metrics drepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

func NewCollector(
	fetcher *OddsFetcher,
	store drepo.OddsStore,
	pub drepo.ObservationPublisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *Collector {
	return &Collector{
		fetcher: fetcher,
		store:   store,
		pub:     pub,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Run fetches, resolves, and persists one batch. The returned report counts
// fetched, persisted, and skipped records. Only a persistence failure at the
// batch boundary fails the run.
func (c *Collector) Run(ctx context.Context) (report models.RunReport, err error) {
	report = models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: c.now(),
	}
	defer func() {
		report.Duration = c.now().Sub(report.StartedAt).String()
	}()

	c.log.Info("odds update started", applogger.String("run_id", report.RunID))

	records := c.fetcher.FetchAll(ctx)
	report.Fetched = len(records)
	if len(records) == 0 {
		c.log.Warn("no odds records fetched", applogger.String("run_id", report.RunID))
		return report, nil
	}

	// Players repeat across bookmakers within a batch; resolve each name once.
	resolved := make(map[string]*models.Player)

	obs := make([]models.Observation, 0, len(records))
	for _, rec := range records {
		player, err := c.resolvePlayer(ctx, resolved, rec.PlayerName)
		if err != nil {
			report.Skipped++
			c.metrics.RecordRecordSkipped()
			c.log.Error("skipping odds record",
				applogger.String("run_id", report.RunID),
				applogger.String("player", rec.PlayerName),
				applogger.Error(err),
			)
			continue
		}
		obs = append(obs, models.Observation{
			PlayerID:      player.ID,
			PlayerName:    player.Name,
			Sportsbook:    rec.Sportsbook,
			MarketType:    rec.MarketType,
			Odds:          rec.Odds,
			DraftPosition: rec.DraftPosition,
			Timestamp:     rec.Timestamp,
		})
	}

	if len(obs) > 0 {
		start := c.now()
		err := c.store.StoreBatch(ctx, obs)
		c.metrics.ObserveQueryDuration("store_batch", c.now().Sub(start).Seconds())
		if err != nil {
			return report, fmt.Errorf("store odds batch: %w", err)
		}
	}
	report.Persisted = len(obs)
	c.metrics.RecordObservationCount(len(obs))

	c.publish(ctx, obs)

	c.log.Info("odds update complete",
		applogger.String("run_id", report.RunID),
		applogger.Int("fetched", report.Fetched),
		applogger.Int("persisted", report.Persisted),
		applogger.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (c *Collector) resolvePlayer(ctx context.Context, resolved map[string]*models.Player, name string) (*models.Player, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("empty player name")
	}
	key := strings.ToLower(trimmed)
	if p, ok := resolved[key]; ok {
		return p, nil
	}

	player, err := c.store.FindPlayerByName(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("find player: %w", err)
	}
	if player == nil {
		// Position and college arrive later from prospect info enrichment.
		player, err = c.store.CreatePlayer(ctx, trimmed, "Unknown", "Unknown")
		if err != nil {
			return nil, fmt.Errorf("create player: %w", err)
		}
	}
	resolved[key] = player
	return player, nil
}

// publish hands the batch to downstream consumers; errors are logged, never
// raised, the same contract as metrics.
func (c *Collector) publish(ctx context.Context, obs []models.Observation) {
	if c.pub == nil || len(obs) == 0 {
		return
	}
	if err := c.pub.PublishBatch(ctx, obs); err != nil {
		c.log.Warn("publish observation batch", applogger.Error(err))
	}
}
