package scheduler

import (
	"context"
	"sync"
	"time"

	"DraftPulse/internal/domain/models"
	applogger "DraftPulse/pkg/logger"
)

// Runner executes one pipeline run. Satisfied by usecase.Collector.
type Runner interface {
	Run(ctx context.Context) (models.RunReport, error)
}

// Tier is one declarative cadence rule. Zero-valued window fields mean
// "always": the baseline tier fires around the clock, the peak tier only
// inside an hour range, the event tier only on the calendar days around the
// draft. Tiers never serialize against each other; overlapping runs are safe
// because persistence is append-only with per-run commits.
type Tier struct {
	Name  string
	Every time.Duration

	// Hour-of-day window [HourStart, HourEnd), local time. Ignored unless
	// HourEnd > HourStart.
	HourStart int
	HourEnd   int

	// Calendar window: active from DaysBefore days ahead of EventDate
	// through the event day itself. Ignored when EventDate is zero.
	EventDate  time.Time
	DaysBefore int
}

// ActiveAt reports whether the tier may fire at now.
func (t Tier) ActiveAt(now time.Time) bool {
	if t.HourEnd > t.HourStart {
		h := now.Hour()
		if h < t.HourStart || h >= t.HourEnd {
			return false
		}
	}
	if !t.EventDate.IsZero() {
		event := truncateDay(t.EventDate)
		day := truncateDay(now.In(t.EventDate.Location()))
		diff := int(event.Sub(day).Hours() / 24)
		if diff < 0 || diff > t.DaysBefore {
			return false
		}
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultTiers is the layered cadence policy: a 4-hour baseline, a 30-minute
// peak-hours tier, and a 10-minute tier on the day before and day of the
// draft.
func DefaultTiers(eventDate time.Time) []Tier {
	return []Tier{
		{Name: "baseline", Every: 4 * time.Hour},
		{Name: "peak", Every: 30 * time.Minute, HourStart: 9, HourEnd: 23},
		{Name: "event", Every: 10 * time.Minute, EventDate: eventDate, DaysBefore: 1},
	}
}

// Scheduler drives the pipeline on independent recurring tickers, one per
// tier. Each triggered run executes to completion; the next tick of any tier
// is unaffected by a failed run.
type Scheduler struct {
	runner   Runner
	tiers    []Tier
	log      *applogger.Logger
	now      func() time.Time
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

func New(runner Runner, tiers []Tier, log *applogger.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		tiers:    tiers,
		log:      log,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start launches one polling goroutine per tier and performs an immediate
// first run so a fresh process has data before the first baseline tick.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.runOnce(ctx, "startup")

	for _, tier := range s.tiers {
		s.wg.Add(1)
		go func(t Tier) {
			defer s.wg.Done()
			s.pollTier(ctx, t)
		}(tier)
		s.log.Info("cadence tier started",
			applogger.String("tier", tier.Name),
			applogger.Duration("every", tier.Every),
		)
	}
}

// Stop shuts the tickers down and waits for in-flight runs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) pollTier(ctx context.Context, t Tier) {
	ticker := time.NewTicker(t.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !t.ActiveAt(s.now()) {
				continue
			}
			s.runOnce(ctx, t.Name)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runOnce executes the pipeline and logs the outcome. A failed run is logged
// and dropped; there is no retry beyond the next cadence tick.
func (s *Scheduler) runOnce(ctx context.Context, tier string) {
	report, err := s.runner.Run(ctx)
	if err != nil {
		s.log.Error("scheduled odds run failed",
			applogger.String("tier", tier),
			applogger.String("run_id", report.RunID),
			applogger.Error(err),
		)
		return
	}
	s.log.Info("scheduled odds run complete",
		applogger.String("tier", tier),
		applogger.String("run_id", report.RunID),
		applogger.Int("persisted", report.Persisted),
	)
}
