package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DraftPulse/internal/domain/repository"
	"DraftPulse/internal/scheduler"
	"DraftPulse/internal/service/oddscache"
	"DraftPulse/pkg/config"
	xhttp "DraftPulse/pkg/http"
	applogger "DraftPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	sched      *scheduler.Scheduler
	cache      *oddscache.Cache
	store      repository.OddsStore
	publisher  repository.ObservationPublisher
	httpServer *xhttp.Server

	evictStop chan struct{}
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	cache *oddscache.Cache,
	store repository.OddsStore,
	publisher repository.ObservationPublisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		sched:     sched,
		cache:     cache,
		store:     store,
		publisher: publisher,
		httpServer: xhttp.NewServer(handler,
			xhttp.WithPort(cfg.Server.Port),
			xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		),
		evictStop: make(chan struct{}),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cfg.Scheduler.Enabled {
		a.sched.Start(ctx)
		a.log.Info("scheduler started")
	} else {
		a.log.Info("scheduler disabled, collection runs only via POST /api/odds/refresh")
	}

	go a.evictLoop(a.cfg.Cache.Duration)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// evictLoop periodically drops expired cache entries so the snapshot
// file does not accumulate dead payloads between fetches.
func (a *App) evictLoop(every time.Duration) {
	if every <= 0 {
		every = 5 * time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-a.evictStop:
			return
		case <-t.C:
			if n := a.cache.EvictExpired(); n > 0 {
				a.log.Debug("evicted expired cache entries", applogger.Int("count", n))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.cfg.Scheduler.Enabled {
		a.sched.Stop()
	}
	close(a.evictStop)

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Flush aggregated logs while the Kafka producer is still open.
	a.log.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if err := a.store.Close(); err != nil {
		a.log.Warn("store close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
