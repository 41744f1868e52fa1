package api

import (
	"errors"
	"net/http"

	"DraftPulse/internal/domain/models"
	"DraftPulse/internal/domain/repository"
	"DraftPulse/internal/service/oddscache"
	"DraftPulse/internal/service/ratelimit"
	"DraftPulse/internal/usecase"
	xhttp "DraftPulse/pkg/http"
	xlogger "DraftPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// OddsEchoHandler exposes the draft-odds read API and a manual refresh hook.
type OddsEchoHandler struct {
	logger    *xlogger.Logger
	analytics *usecase.Analytics
	collector *usecase.Collector
	cache     *oddscache.Cache
	store     repository.OddsStore
	limiter   *ratelimit.Limiter
}

func NewOddsEchoHandler(
	logger *xlogger.Logger,
	analytics *usecase.Analytics,
	collector *usecase.Collector,
	cache *oddscache.Cache,
	store repository.OddsStore,
) *OddsEchoHandler {
	return &OddsEchoHandler{
		logger:    logger,
		analytics: analytics,
		collector: collector,
		cache:     cache,
		store:     store,
		limiter:   ratelimit.New(),
	}
}

func (h *OddsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/odds/current", h.Current)
	g.GET("/odds/history", h.History)
	g.GET("/odds/movement", h.Movement)
	g.GET("/rankings", h.Rankings)
	g.POST("/odds/refresh", h.Refresh)
	g.GET("/cache/stats", h.CacheStats)

	e.GET("/healthz", h.Health)
}

func (h *OddsEchoHandler) Current(c echo.Context) error {
	req := &models.CurrentOddsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	obs, err := h.analytics.Current(c.Request().Context(), req.Player, req.Sportsbook)
	if err != nil {
		h.logger.Error("current odds query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, obs, int64(len(obs)))
}

func (h *OddsEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	obs, err := h.analytics.History(c.Request().Context(), req.Player, req.Days)
	if err != nil {
		if errors.Is(err, usecase.ErrPlayerNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no odds recorded for %q", req.Player))
		}
		h.logger.Error("history query error", xlogger.Error(err), xlogger.String("player", req.Player))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, obs, int64(len(obs)))
}

func (h *OddsEchoHandler) Movement(c echo.Context) error {
	req := &models.MovementRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	moves, err := h.analytics.Movement(c.Request().Context(), req.Days)
	if err != nil {
		h.logger.Error("movement query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, moves, int64(len(moves)))
}

func (h *OddsEchoHandler) Rankings(c echo.Context) error {
	rankings, err := h.analytics.Rankings(c.Request().Context())
	if err != nil {
		h.logger.Error("rankings query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rankings, int64(len(rankings)))
}

// Refresh triggers a full collection run outside of the scheduler. A small
// token bucket keeps repeated POSTs from burning provider quota.
func (h *OddsEchoHandler) Refresh(c echo.Context) error {
	if !h.limiter.Allow("manual-refresh", 3, 1.0/60) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"ERR_RATE_LIMITED", "", "refresh rate limit exceeded, try again shortly", http.StatusTooManyRequests))
	}

	report, err := h.collector.Run(c.Request().Context())
	if err != nil {
		h.logger.Error("manual refresh error", xlogger.Error(err), xlogger.String("run_id", report.RunID))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *OddsEchoHandler) CacheStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.cache.Stats())
}

func (h *OddsEchoHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNHEALTHY", "", "storage unreachable", http.StatusServiceUnavailable).WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
