package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"DraftPulse/internal/domain/models"
	drepo "DraftPulse/internal/domain/repository"
	"DraftPulse/internal/service/mockdata"
	"DraftPulse/internal/service/oddscache"
	"DraftPulse/internal/usecase"
	applogger "DraftPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// stubStore serves a canned latest set and one known player.
type stubStore struct {
	latest    []models.Observation
	healthErr error
}

func (s *stubStore) Init(context.Context) error { return nil }

func (s *stubStore) FindPlayerByName(_ context.Context, name string) (*models.Player, error) {
	if strings.EqualFold(name, "Caleb Williams") {
		return &models.Player{ID: 1, Name: "Caleb Williams"}, nil
	}
	return nil, nil
}

func (s *stubStore) CreatePlayer(_ context.Context, name, position, college string) (*models.Player, error) {
	return &models.Player{ID: 2, Name: name, Position: position, College: college}, nil
}

func (s *stubStore) StoreBatch(context.Context, []models.Observation) error { return nil }

func (s *stubStore) QueryHistory(context.Context, string, time.Time) ([]models.Observation, error) {
	return s.latest, nil
}

func (s *stubStore) QueryLatestPerPlayerAndMarket(context.Context) ([]models.Observation, error) {
	return s.latest, nil
}

func (s *stubStore) QuerySince(context.Context, time.Time) ([]models.Observation, error) {
	return s.latest, nil
}

func (s *stubStore) Health(context.Context) error { return s.healthErr }
func (s *stubStore) Close() error                 { return nil }

type stubSource struct{}

func (stubSource) FetchDraftOdds(context.Context) (json.RawMessage, models.Quota, bool, error) {
	return nil, models.Quota{}, false, nil
}
func (stubSource) Kind() models.SourceKind { return models.SourceTheOddsAPI }

func newTestHandler(t *testing.T, store *stubStore) *OddsEchoHandler {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatal(err)
	}
	c := oddscache.New(oddscache.WithFile(filepath.Join(t.TempDir(), "odds_cache.json")))
	fetcher := usecase.NewOddsFetcher(stubSource{}, c, usecase.NewNormalizer(log),
		mockdata.New(mockdata.WithSeed(1)), drepo.NoopMetrics{}, log, usecase.WithMockMode(true))
	collector := usecase.NewCollector(fetcher, store, nil, drepo.NoopMetrics{}, log)
	analytics := usecase.NewAnalytics(store, nil, drepo.NoopMetrics{}, log)
	return NewOddsEchoHandler(log, analytics, collector, c, store)
}

func doRequest(h *OddsEchoHandler, method, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCurrentEndpoint(t *testing.T) {
	pos := 1.0
	store := &stubStore{latest: []models.Observation{{
		PlayerName:    "Caleb Williams",
		Sportsbook:    "DraftKings",
		MarketType:    "draft_position",
		Odds:          "-300",
		DraftPosition: &pos,
		Timestamp:     time.Now(),
	}}}
	h := newTestHandler(t, store)

	rec := doRequest(h, http.MethodGet, "/api/odds/current")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			Rows  []models.Observation `json:"rows"`
			Total int64                `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Data.Total != 1 || len(body.Data.Rows) != 1 {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestHistoryValidation(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	// Missing required player parameter.
	rec := doRequest(h, http.MethodGet, "/api/odds/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected envelope status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ERR_REQUIRED") {
		t.Fatalf("expected validation error, got %s", rec.Body.String())
	}
}

func TestHistoryUnknownPlayer(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	rec := doRequest(h, http.MethodGet, "/api/odds/history?player=Nobody")
	if !strings.Contains(rec.Body.String(), "ERR_NOT_FOUND") {
		t.Fatalf("expected not-found error, got %s", rec.Body.String())
	}
}

func TestRefreshRateLimited(t *testing.T) {
	h := newTestHandler(t, &stubStore{})

	for i := 0; i < 3; i++ {
		rec := doRequest(h, http.MethodPost, "/api/odds/refresh")
		if strings.Contains(rec.Body.String(), "ERR_RATE_LIMITED") {
			t.Fatalf("call %d unexpectedly rate limited", i+1)
		}
	}
	rec := doRequest(h, http.MethodPost, "/api/odds/refresh")
	if !strings.Contains(rec.Body.String(), "ERR_RATE_LIMITED") {
		t.Fatalf("expected fourth refresh rate limited, got %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, &stubStore{})
	rec := doRequest(h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubStore{})
	rec := doRequest(h, http.MethodGet, "/api/cache/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "remaining_requests") {
		t.Fatalf("expected cache stats payload, got %s", rec.Body.String())
	}
}
