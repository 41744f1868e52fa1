package usecase

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strings"
	"time"

	"DraftPulse/internal/domain/models"
	applogger "DraftPulse/pkg/logger"
)

func testLogger() *applogger.Logger {
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return l
}

// fakeSource scripts one provider response per call.
type fakeSource struct {
	payload json.RawMessage
	quota   models.Quota
	quotaOK bool
	err     error
	calls   int
}

func (s *fakeSource) FetchDraftOdds(context.Context) (json.RawMessage, models.Quota, bool, error) {
	s.calls++
	return s.payload, s.quota, s.quotaOK, s.err
}

func (s *fakeSource) Kind() models.SourceKind { return models.SourceTheOddsAPI }

// memStore is an in-memory OddsStore used across the usecase tests.
type memStore struct {
	players    map[string]*models.Player
	obs        []models.Observation
	latest     []models.Observation
	storeErr   error
	findErr    error
	createErr  error
	batchCalls int
}

func newMemStore() *memStore {
	return &memStore{players: make(map[string]*models.Player)}
}

func (s *memStore) Init(context.Context) error { return nil }

func (s *memStore) FindPlayerByName(_ context.Context, name string) (*models.Player, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.players[strings.ToLower(name)], nil
}

func (s *memStore) CreatePlayer(_ context.Context, name, position, college string) (*models.Player, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(name)))
	p := &models.Player{ID: h.Sum64(), Name: name, Position: position, College: college}
	s.players[strings.ToLower(name)] = p
	return p, nil
}

func (s *memStore) StoreBatch(_ context.Context, obs []models.Observation) error {
	s.batchCalls++
	if s.storeErr != nil {
		return s.storeErr
	}
	s.obs = append(s.obs, obs...)
	return nil
}

func (s *memStore) QueryHistory(_ context.Context, playerName string, since time.Time) ([]models.Observation, error) {
	var out []models.Observation
	for _, o := range s.obs {
		if strings.EqualFold(o.PlayerName, playerName) && !o.Timestamp.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) QueryLatestPerPlayerAndMarket(context.Context) ([]models.Observation, error) {
	return s.latest, nil
}

func (s *memStore) QuerySince(_ context.Context, since time.Time) ([]models.Observation, error) {
	var out []models.Observation
	for _, o := range s.obs {
		if !o.Timestamp.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) Health(context.Context) error { return nil }
func (s *memStore) Close() error                 { return nil }

// fakePublisher records published batches.
type fakePublisher struct {
	batches [][]models.Observation
	err     error
}

func (p *fakePublisher) PublishBatch(_ context.Context, obs []models.Observation) error {
	p.batches = append(p.batches, obs)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }
