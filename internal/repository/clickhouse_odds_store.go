package repository

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"DraftPulse/internal/domain/models"
	domrepo "DraftPulse/internal/domain/repository"
	applogger "DraftPulse/pkg/logger"
)

// ClickHouseOddsStore implements OddsStore on ClickHouse. Observations are an
// append-only MergeTree time series committed once per pipeline run; players
// live in a ReplacingMergeTree keyed by the lowercased name with a
// deterministic FNV-64 id, so concurrent lazy creation from overlapping
// scheduler tiers converges instead of conflicting.
type ClickHouseOddsStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

var _ domrepo.OddsStore = (*ClickHouseOddsStore)(nil)

func NewClickHouseOddsStore(db *sql.DB, database string) *ClickHouseOddsStore {
	return &ClickHouseOddsStore{db: db, database: database}
}

// SetLogger injects a structured logger.
func (s *ClickHouseOddsStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseOddsStore) players() string { return s.database + ".players" }
func (s *ClickHouseOddsStore) odds() string    { return s.database + ".draft_odds" }

// PlayerID derives the stable identifier from the case-folded name.
func PlayerID(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return h.Sum64()
}

func (s *ClickHouseOddsStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UInt64,
			name String,
			name_lower String,
			position String,
			college String
		) ENGINE = ReplacingMergeTree ORDER BY name_lower`, s.players()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			player_id UInt64,
			player_name String,
			sportsbook String,
			market_type String,
			odds String,
			draft_position Nullable(Float64),
			ts DateTime
		) ENGINE = MergeTree ORDER BY (player_id, market_type, ts)`, s.odds()),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init odds schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseOddsStore) FindPlayerByName(ctx context.Context, name string) (*models.Player, error) {
	q := fmt.Sprintf(`
        SELECT id, name, position, college
        FROM %s FINAL
        WHERE name_lower = lower(?)
        LIMIT 1
    `, s.players())

	var p models.Player
	err := s.db.QueryRowContext(ctx, q, strings.TrimSpace(name)).Scan(&p.ID, &p.Name, &p.Position, &p.College)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logErr("find player", err, applogger.String("name", name))
		return nil, fmt.Errorf("find player: %w", err)
	}
	return &p, nil
}

func (s *ClickHouseOddsStore) CreatePlayer(ctx context.Context, name, position, college string) (*models.Player, error) {
	trimmed := strings.TrimSpace(name)
	p := &models.Player{
		ID:       PlayerID(trimmed),
		Name:     trimmed,
		Position: position,
		College:  college,
	}

	q := fmt.Sprintf("INSERT INTO %s (id, name, name_lower, position, college) VALUES (?, ?, ?, ?, ?)", s.players())
	if _, err := s.db.ExecContext(ctx, q, p.ID, p.Name, strings.ToLower(p.Name), p.Position, p.College); err != nil {
		s.logErr("create player", err, applogger.String("name", trimmed))
		return nil, fmt.Errorf("create player: %w", err)
	}
	return p, nil
}

// StoreBatch appends all observations inside one transaction so a run commits
// exactly once.
func (s *ClickHouseOddsStore) StoreBatch(ctx context.Context, obs []models.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	q := fmt.Sprintf("INSERT INTO %s (player_id, player_name, sportsbook, market_type, odds, draft_position, ts) VALUES (?, ?, ?, ?, ?, ?, ?)", s.odds())
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx,
			o.PlayerID,
			o.PlayerName,
			o.Sportsbook,
			o.MarketType,
			o.Odds,
			o.DraftPosition,
			o.Timestamp,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	if s.l != nil {
		s.l.Debug("observation batch stored", applogger.Int("rows", len(obs)))
	}
	return nil
}

func (s *ClickHouseOddsStore) QueryHistory(ctx context.Context, playerName string, since time.Time) ([]models.Observation, error) {
	q := fmt.Sprintf(`
        SELECT player_id, player_name, sportsbook, market_type, odds, draft_position, ts
        FROM %s
        WHERE player_id = ? AND ts >= ?
        ORDER BY ts DESC
    `, s.odds())

	rows, err := s.db.QueryContext(ctx, q, PlayerID(playerName), since)
	if err != nil {
		s.logErr("query history", err, applogger.String("player", playerName))
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

// QueryLatestPerPlayerAndMarket resolves the newest row per (player, market)
// with argMax, the ClickHouse way of a greatest-n-per-group query.
func (s *ClickHouseOddsStore) QueryLatestPerPlayerAndMarket(ctx context.Context) ([]models.Observation, error) {
	q := fmt.Sprintf(`
        SELECT
            player_id,
            any(player_name) AS player_name,
            argMax(sportsbook, ts) AS sportsbook,
            market_type,
            argMax(odds, ts) AS odds,
            argMax(draft_position, ts) AS draft_position,
            max(ts) AS ts
        FROM %s
        GROUP BY player_id, market_type
        ORDER BY draft_position ASC NULLS LAST, player_name ASC
    `, s.odds())

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logErr("query latest", err)
		return nil, fmt.Errorf("query latest: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

func (s *ClickHouseOddsStore) QuerySince(ctx context.Context, since time.Time) ([]models.Observation, error) {
	q := fmt.Sprintf(`
        SELECT player_id, player_name, sportsbook, market_type, odds, draft_position, ts
        FROM %s
        WHERE ts >= ?
        ORDER BY ts ASC
    `, s.odds())

	rows, err := s.db.QueryContext(ctx, q, since)
	if err != nil {
		s.logErr("query window", err)
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

func (s *ClickHouseOddsStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseOddsStore) Close() error {
	return nil // connection pool is managed by pkg/clickhouse
}

func scanObservations(rows *sql.Rows) ([]models.Observation, error) {
	out := make([]models.Observation, 0, 64)
	for rows.Next() {
		var o models.Observation
		var pos sql.NullFloat64
		if err := rows.Scan(&o.PlayerID, &o.PlayerName, &o.Sportsbook, &o.MarketType, &o.Odds, &pos, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if pos.Valid {
			v := pos.Float64
			o.DraftPosition = &v
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *ClickHouseOddsStore) logErr(msg string, err error, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Error("clickhouse "+msg+" error", append(fields, applogger.Error(err))...)
	}
}
