package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"DraftPulse/internal/domain/models"
	applogger "DraftPulse/pkg/logger"
)

// Normalizer flattens heterogeneous raw odds payloads into canonical records.
// Malformed individual records are skipped with a warning; a batch never
// aborts. Output ordering is an implementation detail.
type Normalizer struct {
	log *applogger.Logger
}

func NewNormalizer(log *applogger.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize dispatches on the source kind. An unparsable payload yields an
// empty slice, not an error.
func (n *Normalizer) Normalize(raw json.RawMessage, kind models.SourceKind, now time.Time) []models.OddsRecord {
	switch kind {
	case models.SourceTheOddsAPI:
		return n.normalizeOutrights(raw, now)
	case models.SourceDraftKings:
		return n.normalizeEventGroup(raw, now)
	default:
		n.warn("unknown source kind", applogger.String("kind", string(kind)))
		return nil
	}
}

// normalizeOutrights handles the nested event/bookmaker/market/outcome shape
// with decimal prices.
func (n *Normalizer) normalizeOutrights(raw json.RawMessage, now time.Time) []models.OddsRecord {
	var events []models.OutrightEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		n.warn("parse outright payload", applogger.Error(err))
		return nil
	}

	var records []models.OddsRecord
	for _, event := range events {
		pick := pickFromEventID(event.ID)
		for _, bm := range event.Bookmakers {
			for _, market := range bm.Markets {
				for _, outcome := range market.Outcomes {
					american, err := DecimalToAmerican(outcome.Price)
					if err != nil {
						n.warn("skip outcome",
							applogger.String("player", outcome.Name),
							applogger.String("bookmaker", bm.Title),
							applogger.Error(err),
						)
						continue
					}
					if outcome.Name == "" {
						n.warn("skip outcome with empty name",
							applogger.String("event", event.ID),
							applogger.String("bookmaker", bm.Title),
						)
						continue
					}
					records = append(records, models.OddsRecord{
						PlayerName:    outcome.Name,
						Sportsbook:    bm.Title,
						MarketType:    "draft_position",
						Odds:          american,
						DraftPosition: pick,
						Timestamp:     now,
					})
				}
			}
		}
	}
	return records
}

// normalizeEventGroup handles the flat offer/outcome shape whose labels
// encode player and line, with American price strings.
func (n *Normalizer) normalizeEventGroup(raw json.RawMessage, now time.Time) []models.OddsRecord {
	var group models.EventGroup
	if err := json.Unmarshal(raw, &group); err != nil {
		n.warn("parse event group payload", applogger.Error(err))
		return nil
	}

	var records []models.OddsRecord
	for _, event := range group.EventGroup.Events {
		for _, offer := range event.Offers {
			for _, outcome := range offer.Outcomes {
				player, line, err := ParseOutcomeLabel(outcome.Label)
				if err != nil {
					n.warn("skip outcome", applogger.String("label", outcome.Label), applogger.Error(err))
					continue
				}
				if outcome.OddsAmerican == "" {
					n.warn("skip outcome without price", applogger.String("label", outcome.Label))
					continue
				}
				records = append(records, models.OddsRecord{
					PlayerName:    player,
					Sportsbook:    "DraftKings",
					MarketType:    offer.Label,
					Odds:          outcome.OddsAmerican,
					DraftPosition: line,
					Timestamp:     now,
				})
			}
		}
	}
	return records
}

// DecimalToAmerican converts a decimal price to canonical American text.
// Rounding is math.Round (half away from zero); the d=2.0 boundary is
// classified positive, so 2.0 -> "+100" and 1.56 -> "-179".
func DecimalToAmerican(d float64) (string, error) {
	if d <= 1.0 {
		return "", fmt.Errorf("decimal price %v out of range", d)
	}
	if d >= 2.0 {
		return fmt.Sprintf("+%d", int(math.Round((d-1)*100))), nil
	}
	return strconv.Itoa(int(math.Round(-100 / (d - 1)))), nil
}

// ParseOutcomeLabel splits a compound label like "Caleb Williams - Over 5.5"
// or "Marvin Harrison Jr. - Pick 2" into player name and line value. A label
// whose trailing segment carries no parsable number yields a nil line, not an
// error; only a label without the separator is malformed.
func ParseOutcomeLabel(label string) (string, *float64, error) {
	idx := strings.LastIndex(label, " - ")
	if idx < 0 {
		return "", nil, fmt.Errorf("label %q has no outcome segment", label)
	}
	player := strings.TrimSpace(label[:idx])
	if player == "" {
		return "", nil, fmt.Errorf("label %q has no player name", label)
	}

	fields := strings.Fields(label[idx+3:])
	if len(fields) == 0 {
		return player, nil, nil
	}
	if v, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
		return player, &v, nil
	}
	return player, nil, nil
}

// pickFromEventID extracts the draft pick from event ids shaped like
// "americanfootball_nfl_draft_pick_3".
func pickFromEventID(id string) *float64 {
	idx := strings.LastIndex(id, "_")
	if idx < 0 {
		return nil
	}
	if v, err := strconv.ParseFloat(id[idx+1:], 64); err == nil {
		return &v
	}
	return nil
}

func (n *Normalizer) warn(msg string, fields ...applogger.Field) {
	if n.log != nil {
		n.log.Warn(msg, fields...)
	}
}
