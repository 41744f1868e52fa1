package models

// Raw source payload shapes. Two vendors, two structures: The Odds API nests
// event -> bookmaker -> market -> outcome with decimal prices; DraftKings is a
// flat offer/outcome list whose labels encode player and line ("Caleb
// Williams - Over 5.5") with American price strings.

// SourceKind identifies which raw shape a payload carries.
type SourceKind string

const (
	SourceTheOddsAPI SourceKind = "theoddsapi"
	SourceDraftKings SourceKind = "draftkings"
)

// OutrightEvent is one The Odds API event (shape a).
type OutrightEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime int64       `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome carries a decimal price (2.50 means +150).
type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// EventGroup is the DraftKings event-group envelope (shape b).
type EventGroup struct {
	EventGroup struct {
		EventGroupID int64        `json:"eventGroupId"`
		Name         string       `json:"name"`
		Events       []FlatEvent  `json:"events"`
	} `json:"eventGroup"`
}

type FlatEvent struct {
	EventID int64       `json:"eventId"`
	Name    string      `json:"name"`
	Offers  []FlatOffer `json:"offers"`
}

type FlatOffer struct {
	Label    string        `json:"label"`
	Outcomes []FlatOutcome `json:"outcomes"`
}

// FlatOutcome prices are already American-format strings ("+150", "-180").
type FlatOutcome struct {
	Label        string `json:"label"`
	OddsAmerican string `json:"oddsAmerican"`
}
