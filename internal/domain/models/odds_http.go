package models

// Requests for the odds HTTP endpoints. Defined in domain for consistency and reuse.

type CurrentOddsRequest struct {
	Player     string `query:"player" json:"player"`
	Sportsbook string `query:"sportsbook" json:"sportsbook"`
}

type HistoryRequest struct {
	Player string `query:"player" json:"player" validate:"required"`
	Days   int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}

type MovementRequest struct {
	Days int `query:"days" json:"days" default:"7" validate:"gte=1,lte=30"`
}
