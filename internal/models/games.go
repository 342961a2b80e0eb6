package models

import "fmt"

// SeqKey encodes season and week into a single orderable key
// (season*100 + week). All temporal logic in the pipeline compares
// these keys; their order must match real-world chronology.
func SeqKey(season, week int) int {
	return season*100 + week
}

// GameRecord is one scheduled or completed contest between two teams.
// Outcome fields are NaN-backed and stay invalid until the game has
// been played.
type GameRecord struct {
	GameID      string  `json:"game_id"`
	Season      int     `json:"season"`
	Week        int     `json:"week"`
	SequenceKey int     `json:"sequence_key"`
	HomeTeamID  string  `json:"home_team_id"`
	AwayTeamID  string  `json:"away_team_id"`

	// Observed outcome, unknown (NaN) for future games.
	MarginHome NullFloat `json:"margin_home"`
	Total      NullFloat `json:"total"`

	// Exogenous game-level numerics (closing market lines etc.)
	// copied through to the model input unchanged.
	Market map[string]float64 `json:"market,omitempty"`
}

// OutcomeKnown reports whether the game has a recorded final score.
func (g *GameRecord) OutcomeKnown() bool {
	return g.MarginHome.Valid() && g.Total.Valid()
}

func (g *GameRecord) String() string {
	return fmt.Sprintf("%s@%s s%dw%d", g.AwayTeamID, g.HomeTeamID, g.Season, g.Week)
}

// TeamStatRecord is one team's observed box-score statistics for one
// game: a flat mapping of stat name to value, NaN for anything the
// source did not report. Records are immutable once loaded.
type TeamStatRecord struct {
	TeamID      string
	GameID      string
	Season      int
	SequenceKey int
	IsHome      bool
	Stats       map[string]float64
}

// Stat returns the named statistic, NaN when absent.
func (r *TeamStatRecord) Stat(name string) float64 {
	if v, ok := r.Stats[name]; ok {
		return v
	}
	return nan
}
