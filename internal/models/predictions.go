package models

import "time"

// Prediction is the terminal output for one game in one inference run.
type Prediction struct {
	GameID             string    `json:"game_id"`
	SequenceKey        int       `json:"sequence_key"`
	PredictedMargin    float64   `json:"predicted_margin_home"`
	PredictedTotal     float64   `json:"predicted_total"`
	HomeWinProbability float64   `json:"predicted_home_win_probability"`
	ModelCount         int       `json:"model_count"`
	RunID              string    `json:"run_id"`
	CreatedAt          time.Time `json:"created_at"`
}

// ExpectedWinner names the side the margin favors.
func (p *Prediction) ExpectedWinner() string {
	if p.PredictedMargin >= 0 {
		return "home"
	}
	return "away"
}
