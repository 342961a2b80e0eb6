package pipeline

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/features"
	"github.com/gridironhq/forecast-engine/internal/models"
)

func statRecord(team string, week int, points float64) models.TeamStatRecord {
	return models.TeamStatRecord{
		TeamID:      team,
		GameID:      team + "-w" + string(rune('0'+week)),
		Season:      2024,
		SequenceKey: models.SeqKey(2024, week),
		Stats:       map[string]float64{"points_scored": points},
	}
}

func TestBuildBatchDifferential(t *testing.T) {
	stats := map[string][]models.TeamStatRecord{
		"DEN": {statRecord("DEN", 1, 10), statRecord("DEN", 2, 20), statRecord("DEN", 3, 30)},
		"KC":  {statRecord("KC", 1, 30), statRecord("KC", 2, 30), statRecord("KC", 3, 30)},
	}
	games := []models.GameRecord{{
		GameID:      "g4",
		Season:      2024,
		Week:        4,
		SequenceKey: models.SeqKey(2024, 4),
		HomeTeamID:  "DEN",
		AwayTeamID:  "KC",
		MarginHome:  models.Null(),
		Total:       models.Null(),
	}}

	b := NewBuilder(features.DefaultRollingConfig(), nil, zap.NewNop())
	batch := b.BuildBatch(games, stats)

	if len(batch.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(batch.Rows))
	}
	idx := make(map[string]int, len(batch.Names))
	for i, n := range batch.Names {
		idx[n] = i
	}

	// DEN rolling mean 20, KC 30 -> differential -10.
	col, ok := idx["diff_points_scored_roll_mean"]
	if !ok {
		t.Fatalf("schema missing diff_points_scored_roll_mean: %v", batch.Names)
	}
	if got := batch.Rows[0].Values[col]; got != -10 {
		t.Errorf("diff_points_scored_roll_mean = %v, want -10", got)
	}

	// Interaction columns ride along even when their inputs are NaN.
	if _, ok := idx["diff_pressure_advantage"]; !ok {
		t.Errorf("schema missing diff_pressure_advantage")
	}
}

func TestBuildBatchNoLeakageFromFutureOutlier(t *testing.T) {
	// DEN's week-5 box score is an absurd outlier. Rows for week 4 and
	// earlier must be identical whether or not that record exists.
	base := map[string][]models.TeamStatRecord{
		"DEN": {statRecord("DEN", 1, 10), statRecord("DEN", 2, 20), statRecord("DEN", 3, 30)},
		"KC":  {statRecord("KC", 1, 20), statRecord("KC", 2, 20), statRecord("KC", 3, 20)},
	}
	withOutlier := map[string][]models.TeamStatRecord{
		"DEN": append(append([]models.TeamStatRecord{}, base["DEN"]...), statRecord("DEN", 5, 10000)),
		"KC":  base["KC"],
	}

	games := []models.GameRecord{{
		GameID: "g4", Season: 2024, Week: 4,
		SequenceKey: models.SeqKey(2024, 4),
		HomeTeamID:  "DEN", AwayTeamID: "KC",
		MarginHome: models.Null(), Total: models.Null(),
	}}

	b := NewBuilder(features.DefaultRollingConfig(), nil, zap.NewNop())
	clean := b.BuildBatch(games, base)
	tainted := b.BuildBatch(games, withOutlier)

	for i, name := range clean.Names {
		a := clean.Rows[0].Values[i]
		z := tainted.Rows[0].Values[i]
		if a != z && !(math.IsNaN(a) && math.IsNaN(z)) {
			t.Errorf("column %q changed when a future record was added: %v vs %v", name, a, z)
		}
	}
}

func TestBuildBatchMissingTeamHistory(t *testing.T) {
	games := []models.GameRecord{{
		GameID: "g1", Season: 2024, Week: 1,
		SequenceKey: models.SeqKey(2024, 1),
		HomeTeamID:  "DEN", AwayTeamID: "EXP",
		MarginHome: models.Null(), Total: models.Null(),
	}}
	b := NewBuilder(features.DefaultRollingConfig(), []string{"points_scored"}, zap.NewNop())
	batch := b.BuildBatch(games, map[string][]models.TeamStatRecord{})

	if len(batch.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (all-NaN row, not dropped)", len(batch.Rows))
	}
	for i, v := range batch.Rows[0].Values {
		if !math.IsNaN(v) {
			t.Errorf("column %q = %v, want NaN for a history-less game", batch.Names[i], v)
		}
	}
}
