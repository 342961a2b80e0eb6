package features

import (
	"math"
	"reflect"
	"testing"

	"github.com/gridironhq/forecast-engine/internal/models"
)

func gameVectors(id string, week int, home, away models.FeatureVector, market map[string]float64) GameVectors {
	return GameVectors{
		Game: models.GameRecord{
			GameID:      id,
			Season:      2024,
			Week:        week,
			SequenceKey: models.SeqKey(2024, week),
			HomeTeamID:  "DEN",
			AwayTeamID:  "KC",
			MarginHome:  models.Null(),
			Total:       models.Null(),
			Market:      market,
		},
		Home: home,
		Away: away,
	}
}

func TestAssembleDifferentialsValues(t *testing.T) {
	batch := AssembleDifferentials([]GameVectors{
		gameVectors("g1", 1,
			models.FeatureVector{"points_scored": 24, "plays": 65},
			models.FeatureVector{"points_scored": 20, "plays": 60},
			map[string]float64{"spread_close": -3.5},
		),
	})

	wantNames := []string{"diff_plays", "diff_points_scored", "spread_close"}
	if !reflect.DeepEqual(batch.Names, wantNames) {
		t.Fatalf("schema = %v, want %v", batch.Names, wantNames)
	}
	wantValues := []float64{5, 4, -3.5}
	if !reflect.DeepEqual(batch.Rows[0].Values, wantValues) {
		t.Errorf("values = %v, want %v", batch.Rows[0].Values, wantValues)
	}
}

func TestAssembleDifferentialsSchemaStability(t *testing.T) {
	// Two games with disjoint available columns must still share one
	// schema; gaps are NaN, never dropped.
	batch := AssembleDifferentials([]GameVectors{
		gameVectors("g1", 1,
			models.FeatureVector{"points_scored": 24},
			models.FeatureVector{"points_scored": 20},
			map[string]float64{"spread_close": -3.0},
		),
		gameVectors("g2", 2,
			models.FeatureVector{"yards_gained": 350},
			models.FeatureVector{"yards_gained": 300},
			nil,
		),
	})

	if len(batch.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(batch.Rows))
	}
	for _, row := range batch.Rows {
		if len(row.Values) != len(batch.Names) {
			t.Fatalf("row %s width %d != schema width %d", row.GameID, len(row.Values), len(batch.Names))
		}
	}

	idx := make(map[string]int, len(batch.Names))
	for i, n := range batch.Names {
		idx[n] = i
	}
	if v := batch.Rows[0].Values[idx["diff_yards_gained"]]; !math.IsNaN(v) {
		t.Errorf("g1 diff_yards_gained = %v, want NaN fill", v)
	}
	if v := batch.Rows[1].Values[idx["spread_close"]]; !math.IsNaN(v) {
		t.Errorf("g2 spread_close = %v, want NaN fill", v)
	}
	if v := batch.Rows[1].Values[idx["diff_yards_gained"]]; v != 50 {
		t.Errorf("g2 diff_yards_gained = %v, want 50", v)
	}
}

func TestAssembleDifferentialsNaNSide(t *testing.T) {
	batch := AssembleDifferentials([]GameVectors{
		gameVectors("g1", 1,
			models.FeatureVector{"points_scored": 24},
			models.FeatureVector{"points_scored": math.NaN()},
			nil,
		),
	})
	if v := batch.Rows[0].Values[0]; !math.IsNaN(v) {
		t.Errorf("diff with NaN side = %v, want NaN", v)
	}
}
