package features

import (
	"math"
	"sort"
	"strings"

	"github.com/gridironhq/forecast-engine/internal/models"
)

// DiffPrefix marks home-minus-away columns in the assembled row.
const DiffPrefix = "diff_"

// GameVectors pairs one game with its two oriented team feature
// vectors.
type GameVectors struct {
	Game models.GameRecord
	Home models.FeatureVector
	Away models.FeatureVector
}

// AssembleDifferentials merges per-team vectors into one fixed-width
// row per game. The schema is the sorted union of every feature name
// seen in the batch (as diff_ columns) plus every exogenous market
// column, identical in name and order for all rows; values a game
// lacks are NaN, never dropped.
func AssembleDifferentials(inputs []GameVectors) models.DifferentialBatch {
	nameSet := make(map[string]struct{})
	marketSet := make(map[string]struct{})
	for _, in := range inputs {
		for name := range in.Home {
			nameSet[name] = struct{}{}
		}
		for name := range in.Away {
			nameSet[name] = struct{}{}
		}
		for name := range in.Game.Market {
			marketSet[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(nameSet)+len(marketSet))
	for name := range nameSet {
		names = append(names, DiffPrefix+name)
	}
	for name := range marketSet {
		names = append(names, name)
	}
	sort.Strings(names)

	batch := models.DifferentialBatch{
		Names: names,
		Rows:  make([]models.DifferentialRow, 0, len(inputs)),
	}
	for _, in := range inputs {
		row := models.DifferentialRow{
			GameID:      in.Game.GameID,
			SequenceKey: in.Game.SequenceKey,
			MarginHome:  in.Game.MarginHome,
			Total:       in.Game.Total,
			Values:      make([]float64, len(names)),
		}
		for i, col := range names {
			row.Values[i] = columnValue(col, in)
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch
}

func columnValue(col string, in GameVectors) float64 {
	if base, ok := strings.CutPrefix(col, DiffPrefix); ok {
		h := in.Home.Get(base)
		a := in.Away.Get(base)
		return h - a
	}
	if v, ok := in.Game.Market[col]; ok {
		return v
	}
	return math.NaN()
}
