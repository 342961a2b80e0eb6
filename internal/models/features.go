package models

import "math"

// FeatureVector is a flat mapping of engineered feature name to value.
// One per (game, team). Values derive only from stat records strictly
// prior to the game it describes.
type FeatureVector map[string]float64

// Get returns the named feature, NaN when the vector does not carry it.
func (v FeatureVector) Get(name string) float64 {
	if x, ok := v[name]; ok {
		return x
	}
	return math.NaN()
}

// Clone returns an independent copy.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// DifferentialRow is the fixed-width model input for one game:
// home-minus-away differences plus pass-through exogenous columns,
// laid out in the owning batch's column order.
type DifferentialRow struct {
	GameID      string
	SequenceKey int
	MarginHome  NullFloat
	Total       NullFloat
	Values      []float64
}

// DifferentialBatch is a set of rows sharing one schema. Names has
// identical order for every row in the batch; Values[i] corresponds
// to Names[i].
type DifferentialBatch struct {
	Names []string
	Rows  []DifferentialRow
}

// Row returns the row for the given game id, nil when absent.
func (b *DifferentialBatch) Row(gameID string) *DifferentialRow {
	for i := range b.Rows {
		if b.Rows[i].GameID == gameID {
			return &b.Rows[i]
		}
	}
	return nil
}
