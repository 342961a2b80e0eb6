package features

import (
	"math"

	"github.com/gridironhq/forecast-engine/internal/models"
)

// consistencyEpsilon and formEpsilon are calibration-bearing constants
// carried over from the original model; do not tune them.
const (
	consistencyEpsilon = 0.1
	formEpsilon        = 0.1
)

// Interaction is one entry of the fixed cross-feature catalog. Fn must
// be deterministic and side-effect-free; a NaN input propagates NaN
// unless the formula declares an epsilon guard.
type Interaction struct {
	Name string
	Fn   func(v models.FeatureVector) float64
}

// Catalog is the fixed set of named cross-features. Formulas read
// prior-form values (rolling means under the plain stat name), so the
// outputs inherit the same leakage safety as their inputs. A stat the
// loader never saw yields NaN for the affected formula only.
var Catalog = []Interaction{
	{
		Name: "pressure_advantage",
		Fn: func(v models.FeatureVector) float64 {
			return (v.Get("sacks_made") + v.Get("hurries_made")) -
				(v.Get("sacks_allowed") + v.Get("hurries_allowed"))
		},
	},
	{
		Name: "offensive_effectiveness",
		Fn: func(v models.FeatureVector) float64 {
			return v.Get("yards_per_play") * v.Get("plays")
		},
	},
	{
		Name: "turnover_impact",
		Fn: func(v models.FeatureVector) float64 {
			return (v.Get("turnovers_take") - v.Get("turnovers_give")) * v.Get("yards_per_play")
		},
	},
	{
		Name: "scoring_efficiency",
		Fn: func(v models.FeatureVector) float64 {
			// Points per unit of offense; epsilon keeps a shut-out
			// offense finite.
			return v.Get("points_scored") / (v.Get("yards_gained")/100.0 + formEpsilon)
		},
	},
	{
		Name: "third_down_leverage",
		Fn: func(v models.FeatureVector) float64 {
			return v.Get("third_down_pct") * v.Get("plays")
		},
	},
}

// consistencyStats names the base stats that get a 1/(volatility+eps)
// consistency score and an ema/(season_avg+eps) form ratio.
var consistencyStats = []string{
	"points_scored",
	"yards_gained",
	"yards_per_play",
	"turnovers_give",
}

// BuildInteractions appends the catalog outputs plus per-stat
// consistency and form-ratio columns to vec, in place.
func BuildInteractions(vec models.FeatureVector) {
	for _, it := range Catalog {
		vec[it.Name] = it.Fn(vec)
	}
	for _, stat := range consistencyStats {
		vec["consistency_"+stat] = consistency(vec.Get(stat + SuffixVolatility))
		vec["form_ratio_"+stat] = formRatio(vec.Get(stat+SuffixEMA), vec.Get(stat+SuffixSeasonAvg))
	}
}

// consistency is 1/(volatility+0.1). The epsilon guards the
// zero-volatility case; a NaN volatility still propagates NaN.
func consistency(volatility float64) float64 {
	c := 1.0 / (volatility + consistencyEpsilon)
	if math.IsInf(c, 0) {
		return math.NaN()
	}
	return c
}

// formRatio is ema/(season_avg+0.1), NaN-propagating, Inf-guarded.
func formRatio(ema, seasonAvg float64) float64 {
	r := ema / (seasonAvg + formEpsilon)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}
