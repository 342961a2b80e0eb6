// Package features turns per-team historical stat records into
// leakage-safe model features: rolling momentum series, interaction
// features, and home/away differential rows. Every value computed for
// a game uses only records strictly prior to that game.
package features

import (
	"math"
	"sort"

	"github.com/gridironhq/forecast-engine/internal/models"
)

// Suffixes for the six momentum series derived from each base stat.
const (
	SuffixRollMean    = "_roll_mean"
	SuffixEMA         = "_ema"
	SuffixTrend       = "_trend"
	SuffixVolatility  = "_volatility"
	SuffixSeasonAvg   = "_season_avg"
	SuffixRecentRatio = "_recent_ratio"
)

// nearZero guards coefficient-of-variation and ratio denominators.
const nearZero = 1e-9

// RollingConfig sets the window and EMA span for momentum computation.
type RollingConfig struct {
	Window  int
	EMASpan int
}

// DefaultRollingConfig mirrors the production defaults.
func DefaultRollingConfig() RollingConfig {
	return RollingConfig{Window: 8, EMASpan: 8}
}

func (c RollingConfig) normalized() RollingConfig {
	if c.Window <= 0 {
		c.Window = 8
	}
	if c.EMASpan <= 0 {
		c.EMASpan = c.Window
	}
	return c
}

// MomentumPoint holds the six derived values for one (team, game) pair.
type MomentumPoint struct {
	RollingMean float64
	EMA         float64
	Trend       float64
	Volatility  float64
	SeasonAvg   float64
	RecentRatio float64
}

// MomentumSeries holds six parallel series aligned to the input record
// index: index i was computed from records before index i only.
type MomentumSeries struct {
	RollingMean []float64
	EMA         []float64
	Trend       []float64
	Volatility  []float64
	SeasonAvg   []float64
	RecentRatio []float64
}

// Computer derives momentum series from a team's time-ordered history.
type Computer struct {
	cfg RollingConfig
}

// NewComputer creates a momentum computer with the given config.
func NewComputer(cfg RollingConfig) *Computer {
	return &Computer{cfg: cfg.normalized()}
}

// SortHistory orders records chronologically in place. All Computer
// methods require sorted input.
func SortHistory(history []models.TeamStatRecord) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].SequenceKey < history[j].SequenceKey
	})
}

// ComputeSeries returns the six momentum series for one base stat over
// a sorted history. Index i consumes records[0:i] only; the record at
// i never contributes to its own features.
func (c *Computer) ComputeSeries(history []models.TeamStatRecord, stat string) MomentumSeries {
	n := len(history)
	s := MomentumSeries{
		RollingMean: make([]float64, n),
		EMA:         make([]float64, n),
		Trend:       make([]float64, n),
		Volatility:  make([]float64, n),
		SeasonAvg:   make([]float64, n),
		RecentRatio: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		p := c.pointFromPrefix(history[:i], stat, history[i].Season)
		s.RollingMean[i] = p.RollingMean
		s.EMA[i] = p.EMA
		s.Trend[i] = p.Trend
		s.Volatility[i] = p.Volatility
		s.SeasonAvg[i] = p.SeasonAvg
		s.RecentRatio[i] = p.RecentRatio
	}
	return s
}

// At computes the momentum point for a hypothetical game at targetKey
// in targetSeason: only records with SequenceKey < targetKey are
// consulted, so the target game itself (and anything after it) can
// never leak in.
func (c *Computer) At(history []models.TeamStatRecord, stat string, targetKey, targetSeason int) MomentumPoint {
	cut := len(history)
	for i, r := range history {
		if r.SequenceKey >= targetKey {
			cut = i
			break
		}
	}
	return c.pointFromPrefix(history[:cut], stat, targetSeason)
}

// pointFromPrefix derives the six values from the strictly-prior
// records in prefix. NaN raw values are skipped, never zero-filled.
func (c *Computer) pointFromPrefix(prefix []models.TeamStatRecord, stat string, targetSeason int) MomentumPoint {
	var all, season []float64
	for i := range prefix {
		v := prefix[i].Stat(stat)
		if math.IsNaN(v) {
			continue
		}
		all = append(all, v)
		if prefix[i].Season == targetSeason {
			season = append(season, v)
		}
	}

	window := all
	if len(window) > c.cfg.Window {
		window = window[len(window)-c.cfg.Window:]
	}

	p := MomentumPoint{
		RollingMean: mean(window),
		EMA:         ema(window, c.cfg.EMASpan),
		Trend:       olsSlope(window),
		Volatility:  coefVariation(window),
		SeasonAvg:   mean(season),
	}
	p.RecentRatio = recentRatio(p.RollingMean, p.SeasonAvg)
	return p
}

// mean of vals; NaN when empty.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// ema runs the standard recurrence over vals with the given span,
// seeded with the first value. NaN when empty.
func ema(vals []float64, span int) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	alpha := 2.0 / (float64(span) + 1.0)
	e := vals[0]
	for _, v := range vals[1:] {
		e = alpha*v + (1-alpha)*e
	}
	return e
}

// olsSlope fits y = a + b*x over x = 0..n-1 and returns b. Needs at
// least two points.
func olsSlope(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return math.NaN()
	}
	xMean := float64(n-1) / 2.0
	yMean := mean(vals)
	var cov, varX float64
	for i, v := range vals {
		dx := float64(i) - xMean
		cov += dx * (v - yMean)
		varX += dx * dx
	}
	return cov / varX
}

// coefVariation returns sample-stddev/mean. Needs at least two points;
// a zero or near-zero mean makes the ratio undefined, so NaN rather
// than ±Inf.
func coefVariation(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return math.NaN()
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	if math.Abs(m) < nearZero {
		return math.NaN()
	}
	cv := sd / m
	if math.IsInf(cv, 0) {
		return math.NaN()
	}
	return cv
}

// recentRatio is rolling_mean/season_avg with the calibration-bearing
// fallback: a zero season average reads as "no deviation from season
// form", exactly 1.0. A missing season average stays NaN.
func recentRatio(rollingMean, seasonAvg float64) float64 {
	if math.IsNaN(seasonAvg) {
		return math.NaN()
	}
	if seasonAvg == 0 {
		return 1.0
	}
	r := rollingMean / seasonAvg
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}

// VectorAt builds the full per-team feature vector for a game at
// targetKey: for every base stat, the six momentum columns plus the
// stat's rolling mean under its plain name, which is what the
// interaction catalog consumes. Base stats observed in the target game
// itself are deliberately absent.
func (c *Computer) VectorAt(history []models.TeamStatRecord, baseStats []string, targetKey, targetSeason int) models.FeatureVector {
	vec := make(models.FeatureVector, len(baseStats)*7)
	for _, stat := range baseStats {
		p := c.At(history, stat, targetKey, targetSeason)
		vec[stat] = p.RollingMean
		vec[stat+SuffixRollMean] = p.RollingMean
		vec[stat+SuffixEMA] = p.EMA
		vec[stat+SuffixTrend] = p.Trend
		vec[stat+SuffixVolatility] = p.Volatility
		vec[stat+SuffixSeasonAvg] = p.SeasonAvg
		vec[stat+SuffixRecentRatio] = p.RecentRatio
	}
	return vec
}
