package ensemble

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/models"
)

var predictionsMade = promauto.NewCounter(prometheus.CounterOpts{
	Name: "forecast_predictions_made_total",
	Help: "Total number of game predictions produced",
})

// DefaultCalibrationScale maps a predicted margin to a home win
// probability through a logistic transform. Points per logistic unit;
// a configuration input, never fit inline.
const DefaultCalibrationScale = 13.5

// Calibration holds the margin-to-probability transform parameters.
type Calibration struct {
	Scale float64
}

func (c Calibration) normalized() Calibration {
	if c.Scale <= 0 {
		c.Scale = DefaultCalibrationScale
	}
	return c
}

// Predictor aggregates per-artifact predictions into one Prediction
// per game. Aggregation is the standard median, robust to any single
// badly calibrated ensemble member.
type Predictor struct {
	artifacts []*ModelArtifact
	calib     Calibration
	logger    *zap.SugaredLogger
}

// NewPredictor wraps the surviving artifacts of a training run.
func NewPredictor(artifacts []*ModelArtifact, calib Calibration, logger *zap.Logger) *Predictor {
	return &Predictor{
		artifacts: artifacts,
		calib:     calib.normalized(),
		logger:    logger.Sugar(),
	}
}

// ArtifactCount returns the number of usable ensemble members.
func (p *Predictor) ArtifactCount() int { return len(p.artifacts) }

// PredictRow scores one differential row against every artifact that
// covers its sequence position. Each artifact sees the row reordered
// into its own recorded feature layout; columns the batch lacks come
// through as NaN and take the artifact's training-time imputation.
// Returns ErrNoAvailableModel when no artifact can serve the game.
func (p *Predictor) PredictRow(batchNames []string, row models.DifferentialRow, runID string) (*models.Prediction, error) {
	byName := make(map[string]float64, len(batchNames))
	for i, n := range batchNames {
		byName[n] = row.Values[i]
	}

	var margins, totals []float64
	for _, a := range p.artifacts {
		if !a.Covers(row.SequenceKey) {
			continue
		}
		x := make([]float64, len(a.FeatureNames))
		for j, n := range a.FeatureNames {
			if v, ok := byName[n]; ok {
				x[j] = v
			} else {
				x[j] = math.NaN()
			}
		}
		margins = append(margins, a.Margin.Predict(x))
		totals = append(totals, a.Total.Predict(x))
	}

	if len(margins) == 0 {
		return nil, fmt.Errorf("game %s at key %d: %w", row.GameID, row.SequenceKey, ErrNoAvailableModel)
	}

	margin := median(margins)
	pred := &models.Prediction{
		GameID:             row.GameID,
		SequenceKey:        row.SequenceKey,
		PredictedMargin:    margin,
		PredictedTotal:     median(totals),
		HomeWinProbability: p.winProbability(margin),
		ModelCount:         len(margins),
		RunID:              runID,
		CreatedAt:          time.Now().UTC(),
	}
	predictionsMade.Inc()
	return pred, nil
}

// PredictBatch scores every row of a batch. Games with no covering
// artifact are logged and skipped; the per-game hard failure only
// matters to callers asking for that single game.
func (p *Predictor) PredictBatch(batch models.DifferentialBatch, runID string) []models.Prediction {
	preds := make([]models.Prediction, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		pred, err := p.PredictRow(batch.Names, row, runID)
		if err != nil {
			p.logger.Warnw("prediction unavailable", "game", row.GameID, "error", err)
			continue
		}
		preds = append(preds, *pred)
	}
	return preds
}

// winProbability is the fixed monotonic logistic calibration from
// predicted margin to home win probability.
func (p *Predictor) winProbability(margin float64) float64 {
	return 1.0 / (1.0 + math.Exp(-margin/p.calib.Scale))
}

// median with standard semantics: middle element for odd counts, mean
// of the two middle elements for even counts.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2.0
}
