package ensemble

import (
	"fmt"
	"math"
)

// Hyperparameters controls ridge regression fitting. Zero values fall
// back to defaults, so variant profiles only override what they care
// about.
type Hyperparameters struct {
	Lambda       float64 // L2 penalty
	LearningRate float64
	Epochs       int
}

// HyperparametersFromMap reads the loose variant profile mapping.
// Unknown keys are ignored so profiles can carry annotations.
func HyperparametersFromMap(m map[string]float64) Hyperparameters {
	hp := Hyperparameters{}
	if v, ok := m["lambda"]; ok {
		hp.Lambda = v
	}
	if v, ok := m["learning_rate"]; ok {
		hp.LearningRate = v
	}
	if v, ok := m["epochs"]; ok {
		hp.Epochs = int(v)
	}
	return hp.normalized()
}

func (hp Hyperparameters) normalized() Hyperparameters {
	if hp.Lambda < 0 {
		hp.Lambda = 0
	}
	if hp.LearningRate <= 0 {
		hp.LearningRate = 0.05
	}
	if hp.Epochs <= 0 {
		hp.Epochs = 800
	}
	return hp
}

// Regressor is a ridge-regularized linear model fit by gradient
// descent on standardized inputs. It records per-column imputation
// means and scales at fit time and applies the identical treatment at
// predict time, so NaN and missing columns behave the same in both
// phases.
type Regressor struct {
	Weights   []float64
	Intercept float64
	Means     []float64
	Scales    []float64
}

// FitRegressor trains on rows of feature values aligned to one column
// order, against target y. NaN cells are imputed with the column mean
// over the training rows. Returns ErrDegenerateTrainingSet when there
// are no rows or the target carries no variance.
func FitRegressor(rows [][]float64, y []float64, hp Hyperparameters) (*Regressor, error) {
	hp = hp.normalized()
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("fit: zero training rows: %w", ErrDegenerateTrainingSet)
	}
	if len(y) != n {
		return nil, fmt.Errorf("fit: %d rows but %d targets", n, len(y))
	}
	d := len(rows[0])

	yMean := 0.0
	for _, v := range y {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("fit: NaN target: %w", ErrDegenerateTrainingSet)
		}
		yMean += v
	}
	yMean /= float64(n)
	yVar := 0.0
	for _, v := range y {
		yVar += (v - yMean) * (v - yMean)
	}
	if yVar < 1e-12 {
		return nil, fmt.Errorf("fit: constant target %.3f: %w", yMean, ErrDegenerateTrainingSet)
	}

	means, scales := columnStats(rows, d)

	// Standardized, imputed design matrix.
	x := make([][]float64, n)
	for i, row := range rows {
		xi := make([]float64, d)
		for j := 0; j < d; j++ {
			v := row[j]
			if math.IsNaN(v) {
				v = means[j]
			}
			xi[j] = (v - means[j]) / scales[j]
		}
		x[i] = xi
	}

	w := make([]float64, d)
	b := yMean
	for epoch := 0; epoch < hp.Epochs; epoch++ {
		gradW := make([]float64, d)
		gradB := 0.0
		for i := 0; i < n; i++ {
			pred := b
			for j := 0; j < d; j++ {
				pred += w[j] * x[i][j]
			}
			err := pred - y[i]
			gradB += err
			for j := 0; j < d; j++ {
				gradW[j] += err * x[i][j]
			}
		}
		inv := 2.0 / float64(n)
		b -= hp.LearningRate * gradB * inv
		for j := 0; j < d; j++ {
			w[j] -= hp.LearningRate * (gradW[j]*inv + 2*hp.Lambda*w[j]/float64(n))
		}
	}

	return &Regressor{Weights: w, Intercept: b, Means: means, Scales: scales}, nil
}

// Predict applies the fit-time imputation and scaling, then the linear
// model. A NaN cell takes the recorded column mean, which standardizes
// to zero contribution.
func (r *Regressor) Predict(row []float64) float64 {
	pred := r.Intercept
	for j, wj := range r.Weights {
		v := math.NaN()
		if j < len(row) {
			v = row[j]
		}
		if math.IsNaN(v) {
			v = r.Means[j]
		}
		pred += wj * (v - r.Means[j]) / r.Scales[j]
	}
	return pred
}

// columnStats computes NaN-skipping means and standardization scales.
// An all-NaN column gets mean 0 and scale 1, contributing nothing.
func columnStats(rows [][]float64, d int) (means, scales []float64) {
	means = make([]float64, d)
	scales = make([]float64, d)
	for j := 0; j < d; j++ {
		sum, count := 0.0, 0
		for i := range rows {
			if v := rows[i][j]; !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count > 0 {
			means[j] = sum / float64(count)
		}
		ss := 0.0
		for i := range rows {
			v := rows[i][j]
			if math.IsNaN(v) {
				continue
			}
			ss += (v - means[j]) * (v - means[j])
		}
		scales[j] = 1.0
		if count > 1 {
			if sd := math.Sqrt(ss / float64(count)); sd > 1e-9 {
				scales[j] = sd
			}
		}
	}
	return means, scales
}
