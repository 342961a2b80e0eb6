package ensemble

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{name: "odd count", vals: []float64{3.0, 5.0, 7.0}, want: 5.0},
		{name: "even count", vals: []float64{3.0, 5.0}, want: 4.0},
		{name: "unsorted", vals: []float64{7.0, 3.0, 5.0}, want: 5.0},
		{name: "single", vals: []float64{9.0}, want: 9.0},
		{name: "outlier robust", vals: []float64{4.0, 5.0, 6.0, 1000.0, -1000.0}, want: 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.vals); got != tt.want {
				t.Errorf("median(%v) = %v, want %v", tt.vals, got, tt.want)
			}
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	vals := []float64{7, 3, 5}
	median(vals)
	if vals[0] != 7 || vals[1] != 3 || vals[2] != 5 {
		t.Errorf("input mutated: %v", vals)
	}
}

func TestWinProbabilityCalibration(t *testing.T) {
	p := NewPredictor(nil, Calibration{}, zap.NewNop())

	if got := p.winProbability(0); got != 0.5 {
		t.Errorf("winProbability(0) = %v, want 0.5", got)
	}

	// Monotonic in margin.
	prev := -1.0
	for _, m := range []float64{-30, -10, -3, 0, 3, 10, 30} {
		wp := p.winProbability(m)
		if wp <= prev {
			t.Fatalf("winProbability not monotonic at margin %v: %v <= %v", m, wp, prev)
		}
		if wp <= 0 || wp >= 1 {
			t.Fatalf("winProbability(%v) = %v, outside (0,1)", m, wp)
		}
		prev = wp
	}

	// A custom scale flattens the curve.
	flat := NewPredictor(nil, Calibration{Scale: 100}, zap.NewNop())
	if flat.winProbability(10) >= p.winProbability(10) {
		t.Errorf("larger scale should move probabilities toward 0.5")
	}
}

func TestCalibrationNormalization(t *testing.T) {
	c := Calibration{}.normalized()
	if c.Scale != DefaultCalibrationScale {
		t.Errorf("scale = %v, want default %v", c.Scale, DefaultCalibrationScale)
	}
	if math.IsNaN(NewPredictor(nil, Calibration{Scale: -1}, zap.NewNop()).winProbability(3)) {
		t.Errorf("negative scale must normalize, not NaN")
	}
}
