package ensemble

import "errors"

var (
	// ErrDegenerateTrainingSet marks a (cutoff, variant) job whose
	// training set has no usable rows or a constant target. Local to
	// one artifact: the trainer logs it and moves on.
	ErrDegenerateTrainingSet = errors.New("degenerate training set")

	// ErrNoAvailableModel is returned when zero artifacts can serve a
	// prediction request. Callers must handle it; there is no silent
	// default.
	ErrNoAvailableModel = errors.New("no available model")
)
