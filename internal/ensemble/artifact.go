package ensemble

import "time"

// Variant is a named configuration profile used to diversify ensemble
// members: loose hyperparameters plus an optional feature subset. An
// empty subset means all columns of the batch.
type Variant struct {
	Name            string
	Hyperparameters map[string]float64
	FeatureSubset   []string
}

// JobSpec is one (training cutoff, variant) combination. Each spec
// yields at most one ModelArtifact.
type JobSpec struct {
	Cutoff  int
	Variant Variant
}

// ModelArtifact is the immutable result of one training job: the two
// fitted regressors, the exact feature-name order they were fit
// against, and the configuration that produced them. Never mutated
// after creation.
type ModelArtifact struct {
	ID           string
	Cutoff       int
	VariantName  string
	FeatureNames []string
	Margin       *Regressor
	Total        *Regressor
	TrainRows    int
	CreatedAt    time.Time
}

// Covers reports whether the artifact may serve a game at the given
// sequence key: only models whose training cutoff precedes the game
// are eligible, so a model never scores a game it could have seen.
func (a *ModelArtifact) Covers(sequenceKey int) bool {
	return a.Cutoff < sequenceKey
}
