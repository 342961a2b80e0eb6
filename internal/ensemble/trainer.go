// Package ensemble trains independent (cutoff, variant) regressor
// pairs over differential feature batches and aggregates their
// per-game predictions by median.
package ensemble

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/models"
	"github.com/gridironhq/forecast-engine/internal/pipeline"
)

var (
	artifactsTrained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_artifacts_trained_total",
		Help: "Total number of model artifacts trained successfully",
	})

	artifactsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_artifacts_failed_total",
		Help: "Total number of training jobs that failed and were skipped",
	})

	trainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forecast_training_duration_seconds",
		Help:    "Duration of individual artifact training jobs",
		Buckets: prometheus.DefBuckets,
	})
)

// TrainerConfig configures the ensemble trainer.
type TrainerConfig struct {
	Jobs        []JobSpec
	WorkerCount int
	Logger      *zap.Logger
}

// Trainer fans training jobs out over a bounded worker pool. Jobs
// share only the read-only input batch; each worker produces its own
// artifact, collected (never merged) by the coordinator.
type Trainer struct {
	cfg    TrainerConfig
	logger *zap.SugaredLogger
}

// NewTrainer creates a trainer. WorkerCount defaults to NumCPU.
func NewTrainer(cfg TrainerConfig) *Trainer {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = runtime.NumCPU()
	}
	return &Trainer{cfg: cfg, logger: cfg.Logger.Sugar()}
}

// Train runs every configured job against the batch and returns the
// artifacts that survived. A job failure (degenerate training set,
// fit error) is logged with its cutoff and variant and excluded; the
// ensemble continues with whatever trained.
func (t *Trainer) Train(ctx context.Context, batch models.DifferentialBatch) []*ModelArtifact {
	jobs := make(chan JobSpec)
	results := make(chan *ModelArtifact)

	var wg sync.WaitGroup
	for i := 0; i < t.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range jobs {
				artifact, err := t.trainOne(batch, spec)
				if err != nil {
					artifactsFailed.Inc()
					t.logger.Warnw("training job skipped",
						"cutoff", spec.Cutoff, "variant", spec.Variant.Name, "error", err)
					continue
				}
				artifactsTrained.Inc()
				results <- artifact
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, spec := range t.cfg.Jobs {
			select {
			case jobs <- spec:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var artifacts []*ModelArtifact
	for a := range results {
		artifacts = append(artifacts, a)
	}

	// Stable order for logs and reproducible aggregation metadata.
	sort.Slice(artifacts, func(i, j int) bool {
		if artifacts[i].Cutoff != artifacts[j].Cutoff {
			return artifacts[i].Cutoff < artifacts[j].Cutoff
		}
		return artifacts[i].VariantName < artifacts[j].VariantName
	})

	t.logger.Infow("ensemble training complete",
		"configured", len(t.cfg.Jobs), "trained", len(artifacts))
	return artifacts
}

// trainOne fits the margin and total regressors for one (cutoff,
// variant) pair.
func (t *Trainer) trainOne(batch models.DifferentialBatch, spec JobSpec) (*ModelArtifact, error) {
	start := time.Now()
	defer func() { trainingDuration.Observe(time.Since(start).Seconds()) }()

	train, _ := pipeline.Split(batch, spec.Cutoff)
	if len(train.Rows) == 0 {
		return nil, fmt.Errorf("cutoff %d: no completed games at or before cutoff: %w",
			spec.Cutoff, ErrDegenerateTrainingSet)
	}

	names, cols := selectColumns(batch.Names, spec.Variant.FeatureSubset)
	if len(names) == 0 {
		return nil, fmt.Errorf("variant %q: feature subset matches no batch column: %w",
			spec.Variant.Name, ErrDegenerateTrainingSet)
	}

	rows := make([][]float64, len(train.Rows))
	margins := make([]float64, len(train.Rows))
	totals := make([]float64, len(train.Rows))
	for i, row := range train.Rows {
		x := make([]float64, len(cols))
		for j, c := range cols {
			x[j] = row.Values[c]
		}
		rows[i] = x
		margins[i] = row.MarginHome.Float()
		totals[i] = row.Total.Float()
	}

	hp := HyperparametersFromMap(spec.Variant.Hyperparameters)
	marginReg, err := FitRegressor(rows, margins, hp)
	if err != nil {
		return nil, fmt.Errorf("margin model: %w", err)
	}
	totalReg, err := FitRegressor(rows, totals, hp)
	if err != nil {
		return nil, fmt.Errorf("total model: %w", err)
	}

	return &ModelArtifact{
		ID:           uuid.NewString(),
		Cutoff:       spec.Cutoff,
		VariantName:  spec.Variant.Name,
		FeatureNames: names,
		Margin:       marginReg,
		Total:        totalReg,
		TrainRows:    len(train.Rows),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// selectColumns resolves a variant's feature subset against the batch
// schema, keeping batch order. Subset names the batch lacks are
// dropped; an empty subset selects everything.
func selectColumns(batchNames, subset []string) (names []string, cols []int) {
	if len(subset) == 0 {
		names = append(names, batchNames...)
		cols = make([]int, len(batchNames))
		for i := range batchNames {
			cols[i] = i
		}
		return names, cols
	}
	want := make(map[string]struct{}, len(subset))
	for _, s := range subset {
		want[s] = struct{}{}
	}
	for i, n := range batchNames {
		if _, ok := want[n]; ok {
			names = append(names, n)
			cols = append(cols, i)
		}
	}
	return names, cols
}
