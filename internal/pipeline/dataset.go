// Package pipeline wires loader output through feature engineering
// into model-ready differential batches, and partitions those batches
// by time for training.
package pipeline

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/features"
	"github.com/gridironhq/forecast-engine/internal/models"
)

var (
	vectorsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_feature_vectors_built_total",
		Help: "Total number of per-team feature vectors computed",
	})

	gamesNoHistory = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_games_without_history_total",
		Help: "Games batched with all-NaN features because neither side had stat history",
	})
)

// Builder constructs differential batches from raw loader tables.
// Feature vectors are recomputed on every run; nothing is cached, so
// retroactive stat corrections always take effect.
type Builder struct {
	computer  *features.Computer
	baseStats []string
	logger    *zap.SugaredLogger
}

// NewBuilder creates a dataset builder. baseStats may be empty, in
// which case the builder derives the stat catalog from the data.
func NewBuilder(cfg features.RollingConfig, baseStats []string, logger *zap.Logger) *Builder {
	return &Builder{
		computer:  features.NewComputer(cfg),
		baseStats: baseStats,
		logger:    logger.Sugar(),
	}
}

// BuildBatch computes one fixed-width differential row per game.
// statsByTeam maps team id to that team's full stat history; ordering
// is handled here. Games whose participants have no history at all
// still produce a row (all-NaN features), keeping the schema stable.
func (b *Builder) BuildBatch(games []models.GameRecord, statsByTeam map[string][]models.TeamStatRecord) models.DifferentialBatch {
	for _, history := range statsByTeam {
		features.SortHistory(history)
	}

	baseStats := b.baseStats
	if len(baseStats) == 0 {
		baseStats = deriveStatCatalog(statsByTeam)
	}

	inputs := make([]features.GameVectors, 0, len(games))
	for _, game := range games {
		home, homeOK := statsByTeam[game.HomeTeamID]
		away, awayOK := statsByTeam[game.AwayTeamID]
		if !homeOK && !awayOK {
			gamesNoHistory.Inc()
			b.logger.Warnw("no stat history for either side",
				"game", game.GameID, "home", game.HomeTeamID, "away", game.AwayTeamID)
		}

		hv := b.teamVector(home, baseStats, game.SequenceKey, game.Season)
		av := b.teamVector(away, baseStats, game.SequenceKey, game.Season)
		inputs = append(inputs, features.GameVectors{Game: game, Home: hv, Away: av})
	}

	batch := features.AssembleDifferentials(inputs)
	b.logger.Infow("differential batch built",
		"games", len(batch.Rows), "columns", len(batch.Names), "baseStats", len(baseStats))
	return batch
}

func (b *Builder) teamVector(history []models.TeamStatRecord, baseStats []string, key, season int) models.FeatureVector {
	vec := b.computer.VectorAt(history, baseStats, key, season)
	features.BuildInteractions(vec)
	vectorsBuilt.Inc()
	return vec
}

// deriveStatCatalog collects the union of stat names across all
// records, sorted for a deterministic column order.
func deriveStatCatalog(statsByTeam map[string][]models.TeamStatRecord) []string {
	set := make(map[string]struct{})
	for _, history := range statsByTeam {
		for i := range history {
			for name := range history[i].Stats {
				set[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
