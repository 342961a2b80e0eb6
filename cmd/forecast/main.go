// Command forecast runs the full batch pipeline (load, feature build,
// ensemble training, prediction, persistence) and then serves the
// read-only prediction API until terminated.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/config"
	"github.com/gridironhq/forecast-engine/internal/ensemble"
	"github.com/gridironhq/forecast-engine/internal/features"
	"github.com/gridironhq/forecast-engine/internal/handlers"
	"github.com/gridironhq/forecast-engine/internal/loader"
	"github.com/gridironhq/forecast-engine/internal/pipeline"
	"github.com/gridironhq/forecast-engine/internal/sink"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(cfg, logger); err != nil {
		sugar.Fatalw("forecast run failed", "error", err)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ens, err := config.LoadEnsembleConfig(cfg.VariantsFile)
	if err != nil {
		return fmt.Errorf("ensemble config: %w", err)
	}
	sugar.Infow("ensemble config loaded",
		"cutoffs", len(ens.Cutoffs), "variants", len(ens.Variants), "aggregation", ens.Aggregation)

	// Stores
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("clickhouse dsn: %w", err)
	}
	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("clickhouse: %w", err)
	}
	defer conn.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Load
	ds, err := loader.New(conn, pool, logger).LoadAll(ctx, cfg.Seasons)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	// Feature build
	builder := pipeline.NewBuilder(features.RollingConfig{
		Window:  cfg.WindowSize,
		EMASpan: cfg.EMASpan,
	}, nil, logger)
	batch := builder.BuildBatch(ds.Games, ds.StatsByTeam)

	// Train one job per (cutoff, variant) pair
	jobs := make([]ensemble.JobSpec, 0, len(ens.Cutoffs)*len(ens.Variants))
	for _, cutoff := range ens.Cutoffs {
		for _, v := range ens.Variants {
			jobs = append(jobs, ensemble.JobSpec{
				Cutoff: cutoff,
				Variant: ensemble.Variant{
					Name:            v.Name,
					Hyperparameters: v.Hyperparameters,
					FeatureSubset:   v.FeatureSubset,
				},
			})
		}
	}
	trainer := ensemble.NewTrainer(ensemble.TrainerConfig{
		Jobs:        jobs,
		WorkerCount: cfg.WorkerCount,
		Logger:      logger,
	})
	artifacts := trainer.Train(ctx, batch)
	if len(artifacts) == 0 {
		return errors.New("no artifact survived training")
	}

	// Predict the games past the earliest cutoff and persist
	minCutoff := ens.Cutoffs[0]
	for _, c := range ens.Cutoffs[1:] {
		if c < minCutoff {
			minCutoff = c
		}
	}
	_, eval := pipeline.Split(batch, minCutoff)

	predictor := ensemble.NewPredictor(artifacts, ensemble.Calibration{Scale: cfg.CalibrationScale}, logger)
	runID := uuid.NewString()
	preds := predictor.PredictBatch(eval, runID)
	sugar.Infow("prediction pass complete",
		"run", runID, "eval_games", len(eval.Rows), "predicted", len(preds))

	store := sink.New(pool, rdb, cfg.PredictionTTL, logger)
	if err := store.Write(ctx, preds); err != nil {
		return fmt.Errorf("persist predictions: %w", err)
	}

	// Serve
	h := handlers.New(handlers.Config{
		Store:      store,
		Postgres:   pool,
		ClickHouse: conn,
		Redis:      rdb,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Router(cfg.AllowedOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("serving predictions", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	sugar.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
