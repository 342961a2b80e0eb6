// Package sink hands finished predictions to their external homes:
// durable rows in Postgres and a Redis cache for the serving path.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/loader"
	"github.com/gridironhq/forecast-engine/internal/models"
)

// ErrNotFound means no prediction exists for the requested game.
var ErrNotFound = errors.New("prediction not found")

var predictionsWritten = promauto.NewCounter(prometheus.CounterOpts{
	Name: "forecast_predictions_written_total",
	Help: "Total number of predictions persisted to the sink",
})

// RedisClient defines the interface for the Redis client.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Store writes and reads prediction records.
type Store struct {
	pg     loader.PgPool
	redis  RedisClient
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// New creates a prediction store. ttl bounds the Redis cache entries.
func New(pg loader.PgPool, rdb RedisClient, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{pg: pg, redis: rdb, ttl: ttl, logger: logger.Sugar()}
}

func cacheKey(gameID string) string { return "forecast:prediction:" + gameID }

// Write upserts every prediction into Postgres and refreshes the
// cache. A cache write failure is logged and tolerated; the database
// row is the source of truth.
func (s *Store) Write(ctx context.Context, preds []models.Prediction) error {
	for _, p := range preds {
		_, err := s.pg.Exec(ctx, `
			INSERT INTO predictions
				(game_id, sequence_key, predicted_margin, predicted_total,
				 home_win_probability, model_count, run_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (game_id) DO UPDATE SET
				sequence_key = EXCLUDED.sequence_key,
				predicted_margin = EXCLUDED.predicted_margin,
				predicted_total = EXCLUDED.predicted_total,
				home_win_probability = EXCLUDED.home_win_probability,
				model_count = EXCLUDED.model_count,
				run_id = EXCLUDED.run_id,
				created_at = EXCLUDED.created_at
		`, p.GameID, p.SequenceKey, p.PredictedMargin, p.PredictedTotal,
			p.HomeWinProbability, p.ModelCount, p.RunID, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("persist prediction %s: %w", p.GameID, err)
		}
		predictionsWritten.Inc()

		payload, err := json.Marshal(p)
		if err == nil {
			if err := s.redis.Set(ctx, cacheKey(p.GameID), payload, s.ttl).Err(); err != nil {
				s.logger.Warnw("prediction cache write failed", "game", p.GameID, "error", err)
			}
		}
	}
	s.logger.Infow("predictions persisted", "count", len(preds))
	return nil
}

// Get returns the prediction for one game, consulting the cache
// before Postgres.
func (s *Store) Get(ctx context.Context, gameID string) (*models.Prediction, error) {
	if raw, err := s.redis.Get(ctx, cacheKey(gameID)).Result(); err == nil {
		var p models.Prediction
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		s.logger.Warnw("corrupt cache entry", "game", gameID)
	}

	row := s.pg.QueryRow(ctx, `
		SELECT game_id, sequence_key, predicted_margin, predicted_total,
		       home_win_probability, model_count, run_id, created_at
		FROM predictions WHERE game_id = $1
	`, gameID)

	var p models.Prediction
	if err := row.Scan(&p.GameID, &p.SequenceKey, &p.PredictedMargin, &p.PredictedTotal,
		&p.HomeWinProbability, &p.ModelCount, &p.RunID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("prediction %s: %w", gameID, ErrNotFound)
	}
	return &p, nil
}

// ListByKey returns all predictions at one sequence key (one week).
func (s *Store) ListByKey(ctx context.Context, sequenceKey int) ([]models.Prediction, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT game_id, sequence_key, predicted_margin, predicted_total,
		       home_win_probability, model_count, run_id, created_at
		FROM predictions WHERE sequence_key = $1
		ORDER BY game_id
	`, sequenceKey)
	if err != nil {
		return nil, fmt.Errorf("predictions query: %w", err)
	}
	defer rows.Close()

	preds := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.GameID, &p.SequenceKey, &p.PredictedMargin, &p.PredictedTotal,
			&p.HomeWinProbability, &p.ModelCount, &p.RunID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("predictions scan: %w", err)
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("predictions iteration: %w", err)
	}
	return preds, nil
}
