package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/models"
)

// PredictionStore defines the read surface the handlers serve from.
type PredictionStore interface {
	Get(ctx context.Context, gameID string) (*models.Prediction, error)
	ListByKey(ctx context.Context, sequenceKey int) ([]models.Prediction, error)
}

// Pinger covers the Postgres pool and the ClickHouse connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger covers the go-redis client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Config struct {
	Store      PredictionStore
	Postgres   Pinger
	ClickHouse Pinger
	Redis      RedisPinger
	Logger     *zap.Logger
}

type Handler struct {
	store  PredictionStore
	pg     Pinger
	ch     Pinger
	redis  RedisPinger
	logger *zap.SugaredLogger
}

func New(cfg Config) *Handler {
	return &Handler{
		store:  cfg.Store,
		pg:     cfg.Postgres,
		ch:     cfg.ClickHouse,
		redis:  cfg.Redis,
		logger: cfg.Logger.Sugar(),
	}
}
