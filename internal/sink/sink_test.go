package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/models"
)

// MockRedis implements RedisClient for testing
type MockRedis struct {
	GetFunc func(ctx context.Context, key string) *redis.StringCmd
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return redis.NewStatusResult("OK", nil)
}

// MockPg implements loader.PgPool for testing
type MockPg struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (m *MockPg) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockPg) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *MockPg) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return errRow{}
}

type errRow struct{}

func (errRow) Scan(dest ...any) error { return errors.New("no rows") }

func samplePrediction() models.Prediction {
	return models.Prediction{
		GameID:             "g1",
		SequenceKey:        models.SeqKey(2024, 5),
		PredictedMargin:    3.5,
		PredictedTotal:     47.0,
		HomeWinProbability: 0.56,
		ModelCount:         6,
		RunID:              "run-1",
		CreatedAt:          time.Now().UTC().Truncate(time.Second),
	}
}

func TestGetCacheHit(t *testing.T) {
	want := samplePrediction()
	payload, _ := json.Marshal(want)

	rdb := &MockRedis{
		GetFunc: func(ctx context.Context, key string) *redis.StringCmd {
			if key != "forecast:prediction:g1" {
				t.Errorf("cache key = %q", key)
			}
			return redis.NewStringResult(string(payload), nil)
		},
	}
	s := New(&MockPg{}, rdb, time.Hour, zap.NewNop())

	got, err := s.Get(context.Background(), "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GameID != want.GameID || got.PredictedMargin != want.PredictedMargin {
		t.Errorf("got = %+v, want %+v", got, want)
	}
}

func TestGetCacheMissNotFound(t *testing.T) {
	s := New(&MockPg{}, &MockRedis{}, time.Hour, zap.NewNop())
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWritePersistsAndCaches(t *testing.T) {
	var execs, sets int
	pg := &MockPg{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			execs++
			if args[0] != "g1" {
				t.Errorf("exec game id = %v", args[0])
			}
			return pgconn.CommandTag{}, nil
		},
	}
	rdb := &MockRedis{
		SetFunc: func(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
			sets++
			if ttl != time.Hour {
				t.Errorf("ttl = %v, want 1h", ttl)
			}
			return redis.NewStatusResult("OK", nil)
		},
	}

	s := New(pg, rdb, time.Hour, zap.NewNop())
	if err := s.Write(context.Background(), []models.Prediction{samplePrediction()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if execs != 1 || sets != 1 {
		t.Errorf("execs = %d, sets = %d, want 1/1", execs, sets)
	}
}

func TestWriteToleratesCacheFailure(t *testing.T) {
	rdb := &MockRedis{
		SetFunc: func(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
			return redis.NewStatusResult("", errors.New("redis down"))
		},
	}
	s := New(&MockPg{}, rdb, time.Hour, zap.NewNop())
	if err := s.Write(context.Background(), []models.Prediction{samplePrediction()}); err != nil {
		t.Errorf("write should tolerate cache failure, got %v", err)
	}
}
