package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/models"
	"github.com/gridironhq/forecast-engine/internal/sink"
)

// MockStore implements PredictionStore for testing
type MockStore struct {
	GetFunc  func(ctx context.Context, gameID string) (*models.Prediction, error)
	ListFunc func(ctx context.Context, sequenceKey int) ([]models.Prediction, error)
}

func (m *MockStore) Get(ctx context.Context, gameID string) (*models.Prediction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, gameID)
	}
	return nil, sink.ErrNotFound
}

func (m *MockStore) ListByKey(ctx context.Context, sequenceKey int) ([]models.Prediction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, sequenceKey)
	}
	return []models.Prediction{}, nil
}

func newTestHandler(store PredictionStore) *Handler {
	return New(Config{Store: store, Logger: zap.NewNop()})
}

func TestGetPrediction(t *testing.T) {
	store := &MockStore{
		GetFunc: func(ctx context.Context, gameID string) (*models.Prediction, error) {
			if gameID != "g1" {
				return nil, sink.ErrNotFound
			}
			return &models.Prediction{GameID: "g1", PredictedMargin: 3.5, ModelCount: 6}, nil
		},
	}
	router := newTestHandler(store).Router(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/g1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.Prediction
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.GameID != "g1" || got.PredictedMargin != 3.5 {
		t.Errorf("got = %+v", got)
	}
}

func TestGetPredictionNotFound(t *testing.T) {
	router := newTestHandler(&MockStore{}).Router(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListPredictionsValidation(t *testing.T) {
	router := newTestHandler(&MockStore{}).Router(nil)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{name: "missing season", url: "/api/v1/predictions?week=5", want: http.StatusBadRequest},
		{name: "missing week", url: "/api/v1/predictions?season=2024", want: http.StatusBadRequest},
		{name: "valid", url: "/api/v1/predictions?season=2024&week=5", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestListPredictionsUsesSequenceKey(t *testing.T) {
	var gotKey int
	store := &MockStore{
		ListFunc: func(ctx context.Context, sequenceKey int) ([]models.Prediction, error) {
			gotKey = sequenceKey
			return []models.Prediction{{GameID: "g1"}}, nil
		},
	}
	router := newTestHandler(store).Router(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions?season=2024&week=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotKey != models.SeqKey(2024, 7) {
		t.Errorf("sequence key = %d, want %d", gotKey, models.SeqKey(2024, 7))
	}
}

func TestHealth(t *testing.T) {
	router := newTestHandler(&MockStore{}).Router(nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
