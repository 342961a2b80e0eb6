package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gridironhq/forecast-engine/internal/models"
	"github.com/gridironhq/forecast-engine/internal/sink"
)

// GetPrediction returns the latest prediction for one game.
// GET /api/v1/predictions/{game_id}
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	if gameID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Missing game id")
		return
	}

	pred, err := h.store.Get(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, sink.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "No prediction for game")
			return
		}
		h.logger.Errorw("prediction lookup failed", "game", gameID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	h.respondJSON(w, http.StatusOK, pred)
}

// ListPredictions returns all predictions for one season/week.
// GET /api/v1/predictions?season=2024&week=5
func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	season, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid season")
		return
	}
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid week")
		return
	}

	preds, err := h.store.ListByKey(r.Context(), models.SeqKey(season, week))
	if err != nil {
		h.logger.Errorw("prediction list failed", "season", season, "week", week, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"season":      season,
		"week":        week,
		"predictions": preds,
	})
}
