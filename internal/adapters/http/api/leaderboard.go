package api

import (
	"net/http"
	"strconv"

	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
)

// LeaderboardHandler handles totals, standings, and season recalculation.
type LeaderboardHandler struct {
	svc *service.Service
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(svc *service.Service) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

type castawayTotalResponse struct {
	CastawayID int64   `json:"castaway_id"`
	SeasonID   int64   `json:"season_id"`
	Total      float64 `json:"total"`
}

// HandleCastawayTotal handles
// GET /api/v1/seasons/{seasonID}/castaways/{castawayID}/total.
func (h *LeaderboardHandler) HandleCastawayTotal(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	castawayID, err := pathID(r, "castawayID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if _, err := h.svc.Store().Castaway(r.Context(), castawayID); err != nil {
		writeStoreError(w, err)
		return
	}
	total, err := h.svc.CastawaySeasonTotal(r.Context(), castawayID, seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, castawayTotalResponse{CastawayID: castawayID, SeasonID: seasonID, Total: total})
}

// HandlePlayerTotal handles
// GET /api/v1/seasons/{seasonID}/players/{playerID}/total.
func (h *LeaderboardHandler) HandlePlayerTotal(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if _, err := h.svc.Store().Player(r.Context(), playerID); err != nil {
		writeStoreError(w, err)
		return
	}
	total, err := h.svc.PlayerTotal(r.Context(), playerID, seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

// HandleGetLeaderboard handles
// GET /api/v1/seasons/{seasonID}/leaderboard?limit=N. The limit is
// optional; it falls back to the configured maximum.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}
	entries, err := h.svc.Leaderboard(r.Context(), seasonID, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleRecalculate handles POST /api/v1/seasons/{seasonID}/recalculate,
// sweeping every cached score in the season.
func (h *LeaderboardHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if _, err := h.svc.Store().Season(r.Context(), seasonID); err != nil {
		writeStoreError(w, err)
		return
	}
	result, err := h.svc.RecalculateSeason(r.Context(), seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
