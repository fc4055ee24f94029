package api

import (
	"net/http"

	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// FantasyHandler handles players, rosters, and predictions.
type FantasyHandler struct {
	svc *service.Service
}

// NewFantasyHandler creates a new fantasy handler.
func NewFantasyHandler(svc *service.Service) *FantasyHandler {
	return &FantasyHandler{svc: svc}
}

type createPlayerRequest struct {
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	IsCommissioner bool   `json:"is_commissioner"`
}

// HandleCreatePlayer handles POST /api/v1/players.
func (h *FantasyHandler) HandleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	player := model.FantasyPlayer{
		Username:       req.Username,
		DisplayName:    req.DisplayName,
		IsCommissioner: req.IsCommissioner,
	}
	if err := h.svc.Store().CreatePlayer(r.Context(), &player); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

type createRosterEntryRequest struct {
	FantasyPlayerID      int64            `json:"fantasy_player_id"`
	CastawayID           int64            `json:"castaway_id"`
	PickupType           model.PickupType `json:"pickup_type"`
	DraftPosition        int              `json:"draft_position"`
	PickedUpAfterEpisode int              `json:"picked_up_after_episode"`
}

// HandleCreateRosterEntry handles POST /api/v1/seasons/{seasonID}/rosters.
func (h *FantasyHandler) HandleCreateRosterEntry(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req createRosterEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.FantasyPlayerID < 1 || req.CastawayID < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if _, err := h.svc.Store().Player(r.Context(), req.FantasyPlayerID); err != nil {
		writeStoreError(w, err)
		return
	}
	if _, err := h.svc.Store().Castaway(r.Context(), req.CastawayID); err != nil {
		writeStoreError(w, err)
		return
	}

	entry := model.FantasyRoster{
		SeasonID:             seasonID,
		FantasyPlayerID:      req.FantasyPlayerID,
		CastawayID:           req.CastawayID,
		PickupType:           req.PickupType,
		DraftPosition:        req.DraftPosition,
		PickedUpAfterEpisode: req.PickedUpAfterEpisode,
		IsActive:             true,
	}
	if entry.PickupType == "" {
		entry.PickupType = model.Draft
	}
	if err := h.svc.Store().CreateRosterEntry(r.Context(), &entry); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleDeactivateRosterEntry handles DELETE /api/v1/rosters/{rosterID}.
// Entries are soft-deactivated so history survives.
func (h *FantasyHandler) HandleDeactivateRosterEntry(w http.ResponseWriter, r *http.Request) {
	rosterID, err := pathID(r, "rosterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.svc.Store().DeactivateRosterEntry(r.Context(), rosterID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createPredictionRequest struct {
	FantasyPlayerID int64   `json:"fantasy_player_id"`
	PredictionType  string  `json:"prediction_type"`
	CastawayID      int64   `json:"castaway_id"`
	BonusPoints     float64 `json:"bonus_points"`
}

// HandleCreatePrediction handles POST /api/v1/seasons/{seasonID}/predictions.
func (h *FantasyHandler) HandleCreatePrediction(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req createPredictionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.FantasyPlayerID < 1 || req.CastawayID < 1 || req.PredictionType == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	prediction := model.Prediction{
		SeasonID:        seasonID,
		FantasyPlayerID: req.FantasyPlayerID,
		PredictionType:  req.PredictionType,
		CastawayID:      req.CastawayID,
		BonusPoints:     req.BonusPoints,
	}
	if err := h.svc.Store().CreatePrediction(r.Context(), &prediction); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, prediction)
}

type resolvePredictionRequest struct {
	IsCorrect   bool    `json:"is_correct"`
	BonusPoints float64 `json:"bonus_points"`
}

// HandleResolvePrediction handles
// POST /api/v1/predictions/{predictionID}/resolve.
func (h *FantasyHandler) HandleResolvePrediction(w http.ResponseWriter, r *http.Request) {
	predictionID, err := pathID(r, "predictionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req resolvePredictionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.svc.Store().ResolvePrediction(r.Context(), predictionID, req.IsCorrect, req.BonusPoints); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
