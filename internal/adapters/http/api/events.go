package api

import (
	"net/http"

	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// EventsHandler handles event submission and (re)scoring.
type EventsHandler struct {
	svc *service.Service
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(svc *service.Service) *EventsHandler {
	return &EventsHandler{svc: svc}
}

type submitEventRequest struct {
	EventData model.EventData `json:"event_data"`
	Notes     string          `json:"notes"`
}

// HandleSubmitEvent handles
// PUT /api/v1/castaways/{castawayID}/episodes/{episodeID}/events. The call
// is an upsert: resubmitting corrects the existing grid and rescores it.
func (h *EventsHandler) HandleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	castawayID, err := pathID(r, "castawayID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	episodeID, err := pathID(r, "episodeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req submitEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.EventData == nil {
		req.EventData = model.EventData{}
	}

	event, err := h.svc.SubmitEvent(r.Context(), castawayID, episodeID, req.EventData, req.Notes)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleListEvents handles GET /api/v1/episodes/{episodeID}/events.
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	episodeID, err := pathID(r, "episodeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	events, err := h.svc.Store().EventsByEpisode(r.Context(), episodeID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type scoreEpisodeRequest struct {
	Events map[int64]model.EventData `json:"events"`
}

type scoreEpisodeResponse struct {
	EpisodeID int64             `json:"episode_id"`
	Scores    map[int64]float64 `json:"scores"`
}

// HandleScoreEpisode handles POST /api/v1/episodes/{episodeID}/score: a
// full-episode submission keyed by castaway id.
func (h *EventsHandler) HandleScoreEpisode(w http.ResponseWriter, r *http.Request) {
	episodeID, err := pathID(r, "episodeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req scoreEpisodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	scores, err := h.svc.SubmitFullEpisode(r.Context(), episodeID, req.Events)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreEpisodeResponse{EpisodeID: episodeID, Scores: scores})
}

// HandleRescoreEpisode handles POST /api/v1/episodes/{episodeID}/rescore,
// recomputing already-recorded events against the current catalog.
func (h *EventsHandler) HandleRescoreEpisode(w http.ResponseWriter, r *http.Request) {
	episodeID, err := pathID(r, "episodeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	scores, err := h.svc.RescoreEpisode(r.Context(), episodeID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreEpisodeResponse{EpisodeID: episodeID, Scores: scores})
}
