package api

import (
	"net/http"
	"time"

	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// SeasonsHandler handles season, castaway, and episode management.
type SeasonsHandler struct {
	svc *service.Service
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(svc *service.Service) *SeasonsHandler {
	return &SeasonsHandler{svc: svc}
}

type createSeasonRequest struct {
	SeasonNumber            int    `json:"season_number"`
	Name                    string `json:"name"`
	MaxRosterSize           int    `json:"max_roster_size"`
	FreeAgentPickupLimit    int    `json:"free_agent_pickup_limit"`
	MaxTimesCastawayDrafted int    `json:"max_times_castaway_drafted"`
	LogoURL                 string `json:"logo_url"`
}

// HandleCreateSeason handles POST /api/v1/seasons.
func (h *SeasonsHandler) HandleCreateSeason(w http.ResponseWriter, r *http.Request) {
	var req createSeasonRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.SeasonNumber < 1 || req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	season := model.Season{
		SeasonNumber:            req.SeasonNumber,
		Name:                    req.Name,
		Status:                  model.SeasonSetup,
		MaxRosterSize:           req.MaxRosterSize,
		FreeAgentPickupLimit:    req.FreeAgentPickupLimit,
		MaxTimesCastawayDrafted: req.MaxTimesCastawayDrafted,
		LogoURL:                 req.LogoURL,
	}
	if season.MaxRosterSize == 0 {
		season.MaxRosterSize = 4
	}
	if season.FreeAgentPickupLimit == 0 {
		season.FreeAgentPickupLimit = 1
	}
	if season.MaxTimesCastawayDrafted == 0 {
		season.MaxTimesCastawayDrafted = 2
	}
	if err := h.svc.Store().CreateSeason(r.Context(), &season); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, season)
}

// HandleGetSeason handles GET /api/v1/seasons/{seasonID}.
func (h *SeasonsHandler) HandleGetSeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	season, err := h.svc.Store().Season(r.Context(), seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

type updateStatusRequest struct {
	Status model.SeasonStatus `json:"status"`
}

// HandleUpdateStatus handles PATCH /api/v1/seasons/{seasonID}/status.
func (h *SeasonsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	switch req.Status {
	case model.SeasonSetup, model.SeasonDrafting, model.SeasonActive, model.SeasonComplete:
	default:
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.svc.Store().UpdateSeasonStatus(r.Context(), seasonID, req.Status); err != nil {
		writeStoreError(w, err)
		return
	}
	season, err := h.svc.Store().Season(r.Context(), seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

type createCastawayRequest struct {
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Occupation    string `json:"occupation"`
	StartingTribe string `json:"starting_tribe"`
}

// HandleCreateCastaway handles POST /api/v1/seasons/{seasonID}/castaways.
func (h *SeasonsHandler) HandleCreateCastaway(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req createCastawayRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if _, err := h.svc.Store().Season(r.Context(), seasonID); err != nil {
		writeStoreError(w, err)
		return
	}

	castaway := model.Castaway{
		SeasonID:      seasonID,
		Name:          req.Name,
		Age:           req.Age,
		Occupation:    req.Occupation,
		StartingTribe: req.StartingTribe,
		CurrentTribe:  req.StartingTribe,
		Status:        model.CastawayActive,
	}
	if err := h.svc.Store().CreateCastaway(r.Context(), &castaway); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, castaway)
}

// HandleListCastaways handles GET /api/v1/seasons/{seasonID}/castaways.
// The active=true query narrows to castaways still in the game.
func (h *SeasonsHandler) HandleListCastaways(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var castaways []model.Castaway
	if r.URL.Query().Get("active") == "true" {
		castaways, err = h.svc.Store().ActiveCastaways(r.Context(), seasonID)
	} else {
		castaways, err = h.svc.Store().CastawaysBySeason(r.Context(), seasonID)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, castaways)
}

type createEpisodeRequest struct {
	EpisodeNumber int    `json:"episode_number"`
	Title         string `json:"title"`
	AirDate       string `json:"air_date"`
	IsMerge       bool   `json:"is_merge"`
	IsFinale      bool   `json:"is_finale"`
	Notes         string `json:"notes"`
}

// HandleCreateEpisode handles POST /api/v1/seasons/{seasonID}/episodes.
func (h *SeasonsHandler) HandleCreateEpisode(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req createEpisodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.EpisodeNumber < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if _, err := h.svc.Store().Season(r.Context(), seasonID); err != nil {
		writeStoreError(w, err)
		return
	}

	episode := model.Episode{
		SeasonID:      seasonID,
		EpisodeNumber: req.EpisodeNumber,
		Title:         req.Title,
		IsMerge:       req.IsMerge,
		IsFinale:      req.IsFinale,
		Notes:         req.Notes,
	}
	if req.AirDate != "" {
		airDate, err := time.Parse("2006-01-02", req.AirDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		episode.AirDate = airDate
	}
	if err := h.svc.Store().CreateEpisode(r.Context(), &episode); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, episode)
}

// HandleListEpisodes handles GET /api/v1/seasons/{seasonID}/episodes.
func (h *SeasonsHandler) HandleListEpisodes(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	episodes, err := h.svc.Store().EpisodesBySeason(r.Context(), seasonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}
