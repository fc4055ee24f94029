// Package api declares HTTP contracts and route registration helpers for
// the league API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/repository"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/suggest"
	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
)

// Suggester is the AI suggestion dependency. It stays an interface so the
// API can be served with suggestions disabled.
type Suggester interface {
	Enabled() bool
	Suggest(ctx context.Context, seasonID, episodeID int64, recap string) (suggest.Result, error)
}

// Server wires HTTP routes for the league API.
type Server struct {
	seasonsHandler     *SeasonsHandler
	rulesHandler       *RulesHandler
	eventsHandler      *EventsHandler
	fantasyHandler     *FantasyHandler
	leaderboardHandler *LeaderboardHandler
	suggestHandler     *SuggestHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(svc *service.Service, suggester Suggester, statsProvider StatsProvider) *Server {
	return &Server{
		seasonsHandler:     NewSeasonsHandler(svc),
		rulesHandler:       NewRulesHandler(svc),
		eventsHandler:      NewEventsHandler(svc),
		fantasyHandler:     NewFantasyHandler(svc),
		leaderboardHandler: NewLeaderboardHandler(svc),
		suggestHandler:     NewSuggestHandler(suggester),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
	}
}

// Router builds the chi router with every route registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/seasons", MetricsMiddleware(s.seasonsHandler.HandleCreateSeason, "seasons"))
		r.Get("/seasons/{seasonID}", MetricsMiddleware(s.seasonsHandler.HandleGetSeason, "seasons"))
		r.Patch("/seasons/{seasonID}/status", MetricsMiddleware(s.seasonsHandler.HandleUpdateStatus, "seasons"))

		r.Post("/seasons/{seasonID}/castaways", MetricsMiddleware(s.seasonsHandler.HandleCreateCastaway, "castaways"))
		r.Get("/seasons/{seasonID}/castaways", MetricsMiddleware(s.seasonsHandler.HandleListCastaways, "castaways"))
		r.Post("/seasons/{seasonID}/episodes", MetricsMiddleware(s.seasonsHandler.HandleCreateEpisode, "episodes"))
		r.Get("/seasons/{seasonID}/episodes", MetricsMiddleware(s.seasonsHandler.HandleListEpisodes, "episodes"))

		r.Get("/seasons/{seasonID}/rules", MetricsMiddleware(s.rulesHandler.HandleListRules, "rules"))
		r.Post("/seasons/{seasonID}/rules", MetricsMiddleware(s.rulesHandler.HandleCreateRule, "rules"))
		r.Post("/seasons/{seasonID}/rules/seed", MetricsMiddleware(s.rulesHandler.HandleSeedRules, "rules"))
		r.Post("/seasons/{seasonID}/rules/copy", MetricsMiddleware(s.rulesHandler.HandleCopyRules, "rules"))
		r.Put("/rules/{ruleID}", MetricsMiddleware(s.rulesHandler.HandleUpdateRule, "rules"))

		r.Put("/castaways/{castawayID}/episodes/{episodeID}/events", MetricsMiddleware(s.eventsHandler.HandleSubmitEvent, "events"))
		r.Get("/episodes/{episodeID}/events", MetricsMiddleware(s.eventsHandler.HandleListEvents, "events"))
		r.Post("/episodes/{episodeID}/score", MetricsMiddleware(s.eventsHandler.HandleScoreEpisode, "score"))
		r.Post("/episodes/{episodeID}/rescore", MetricsMiddleware(s.eventsHandler.HandleRescoreEpisode, "rescore"))

		r.Post("/players", MetricsMiddleware(s.fantasyHandler.HandleCreatePlayer, "players"))
		r.Post("/seasons/{seasonID}/rosters", MetricsMiddleware(s.fantasyHandler.HandleCreateRosterEntry, "rosters"))
		r.Delete("/rosters/{rosterID}", MetricsMiddleware(s.fantasyHandler.HandleDeactivateRosterEntry, "rosters"))
		r.Post("/seasons/{seasonID}/predictions", MetricsMiddleware(s.fantasyHandler.HandleCreatePrediction, "predictions"))
		r.Post("/predictions/{predictionID}/resolve", MetricsMiddleware(s.fantasyHandler.HandleResolvePrediction, "predictions"))

		r.Get("/seasons/{seasonID}/castaways/{castawayID}/total", MetricsMiddleware(s.leaderboardHandler.HandleCastawayTotal, "totals"))
		r.Get("/seasons/{seasonID}/players/{playerID}/total", MetricsMiddleware(s.leaderboardHandler.HandlePlayerTotal, "totals"))
		r.Get("/seasons/{seasonID}/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
		r.Post("/seasons/{seasonID}/recalculate", MetricsMiddleware(s.leaderboardHandler.HandleRecalculate, "recalculate"))

		r.Post("/seasons/{seasonID}/episodes/{episodeID}/suggest", MetricsMiddleware(s.suggestHandler.HandleSuggest, "suggest"))
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError translates repository sentinels to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrInvalidRule), errors.Is(err, service.ErrNoEvents):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// pathID parses a chi URL parameter as an entity id.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, ErrBadRequest
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrBadBody
	}
	return nil
}
