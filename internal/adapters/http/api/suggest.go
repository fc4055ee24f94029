package api

import (
	"errors"
	"net/http"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/suggest"
)

// SuggestHandler handles AI scoring suggestion requests.
type SuggestHandler struct {
	suggester Suggester
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(suggester Suggester) *SuggestHandler {
	return &SuggestHandler{suggester: suggester}
}

type suggestRequest struct {
	Recap string `json:"recap"`
}

// HandleSuggest handles
// POST /api/v1/seasons/{seasonID}/episodes/{episodeID}/suggest. The recap
// is optional. Suggestions are advisory: nothing is written until the
// commissioner submits the reviewed grid.
func (h *SuggestHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	episodeID, err := pathID(r, "episodeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var req suggestRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}

	result, err := h.suggester.Suggest(r.Context(), seasonID, episodeID, req.Recap)
	if err != nil {
		switch {
		case errors.Is(err, suggest.ErrDisabled):
			writeError(w, http.StatusServiceUnavailable, "suggestions_disabled", err)
		case errors.Is(err, suggest.ErrTimeout):
			writeError(w, http.StatusGatewayTimeout, "suggestion_timeout", err)
		case errors.Is(err, suggest.ErrUnparsable):
			writeError(w, http.StatusBadGateway, "suggestion_unparsable", err)
		case errors.Is(err, suggest.ErrUpstream):
			writeError(w, http.StatusBadGateway, "suggestion_upstream", err)
		default:
			writeStoreError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
