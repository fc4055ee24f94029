package suggest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/repository"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/logger"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/metrics"
)

// Suggester loads an episode's context, asks the model for a scoring grid,
// and returns the validated suggestions.
type Suggester struct {
	store  repository.Store
	client *Client
	logger logger.Logger
}

// NewSuggester wires a Suggester over the given store and client.
func NewSuggester(store repository.Store, client *Client, log logger.Logger) *Suggester {
	if log == nil {
		log = logger.Get()
	}
	return &Suggester{store: store, client: client, logger: log}
}

// Enabled reports whether suggestion calls can be made.
func (s *Suggester) Enabled() bool {
	return s.client.Enabled()
}

// Suggest produces scoring suggestions for one episode. The recap is
// optional; without it the model guesses from typical episode patterns and
// flags the uncertainty.
func (s *Suggester) Suggest(ctx context.Context, seasonID, episodeID int64, recap string) (Result, error) {
	requestID := uuid.NewString()
	start := time.Now()

	result, err := s.suggest(ctx, requestID, seasonID, episodeID, recap)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.RecordSuggestionCall(callOutcome(err), durationMs)
	if err != nil {
		s.logger.Warn(ctx, "suggestion request failed",
			logger.String("requestID", requestID),
			logger.Int64("episodeID", episodeID),
			logger.Error(err),
		)
		return Result{}, err
	}

	s.logger.Info(ctx, "suggestion request completed",
		logger.String("requestID", requestID),
		logger.Int64("episodeID", episodeID),
		logger.Int("suggestions", len(result.Suggestions)),
	)
	return result, nil
}

func (s *Suggester) suggest(ctx context.Context, requestID string, seasonID, episodeID int64, recap string) (Result, error) {
	season, err := s.store.Season(ctx, seasonID)
	if err != nil {
		return Result{}, err
	}
	episode, err := s.store.Episode(ctx, episodeID)
	if err != nil {
		return Result{}, err
	}
	castaways, err := s.store.ActiveCastaways(ctx, seasonID)
	if err != nil {
		return Result{}, err
	}
	rules, err := s.store.ActiveRules(ctx, seasonID)
	if err != nil {
		return Result{}, err
	}

	prompt := buildPrompt(season, episode, castaways, rules, recap)
	reply, err := s.client.complete(ctx, systemPrompt, prompt)
	if err != nil {
		return Result{}, err
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(stripCodeFences(reply)), &raw); err != nil {
		return Result{}, errors.Wrapf(ErrUnparsable, "bad suggestion document: %v", err)
	}

	return Result{
		RequestID:      requestID,
		EpisodeID:      episode.ID,
		EpisodeNumber:  episode.EpisodeNumber,
		Suggestions:    parseSuggestions(raw, castaways, rules),
		EpisodeSummary: raw.EpisodeSummary,
		Eliminated:     raw.Eliminated,
		Notes:          raw.Notes,
	}, nil
}

func callOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnparsable):
		return "unparsable"
	default:
		return "upstream_error"
	}
}
