// Package service provides the core business service that implements
// the dependencies required by the HTTP API: event scoring, season
// aggregation, leaderboard assembly, and rule catalog management.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/repository"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/rules"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/scoring"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/types"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/logger"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/metrics"
)

// Service orchestrates scoring and aggregation over a Store.
type Service struct {
	store repository.Store

	maxLeaderboardLimit int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxLeaderboardLimit caps how many leaderboard rows one request may
// ask for.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLeaderboardLimit = limit
		}
	}
}

// New constructs a Service over the given store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:               store,
		maxLeaderboardLimit: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Store exposes the underlying store for entity CRUD passthrough.
func (s *Service) Store() repository.Store {
	return s.store
}

// ScoreEpisodeEvent computes and caches the score for one recorded event.
// The merge phase is derived from episode ordering: the event's episode is
// post-merge iff a merge-flagged episode exists at or before it in the
// season.
func (s *Service) ScoreEpisodeEvent(ctx context.Context, eventID int64) (float64, error) {
	event, err := s.store.Event(ctx, eventID)
	if err != nil {
		metrics.RecordScoringError()
		return 0, err
	}
	episode, err := s.store.Episode(ctx, event.EpisodeID)
	if err != nil {
		metrics.RecordScoringError()
		return 0, err
	}
	activeRules, err := s.store.ActiveRules(ctx, episode.SeasonID)
	if err != nil {
		metrics.RecordScoringError()
		return 0, err
	}
	isPostMerge, err := s.store.HasMergeAtOrBefore(ctx, episode.SeasonID, episode.EpisodeNumber)
	if err != nil {
		metrics.RecordScoringError()
		return 0, err
	}
	return s.scoreAndCache(ctx, s.store, event, activeRules, isPostMerge)
}

func (s *Service) scoreAndCache(ctx context.Context, store repository.Store, event model.CastawayEpisodeEvent, activeRules []model.ScoringRule, isPostMerge bool) (float64, error) {
	score := scoring.CalculateEventScore(event.EventData, activeRules, isPostMerge)
	if err := store.SetCalculatedScore(ctx, event.ID, score); err != nil {
		metrics.RecordScoringError()
		return 0, err
	}
	metrics.RecordEventScored()
	s.logger.Debug(ctx, "scored episode event",
		logger.Int64("eventID", event.ID),
		logger.Int64("castawayID", event.CastawayID),
		logger.Float64("score", score),
	)
	return score, nil
}

// SubmitEvent records (or corrects) one castaway's observations for an
// episode and immediately scores them. The returned event carries the fresh
// cached score.
func (s *Service) SubmitEvent(ctx context.Context, castawayID, episodeID int64, data model.EventData, notes string) (model.CastawayEpisodeEvent, error) {
	episode, err := s.store.Episode(ctx, episodeID)
	if err != nil {
		return model.CastawayEpisodeEvent{}, err
	}
	if _, err := s.store.Castaway(ctx, castawayID); err != nil {
		return model.CastawayEpisodeEvent{}, err
	}

	event := model.CastawayEpisodeEvent{
		CastawayID: castawayID,
		EpisodeID:  episodeID,
		EventData:  data,
		Notes:      notes,
	}
	if err := s.store.UpsertEvent(ctx, &event); err != nil {
		return model.CastawayEpisodeEvent{}, err
	}

	activeRules, err := s.store.ActiveRules(ctx, episode.SeasonID)
	if err != nil {
		metrics.RecordScoringError()
		return model.CastawayEpisodeEvent{}, err
	}
	isPostMerge, err := s.store.HasMergeAtOrBefore(ctx, episode.SeasonID, episode.EpisodeNumber)
	if err != nil {
		metrics.RecordScoringError()
		return model.CastawayEpisodeEvent{}, err
	}
	score, err := s.scoreAndCache(ctx, s.store, event, activeRules, isPostMerge)
	if err != nil {
		return model.CastawayEpisodeEvent{}, err
	}
	event.CalculatedScore = &score
	return event, nil
}

// SubmitFullEpisode records events for several castaways in one episode,
// scores them with a single rule and merge-phase lookup, and marks the
// episode scored. It returns each castaway's computed score.
func (s *Service) SubmitFullEpisode(ctx context.Context, episodeID int64, eventsByCastaway map[int64]model.EventData) (types.EpisodeScores, error) {
	if len(eventsByCastaway) == 0 {
		return nil, ErrNoEvents
	}
	episode, err := s.store.Episode(ctx, episodeID)
	if err != nil {
		return nil, err
	}

	scores := make(types.EpisodeScores, len(eventsByCastaway))
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		activeRules, err := tx.ActiveRules(ctx, episode.SeasonID)
		if err != nil {
			return err
		}
		isPostMerge, err := tx.HasMergeAtOrBefore(ctx, episode.SeasonID, episode.EpisodeNumber)
		if err != nil {
			return err
		}
		for castawayID, data := range eventsByCastaway {
			event := model.CastawayEpisodeEvent{
				CastawayID: castawayID,
				EpisodeID:  episodeID,
				EventData:  data,
			}
			if err := tx.UpsertEvent(ctx, &event); err != nil {
				return err
			}
			score, err := s.scoreAndCache(ctx, tx, event, activeRules, isPostMerge)
			if err != nil {
				return err
			}
			scores[castawayID] = score
		}
		return tx.MarkEpisodeScored(ctx, episodeID)
	})
	if err != nil {
		metrics.RecordScoringError()
		return nil, err
	}

	metrics.RecordEpisodeScored()
	s.logger.Info(ctx, "scored full episode",
		logger.Int64("episodeID", episodeID),
		logger.Int("castaways", len(scores)),
	)
	return scores, nil
}

// RescoreEpisode recomputes every already-recorded event of an episode
// against the current rule catalog and marks the episode scored.
func (s *Service) RescoreEpisode(ctx context.Context, episodeID int64) (types.EpisodeScores, error) {
	episode, err := s.store.Episode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	activeRules, err := s.store.ActiveRules(ctx, episode.SeasonID)
	if err != nil {
		return nil, err
	}
	isPostMerge, err := s.store.HasMergeAtOrBefore(ctx, episode.SeasonID, episode.EpisodeNumber)
	if err != nil {
		return nil, err
	}
	events, err := s.store.EventsByEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}

	scores := make(types.EpisodeScores, len(events))
	for _, event := range events {
		score, err := s.scoreAndCache(ctx, s.store, event, activeRules, isPostMerge)
		if err != nil {
			return nil, err
		}
		scores[event.CastawayID] = score
	}
	if err := s.store.MarkEpisodeScored(ctx, episodeID); err != nil {
		return nil, err
	}
	metrics.RecordEpisodeScored()
	return scores, nil
}

// RecalculateSeason recomputes every cached score in a season against the
// current rule catalog, inside one transaction. Rules are loaded once; the
// merge phase is tracked while walking episodes in order.
func (s *Service) RecalculateSeason(ctx context.Context, seasonID int64) (types.SweepResult, error) {
	start := time.Now()
	var result types.SweepResult

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		activeRules, err := tx.ActiveRules(ctx, seasonID)
		if err != nil {
			return err
		}
		episodes, err := tx.EpisodesBySeason(ctx, seasonID)
		if err != nil {
			return err
		}

		merged := false
		for _, episode := range episodes {
			if episode.IsMerge {
				merged = true
			}
			events, err := tx.EventsByEpisode(ctx, episode.ID)
			if err != nil {
				return err
			}
			for _, event := range events {
				if _, err := s.scoreAndCache(ctx, tx, event, activeRules, merged); err != nil {
					return err
				}
				result.EventsRecalculated++
			}
			result.EpisodesProcessed++
		}
		return nil
	})
	if err != nil {
		metrics.RecordScoringError()
		return types.SweepResult{}, fmt.Errorf("season %d recalculation failed: %w", seasonID, err)
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.RecordSweep(result.EventsRecalculated, durationMs)
	s.logger.Info(ctx, "season recalculated",
		logger.Int64("seasonID", seasonID),
		logger.Int("episodes", result.EpisodesProcessed),
		logger.Int("events", result.EventsRecalculated),
	)
	return result, nil
}

// CastawaySeasonTotal sums a castaway's cached scores across a season.
// Unscored events contribute nothing.
func (s *Service) CastawaySeasonTotal(ctx context.Context, castawayID, seasonID int64) (float64, error) {
	events, err := s.store.EventsForCastawaySeason(ctx, castawayID, seasonID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, event := range events {
		if event.CalculatedScore != nil {
			total += *event.CalculatedScore
		}
	}
	return scoring.Round2(total), nil
}

// PlayerTotal computes a fantasy player's season total: the sum of their
// active roster's castaway totals plus bonuses from predictions resolved
// correct.
func (s *Service) PlayerTotal(ctx context.Context, playerID, seasonID int64) (types.PlayerTotal, error) {
	entries, err := s.store.ActiveRosterEntries(ctx, playerID, seasonID)
	if err != nil {
		return types.PlayerTotal{}, err
	}

	total := types.PlayerTotal{
		FantasyPlayerID: playerID,
		RosterBreakdown: make([]types.RosterSlot, 0, len(entries)),
	}
	var rosterSum float64
	for _, entry := range entries {
		castaway, err := s.store.Castaway(ctx, entry.CastawayID)
		if err != nil {
			return types.PlayerTotal{}, err
		}
		slotTotal, err := s.CastawaySeasonTotal(ctx, entry.CastawayID, seasonID)
		if err != nil {
			return types.PlayerTotal{}, err
		}
		rosterSum += slotTotal
		total.RosterBreakdown = append(total.RosterBreakdown, types.RosterSlot{
			CastawayID:   entry.CastawayID,
			CastawayName: castaway.Name,
			PickupType:   entry.PickupType,
			TotalScore:   slotTotal,
		})
	}

	predictions, err := s.store.CorrectPredictions(ctx, playerID, seasonID)
	if err != nil {
		return types.PlayerTotal{}, err
	}
	for _, prediction := range predictions {
		total.PredictionBonus += prediction.BonusPoints
	}

	total.PredictionBonus = scoring.Round2(total.PredictionBonus)
	total.GrandTotal = scoring.Round2(rosterSum + total.PredictionBonus)
	return total, nil
}

// Leaderboard assembles the season standings: every player holding a roster
// entry, ordered by grand total descending with ties broken by player id
// ascending. Ranks are sequential positions. A non-positive or oversized
// limit falls back to the configured maximum.
func (s *Service) Leaderboard(ctx context.Context, seasonID int64, limit int) ([]types.Entry, error) {
	start := time.Now()
	if limit <= 0 || limit > s.maxLeaderboardLimit {
		limit = s.maxLeaderboardLimit
	}

	playerIDs, err := s.store.SeasonPlayerIDs(ctx, seasonID)
	if err != nil {
		metrics.RecordLeaderboardError()
		return nil, err
	}

	entries := make([]types.Entry, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		player, err := s.store.Player(ctx, playerID)
		if err != nil {
			metrics.RecordLeaderboardError()
			return nil, err
		}
		total, err := s.PlayerTotal(ctx, playerID, seasonID)
		if err != nil {
			metrics.RecordLeaderboardError()
			return nil, err
		}
		entries = append(entries, types.Entry{
			PlayerID:        playerID,
			PlayerName:      player.DisplayName,
			IsCommissioner:  player.IsCommissioner,
			RosterBreakdown: total.RosterBreakdown,
			PredictionBonus: total.PredictionBonus,
			GrandTotal:      total.GrandTotal,
		})
	}

	// Player ids arrive ascending, so a stable sort on the total keeps the
	// id tie-break for free.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].GrandTotal > entries[j].GrandTotal
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	metrics.RecordLeaderboardBuild(float64(time.Since(start).Microseconds()) / 1000.0)
	return entries, nil
}

// SeedDefaultRules installs the canonical rule catalog for a season.
func (s *Service) SeedDefaultRules(ctx context.Context, seasonID int64) ([]model.ScoringRule, error) {
	defaults := rules.Default()
	created := make([]*model.ScoringRule, 0, len(defaults))
	for i := range defaults {
		rule := defaults[i]
		rule.SeasonID = seasonID
		created = append(created, &rule)
	}
	if err := s.store.CreateRules(ctx, created); err != nil {
		return nil, err
	}

	out := make([]model.ScoringRule, 0, len(created))
	for _, rule := range created {
		out = append(out, *rule)
	}
	s.logger.Info(ctx, "seeded default rules",
		logger.Int64("seasonID", seasonID),
		logger.Int("rules", len(out)),
	)
	return out, nil
}

// CopyRules clones one season's full rule catalog into another, preserving
// activity flags and ordering.
func (s *Service) CopyRules(ctx context.Context, fromSeasonID, toSeasonID int64) ([]model.ScoringRule, error) {
	source, err := s.store.Rules(ctx, fromSeasonID)
	if err != nil {
		return nil, err
	}

	copies := make([]*model.ScoringRule, 0, len(source))
	for _, rule := range source {
		clone := rule
		clone.ID = 0
		clone.SeasonID = toSeasonID
		copies = append(copies, &clone)
	}
	if err := s.store.CreateRules(ctx, copies); err != nil {
		return nil, err
	}

	out := make([]model.ScoringRule, 0, len(copies))
	for _, rule := range copies {
		out = append(out, *rule)
	}
	return out, nil
}

// CreateRule validates and installs one custom rule.
func (s *Service) CreateRule(ctx context.Context, rule *model.ScoringRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.store.CreateRule(ctx, rule)
}

// UpdateRule validates and rewrites a rule's editable fields.
func (s *Service) UpdateRule(ctx context.Context, rule *model.ScoringRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.store.UpdateRule(ctx, rule)
}

func validateRule(rule *model.ScoringRule) error {
	if rule.RuleName == "" {
		return fmt.Errorf("%w: rule name is required", ErrInvalidRule)
	}
	if !rule.Multiplier.Valid() {
		return fmt.Errorf("%w: unknown multiplier %q", ErrInvalidRule, rule.Multiplier)
	}
	if !rule.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidRule, rule.Phase)
	}
	return nil
}
