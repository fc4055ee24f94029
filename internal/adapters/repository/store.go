// Package repository defines the abstract read/write contract the scoring
// engine is specified against, and its Postgres and in-memory
// implementations.
package repository

import (
	"context"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// Store provides entity access for the scoring engine and its callers. The
// engine assumes referential validity of the ids it is handed; lookups for
// missing entities return ErrNotFound.
type Store interface {
	// Seasons.
	Season(ctx context.Context, id int64) (model.Season, error)
	CreateSeason(ctx context.Context, season *model.Season) error
	UpdateSeasonStatus(ctx context.Context, id int64, status model.SeasonStatus) error

	// Rule catalog. ActiveRules is the only rule view the scoring path
	// consumes: is_active rows ordered by sort_order, then id.
	ActiveRules(ctx context.Context, seasonID int64) ([]model.ScoringRule, error)
	Rules(ctx context.Context, seasonID int64) ([]model.ScoringRule, error)
	Rule(ctx context.Context, id int64) (model.ScoringRule, error)
	CreateRule(ctx context.Context, rule *model.ScoringRule) error
	CreateRules(ctx context.Context, rules []*model.ScoringRule) error
	UpdateRule(ctx context.Context, rule *model.ScoringRule) error

	// Castaways.
	Castaway(ctx context.Context, id int64) (model.Castaway, error)
	CastawaysBySeason(ctx context.Context, seasonID int64) ([]model.Castaway, error)
	ActiveCastaways(ctx context.Context, seasonID int64) ([]model.Castaway, error)
	CreateCastaway(ctx context.Context, castaway *model.Castaway) error

	// Episodes, ordered by episode_number where listed.
	Episode(ctx context.Context, id int64) (model.Episode, error)
	EpisodesBySeason(ctx context.Context, seasonID int64) ([]model.Episode, error)
	CreateEpisode(ctx context.Context, episode *model.Episode) error
	MarkEpisodeScored(ctx context.Context, episodeID int64) error
	// HasMergeAtOrBefore reports whether any merge-flagged episode exists in
	// the season with episode_number <= n. This existence test is the sole
	// merge-phase signal; it deliberately tolerates multiple merge flags.
	HasMergeAtOrBefore(ctx context.Context, seasonID int64, episodeNumber int) (bool, error)

	// Events.
	Event(ctx context.Context, id int64) (model.CastawayEpisodeEvent, error)
	EventByPair(ctx context.Context, castawayID, episodeID int64) (model.CastawayEpisodeEvent, error)
	EventsByEpisode(ctx context.Context, episodeID int64) ([]model.CastawayEpisodeEvent, error)
	EventsForCastawaySeason(ctx context.Context, castawayID, seasonID int64) ([]model.CastawayEpisodeEvent, error)
	// UpsertEvent inserts or updates by the (castaway_id, episode_id)
	// unique pair, refreshing event_data and notes. The event's ID is
	// populated on return.
	UpsertEvent(ctx context.Context, event *model.CastawayEpisodeEvent) error
	// SetCalculatedScore writes the cached score. This is the only path
	// that ever touches calculated_score.
	SetCalculatedScore(ctx context.Context, eventID int64, score float64) error

	// Fantasy players, rosters, predictions.
	Player(ctx context.Context, id int64) (model.FantasyPlayer, error)
	CreatePlayer(ctx context.Context, player *model.FantasyPlayer) error
	ActiveRosterEntries(ctx context.Context, playerID, seasonID int64) ([]model.FantasyRoster, error)
	CreateRosterEntry(ctx context.Context, entry *model.FantasyRoster) error
	DeactivateRosterEntry(ctx context.Context, entryID int64) error
	// SeasonPlayerIDs returns the distinct fantasy players holding at least
	// one roster entry in the season, id ascending.
	SeasonPlayerIDs(ctx context.Context, seasonID int64) ([]int64, error)
	CreatePrediction(ctx context.Context, prediction *model.Prediction) error
	ResolvePrediction(ctx context.Context, id int64, correct bool, bonusPoints float64) error
	// CorrectPredictions returns the player's predictions resolved true.
	CorrectPredictions(ctx context.Context, playerID, seasonID int64) ([]model.Prediction, error)

	// RunInTx executes fn against a transactional view of the store. The
	// recalculation sweep runs inside one transaction so a mid-sweep
	// failure leaves no half-rescored season behind.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
