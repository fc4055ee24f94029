// Package model contains the league entities passed between layers.
package model

import (
	"time"

	"github.com/uptrace/bun"
)

// SeasonStatus is the lifecycle state of a season.
type SeasonStatus string

const (
	SeasonSetup    SeasonStatus = "setup"
	SeasonDrafting SeasonStatus = "drafting"
	SeasonActive   SeasonStatus = "active"
	SeasonComplete SeasonStatus = "complete"
)

// CastawayStatus tracks a castaway's state in the underlying show.
// It is commissioner-set display state; scoring is driven purely by
// per-episode event values and neither side derives the other.
type CastawayStatus string

const (
	CastawayActive     CastawayStatus = "active"
	CastawayEliminated CastawayStatus = "eliminated"
	CastawayEvacuated  CastawayStatus = "evacuated"
	CastawayQuit       CastawayStatus = "quit"
)

// Multiplier is the closed set of rule multiplier kinds.
type Multiplier string

const (
	// Binary rules contribute their points once when the event value is truthy.
	Binary Multiplier = "binary"
	// PerInstance rules contribute points * value.
	PerInstance Multiplier = "per_instance"
)

// Valid reports whether m is one of the known multiplier kinds.
func (m Multiplier) Valid() bool {
	switch m {
	case Binary, PerInstance:
		return true
	}
	return false
}

// Phase is the closed set of rule applicability windows.
type Phase string

const (
	PreMerge  Phase = "pre_merge"
	PostMerge Phase = "post_merge"
	AnyPhase  Phase = "any"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PreMerge, PostMerge, AnyPhase:
		return true
	}
	return false
}

// Applies reports whether a rule in phase p applies to an episode with the
// given merge status.
func (p Phase) Applies(isPostMerge bool) bool {
	switch p {
	case PreMerge:
		return !isPostMerge
	case PostMerge:
		return isPostMerge
	default:
		return true
	}
}

// PickupType records how a castaway entered a fantasy roster.
type PickupType string

const (
	Draft     PickupType = "draft"
	FreeAgent PickupType = "free_agent"
)

// Season is one competition instance. It owns its rules, castaways,
// episodes, rosters, and predictions; deleting it cascades to all of them.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:s"`

	ID           int64        `bun:"id,pk,autoincrement" json:"id"`
	SeasonNumber int          `bun:"season_number,notnull,unique" json:"season_number"`
	Name         string       `bun:"name,notnull" json:"name"`
	Status       SeasonStatus `bun:"status,notnull,default:'setup'" json:"status"`

	// Roster-shape constants configured by the commissioner.
	MaxRosterSize           int `bun:"max_roster_size,notnull,default:4" json:"max_roster_size"`
	FreeAgentPickupLimit    int `bun:"free_agent_pickup_limit,notnull,default:1" json:"free_agent_pickup_limit"`
	MaxTimesCastawayDrafted int `bun:"max_times_castaway_drafted,notnull,default:2" json:"max_times_castaway_drafted"`

	LogoURL   string    `bun:"logo_url,nullzero" json:"logo_url,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Castaway is a show contestant, unique by (season_id, name).
type Castaway struct {
	bun.BaseModel `bun:"table:castaways,alias:c"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	SeasonID int64  `bun:"season_id,notnull" json:"season_id"`
	Name     string `bun:"name,notnull" json:"name"`

	Age           int    `bun:"age,nullzero" json:"age,omitempty"`
	Occupation    string `bun:"occupation,nullzero" json:"occupation,omitempty"`
	StartingTribe string `bun:"starting_tribe,nullzero" json:"starting_tribe,omitempty"`
	CurrentTribe  string `bun:"current_tribe,nullzero" json:"current_tribe,omitempty"`

	Status CastawayStatus `bun:"status,notnull,default:'active'" json:"status"`
	// FinalPlacement is 1 for the winner; zero until determined.
	FinalPlacement int `bun:"final_placement,nullzero" json:"final_placement,omitempty"`
}

// Episode belongs to one season, unique by (season_id, episode_number).
// Episode ordering is the sole signal for merge-phase determination: an
// episode is post-merge iff some episode in the season with IsMerge set has
// an EpisodeNumber at or before this one's.
type Episode struct {
	bun.BaseModel `bun:"table:episodes,alias:e"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	SeasonID      int64     `bun:"season_id,notnull" json:"season_id"`
	EpisodeNumber int       `bun:"episode_number,notnull" json:"episode_number"`
	Title         string    `bun:"title,nullzero" json:"title,omitempty"`
	AirDate       time.Time `bun:"air_date,nullzero" json:"air_date,omitempty"`
	IsMerge       bool      `bun:"is_merge,notnull,default:false" json:"is_merge"`
	IsFinale      bool      `bun:"is_finale,notnull,default:false" json:"is_finale"`
	Notes         string    `bun:"notes,nullzero" json:"notes,omitempty"`
	// IsScored flips once the commissioner submits events for the episode.
	IsScored bool `bun:"is_scored,notnull,default:false" json:"is_scored"`
}

// ScoringRule is one named, point-valued, phase-scoped scoring criterion.
// Rules are data: commissioners add or edit them without code changes, and
// the engine reads whatever the catalog holds. Unique by (season_id, rule_key).
type ScoringRule struct {
	bun.BaseModel `bun:"table:scoring_rules,alias:r"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	SeasonID    int64      `bun:"season_id,notnull" json:"season_id"`
	RuleKey     string     `bun:"rule_key,notnull" json:"rule_key"`
	RuleName    string     `bun:"rule_name,notnull" json:"rule_name"`
	Points      float64    `bun:"points,notnull" json:"points"`
	Multiplier  Multiplier `bun:"multiplier,notnull" json:"multiplier"`
	Phase       Phase      `bun:"phase,notnull,default:'any'" json:"phase"`
	Description string     `bun:"description,nullzero" json:"description,omitempty"`
	// IsActive soft-disables a rule without losing its historical definition.
	IsActive  bool `bun:"is_active,notnull,default:true" json:"is_active"`
	SortOrder int  `bun:"sort_order,notnull,default:0" json:"sort_order"`
}

// EventData maps rule_key to an observed value: any truthy number for
// binary rules, a count for per-instance rules. Values arrive from JSON so
// they are held loosely typed; the calculator coerces them, failing closed
// to zero on anything non-numeric.
type EventData map[string]interface{}

// CastawayEpisodeEvent is the scoring unit: one castaway's observations for
// one episode, unique by (castaway_id, episode_id). CalculatedScore is the
// cached, derived score — the single source of truth for downstream
// aggregation. It is only ever written by explicit (re)scoring calls, never
// refreshed implicitly.
type CastawayEpisodeEvent struct {
	bun.BaseModel `bun:"table:castaway_episode_events,alias:ev"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	CastawayID int64     `bun:"castaway_id,notnull" json:"castaway_id"`
	EpisodeID  int64     `bun:"episode_id,notnull" json:"episode_id"`
	EventData  EventData `bun:"event_data,type:jsonb,notnull" json:"event_data"`

	// CalculatedScore is nil until the orchestrator first scores the event.
	CalculatedScore *float64 `bun:"calculated_score,nullzero" json:"calculated_score,omitempty"`

	Notes     string    `bun:"notes,nullzero" json:"notes,omitempty"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// FantasyPlayer is a registered league participant.
type FantasyPlayer struct {
	bun.BaseModel `bun:"table:fantasy_players,alias:p"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Username       string    `bun:"username,notnull,unique" json:"username"`
	DisplayName    string    `bun:"display_name,notnull" json:"display_name"`
	IsCommissioner bool      `bun:"is_commissioner,notnull,default:false" json:"is_commissioner"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// FantasyRoster links a fantasy player to a castaway within a season,
// unique by (season_id, fantasy_player_id, castaway_id). Deactivated
// entries stop contributing to aggregation without deleting history.
type FantasyRoster struct {
	bun.BaseModel `bun:"table:fantasy_rosters,alias:fr"`

	ID              int64      `bun:"id,pk,autoincrement" json:"id"`
	SeasonID        int64      `bun:"season_id,notnull" json:"season_id"`
	FantasyPlayerID int64      `bun:"fantasy_player_id,notnull" json:"fantasy_player_id"`
	CastawayID      int64      `bun:"castaway_id,notnull" json:"castaway_id"`
	PickupType      PickupType `bun:"pickup_type,notnull,default:'draft'" json:"pickup_type"`

	DraftPosition        int  `bun:"draft_position,nullzero" json:"draft_position,omitempty"`
	PickedUpAfterEpisode int  `bun:"picked_up_after_episode,nullzero" json:"picked_up_after_episode,omitempty"`
	IsActive             bool `bun:"is_active,notnull,default:true" json:"is_active"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Prediction is one player's pre-season guess of a given type for one
// castaway, unique by (season_id, fantasy_player_id, prediction_type).
// IsCorrect stays nil until a commissioner resolves it; only predictions
// resolved true contribute their bonus points.
type Prediction struct {
	bun.BaseModel `bun:"table:predictions,alias:pr"`

	ID              int64  `bun:"id,pk,autoincrement" json:"id"`
	SeasonID        int64  `bun:"season_id,notnull" json:"season_id"`
	FantasyPlayerID int64  `bun:"fantasy_player_id,notnull" json:"fantasy_player_id"`
	PredictionType  string `bun:"prediction_type,notnull" json:"prediction_type"`
	CastawayID      int64  `bun:"castaway_id,notnull" json:"castaway_id"`

	IsCorrect   *bool   `bun:"is_correct,nullzero" json:"is_correct,omitempty"`
	BonusPoints float64 `bun:"bonus_points,notnull,default:0" json:"bonus_points"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
