// Package types contains the read shapes returned by aggregate queries.
package types

import "github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"

// RosterSlot is one rostered castaway's contribution to a player's total.
type RosterSlot struct {
	CastawayID   int64            `json:"castaway_id"`
	CastawayName string           `json:"castaway_name"`
	PickupType   model.PickupType `json:"pickup_type"`
	TotalScore   float64          `json:"total_score"`
}

// PlayerTotal is a fantasy player's season total with its breakdown.
type PlayerTotal struct {
	FantasyPlayerID int64        `json:"fantasy_player_id"`
	RosterBreakdown []RosterSlot `json:"roster_breakdown"`
	PredictionBonus float64      `json:"prediction_bonus"`
	GrandTotal      float64      `json:"grand_total"`
}

// Entry represents a leaderboard row. Entries are ordered by grand total
// descending; ties receive distinct sequential ranks, player id ascending.
type Entry struct {
	Rank            int          `json:"rank"`
	PlayerID        int64        `json:"player_id"`
	PlayerName      string       `json:"player_name"`
	IsCommissioner  bool         `json:"is_commissioner"`
	RosterBreakdown []RosterSlot `json:"roster_breakdown"`
	PredictionBonus float64      `json:"prediction_bonus"`
	GrandTotal      float64      `json:"grand_total"`
}

// SweepResult reports the work done by a season recalculation sweep.
type SweepResult struct {
	EpisodesProcessed  int `json:"episodes_processed"`
	EventsRecalculated int `json:"events_recalculated"`
}

// EpisodeScores maps castaway id to that castaway's computed score for one
// episode, as returned by a full-episode submission.
type EpisodeScores map[int64]float64
