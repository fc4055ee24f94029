// Package rules holds rule-catalog semantics: the canonical default rule
// set seeded for new seasons and helpers over an active rule list. Every
// consumer of "which keys are valid" goes through these helpers against the
// catalog's active-rules view rather than re-deriving its own key set.
package rules

import (
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// Default returns the canonical rule set for a new season. Commissioners
// tweak individual rules afterwards through the API; nothing here is load
// bearing beyond being a sensible starting point.
func Default() []model.ScoringRule {
	return []model.ScoringRule{
		{RuleKey: "survive_tribal", RuleName: "Survive Tribal Council", Points: 1.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 1},
		{RuleKey: "tribe_reward_win", RuleName: "Tribe Reward Win", Points: 1.0, Multiplier: model.Binary, Phase: model.PreMerge, IsActive: true, SortOrder: 2},
		{RuleKey: "tribe_reward_2nd", RuleName: "Tribe 2nd Place Reward", Points: 0.5, Multiplier: model.Binary, Phase: model.PreMerge, IsActive: true, SortOrder: 3},
		{RuleKey: "tribe_immunity_1st", RuleName: "Tribe Win Immunity (1st Place)", Points: 2.0, Multiplier: model.Binary, Phase: model.PreMerge, IsActive: true, SortOrder: 4},
		{RuleKey: "tribe_immunity_2nd", RuleName: "Tribe Win Immunity (2nd Place)", Points: 1.0, Multiplier: model.Binary, Phase: model.PreMerge, IsActive: true, SortOrder: 5},
		{RuleKey: "confessional_count", RuleName: "Confessional Count", Points: 0.25, Multiplier: model.PerInstance, Phase: model.AnyPhase, IsActive: true, SortOrder: 6},
		{RuleKey: "obtain_advantage", RuleName: "Obtain Advantage", Points: 2.0, Multiplier: model.PerInstance, Phase: model.AnyPhase, IsActive: true, SortOrder: 7},
		{RuleKey: "used_advantage_correctly", RuleName: "Used Advantage Correctly", Points: 2.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 8},
		{RuleKey: "go_home_with_advantage", RuleName: "Go Home with Advantage", Points: -1.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 9},
		{RuleKey: "played_advantage_incorrectly", RuleName: "Played Advantage Incorrectly", Points: -0.5, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 10},
		{RuleKey: "obtain_immunity_idol", RuleName: "Obtain Immunity Idol", Points: 5.0, Multiplier: model.Binary, Phase: model.AnyPhase, Description: "Can't get duplicate points for the same idol", IsActive: true, SortOrder: 11},
		{RuleKey: "play_idol_correctly", RuleName: "Play Immunity Idol Correctly", Points: 5.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 12},
		{RuleKey: "go_home_with_immunity", RuleName: "Go Home with Immunity Idol", Points: -4.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 13},
		{RuleKey: "played_idol_incorrectly", RuleName: "Played Idol Incorrectly", Points: -2.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 14},
		{RuleKey: "played_sitd", RuleName: "Played Shot in the Dark", Points: 1.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 15},
		{RuleKey: "successful_sitd", RuleName: "Successful SITD", Points: 5.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 16},
		{RuleKey: "make_merge", RuleName: "Make Merge", Points: 2.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 17},
		{RuleKey: "picked_for_reward", RuleName: "Picked for Post-Merge Reward", Points: 0.5, Multiplier: model.PerInstance, Phase: model.PostMerge, IsActive: true, SortOrder: 18},
		{RuleKey: "solo_reward_win", RuleName: "Post-Merge Solo Reward Win", Points: 2.0, Multiplier: model.PerInstance, Phase: model.PostMerge, IsActive: true, SortOrder: 19},
		{RuleKey: "individual_immunity_win", RuleName: "Post-Merge Immunity Win", Points: 5.0, Multiplier: model.PerInstance, Phase: model.PostMerge, IsActive: true, SortOrder: 20},
		{RuleKey: "overall_winner", RuleName: "Overall Winner", Points: 25.0, Multiplier: model.Binary, Phase: model.PostMerge, IsActive: true, SortOrder: 21},
		{RuleKey: "runner_up", RuleName: "Runner-Up", Points: 12.0, Multiplier: model.Binary, Phase: model.PostMerge, IsActive: true, SortOrder: 22},
		{RuleKey: "third_place", RuleName: "3rd Place", Points: 6.0, Multiplier: model.Binary, Phase: model.PostMerge, IsActive: true, SortOrder: 23},
		{RuleKey: "fourth_place", RuleName: "4th Place", Points: 3.0, Multiplier: model.Binary, Phase: model.PostMerge, IsActive: true, SortOrder: 24},
		{RuleKey: "fifth_place", RuleName: "5th Place", Points: 1.5, Multiplier: model.Binary, Phase: model.PostMerge, IsActive: true, SortOrder: 25},
		{RuleKey: "first_boot_pick_correct", RuleName: "Pre-season First Boot Pick Right", Points: 5.0, Multiplier: model.Binary, Phase: model.PreMerge, IsActive: true, SortOrder: 26},
		{RuleKey: "evacuated", RuleName: "Evacuated", Points: -7.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 27},
		{RuleKey: "quit", RuleName: "Voluntarily Leave (Quit)", Points: -15.0, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 28},
		{RuleKey: "win_fire_making", RuleName: "Win End of Season Fire Making", Points: 5.0, Multiplier: model.Binary, Phase: model.PostMerge, IsActive: true, SortOrder: 29},
		{RuleKey: "go_on_journey", RuleName: "Go on a Journey", Points: 1.0, Multiplier: model.PerInstance, Phase: model.AnyPhase, IsActive: true, SortOrder: 30},
	}
}

// KeySet returns the set of rule keys present in rules.
func KeySet(rules []model.ScoringRule) map[string]struct{} {
	keys := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		keys[r.RuleKey] = struct{}{}
	}
	return keys
}

// BinaryKeySet returns the set of keys belonging to binary rules.
func BinaryKeySet(rules []model.ScoringRule) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, r := range rules {
		if r.Multiplier == model.Binary {
			keys[r.RuleKey] = struct{}{}
		}
	}
	return keys
}
