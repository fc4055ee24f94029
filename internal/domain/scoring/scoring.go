// Package scoring implements the event-score calculation: a pure function
// from one castaway's episode observations plus the season's active rules to
// a single number. All rule behavior is data-driven; changing the catalog
// changes the scores without code changes.
package scoring

import (
	"math"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// Round2 rounds to 2 decimals using round-half-to-even. This is the one
// rounding policy used everywhere a score or total crosses a boundary, so
// penny-level totals stay consistent between the calculator and the
// aggregators.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// CalculateEventScore computes the score for one castaway's episode events.
//
// The supplied rules must already be filtered to active ones (the catalog's
// contract). Rules outside the episode's merge phase are skipped. Keys in
// data that match no supplied rule contribute nothing, which lets retired
// rules' historical values persist harmlessly.
func CalculateEventScore(data model.EventData, rules []model.ScoringRule, isPostMerge bool) float64 {
	total := 0.0

	for _, rule := range rules {
		if !rule.Phase.Applies(isPostMerge) {
			continue
		}

		value := numericValue(data[rule.RuleKey])

		switch rule.Multiplier {
		case model.Binary:
			// Truthy means non-zero; magnitude is irrelevant.
			if value != 0 {
				total += rule.Points
			}
		case model.PerInstance:
			// Fractional counts are accepted, not rejected.
			total += rule.Points * value
		}
	}

	return Round2(total)
}

// numericValue coerces a raw event value to a float64, failing closed to 0
// on anything non-numeric. Event data arrives from JSON, so numbers usually
// show up as float64, but integers and booleans from other producers are
// accepted too.
func numericValue(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		// Malformed value under a rule key: treated as 0 so the total
		// stays computable.
		return 0
	}
}
