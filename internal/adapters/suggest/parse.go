package suggest

import (
	"strings"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/rules"
)

// parseSuggestions validates a raw model reply against the known castaways
// and rule catalog. Unknown castaways are dropped, unknown rule keys are
// filtered, binary values are clamped to 0/1, per-instance values to
// non-negative whole counts, and anything non-numeric fails closed to 0.
func parseSuggestions(raw rawResponse, castaways []model.Castaway, active []model.ScoringRule) []Suggestion {
	nameToCastaway := make(map[string]model.Castaway, len(castaways))
	for _, c := range castaways {
		nameToCastaway[strings.ToLower(c.Name)] = c
	}

	validKeys := rules.KeySet(active)
	binaryKeys := rules.BinaryKeySet(active)

	var results []Suggestion
	for _, suggestion := range raw.Suggestions {
		castaway, ok := matchCastaway(suggestion.CastawayName, nameToCastaway)
		if !ok {
			continue
		}

		events := make(model.EventData, len(suggestion.Events))
		for ruleKey, value := range suggestion.Events {
			if _, known := validKeys[ruleKey]; !known {
				continue
			}
			val := coerceNumeric(value)
			if _, binary := binaryKeys[ruleKey]; binary {
				if val != 0 {
					val = 1
				}
			} else {
				val = float64(int(val))
				if val < 0 {
					val = 0
				}
			}
			events[ruleKey] = val
		}

		notes := make(map[string]string)
		for ruleKey, note := range suggestion.ConfidenceNotes {
			if _, known := validKeys[ruleKey]; known {
				notes[ruleKey] = note
			}
		}
		// Confessional counts are estimates at best.
		if _, ok := events["confessional_count"]; ok {
			if _, flagged := notes["confessional_count"]; !flagged {
				notes["confessional_count"] = "Estimated, verify manually"
			}
		}

		results = append(results, Suggestion{
			CastawayID:      castaway.ID,
			CastawayName:    castaway.Name,
			EventData:       events,
			ConfidenceNotes: notes,
		})
	}
	return results
}

// matchCastaway resolves a model-emitted name to a known castaway, falling
// back to substring matching when the model used a first name or partial.
func matchCastaway(rawName string, nameToCastaway map[string]model.Castaway) (model.Castaway, bool) {
	lower := strings.ToLower(strings.TrimSpace(rawName))
	if lower == "" {
		return model.Castaway{}, false
	}
	if castaway, ok := nameToCastaway[lower]; ok {
		return castaway, true
	}
	for name, castaway := range nameToCastaway {
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return castaway, true
		}
	}
	return model.Castaway{}, false
}

func coerceNumeric(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return 0
	}
}
