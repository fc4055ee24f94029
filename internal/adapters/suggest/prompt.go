package suggest

import (
	"fmt"
	"strings"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

const systemPrompt = "You are a Survivor episode scoring assistant for a fantasy league. " +
	"You will be given a list of castaways, scoring rules, and episode context. " +
	"Respond with valid JSON only, with no markdown fences and no commentary outside the JSON."

// buildPrompt renders the user prompt from the episode's context. The rule
// list carries the exact rule_key vocabulary the model must answer in.
func buildPrompt(season model.Season, episode model.Episode, castaways []model.Castaway, rules []model.ScoringRule, recap string) string {
	var castawayLines []string
	for _, c := range castaways {
		tribe := c.CurrentTribe
		if tribe == "" {
			tribe = c.StartingTribe
		}
		if tribe == "" {
			tribe = "Unknown"
		}
		castawayLines = append(castawayLines, fmt.Sprintf("  - %s (tribe: %s, status: %s)", c.Name, tribe, c.Status))
	}

	var ruleLines []string
	for _, r := range rules {
		points := fmt.Sprintf("%+g", r.Points)
		line := fmt.Sprintf("  - rule_key: %q, name: %q, type: %s, phase: %s, points: %s",
			r.RuleKey, r.RuleName, r.Multiplier, r.Phase, points)
		if r.Description != "" {
			line += " - " + r.Description
		}
		ruleLines = append(ruleLines, line)
	}

	contextParts := []string{fmt.Sprintf("Season %d, Episode %d", season.SeasonNumber, episode.EpisodeNumber)}
	if episode.Title != "" {
		contextParts = append(contextParts, fmt.Sprintf("Title: %q", episode.Title))
	}
	if episode.IsMerge {
		contextParts = append(contextParts, "This is the MERGE episode")
	}
	if episode.IsFinale {
		contextParts = append(contextParts, "This is the FINALE episode")
	}

	recapSection := ""
	if strings.TrimSpace(recap) != "" {
		recapSection = fmt.Sprintf("\nEPISODE RECAP (use this as your primary source):\n%s\n", strings.TrimSpace(recap))
	}

	return fmt.Sprintf(`Score the following Survivor episode.

EPISODE: %s.

CASTAWAYS (active this episode):
%s

SCORING RULES (use these exact rule_key values):
%s
%s
INSTRUCTIONS:
- For each castaway, provide values for ALL rule_keys.
- Binary rules: use 1 (happened) or 0 (did not happen). Do NOT omit rules, output 0 if it did not happen.
- Per-instance rules: use the count (0 if none).
- For "confessional_count": estimate based on the recap if available, and flag it as low-confidence.
- If no recap is provided, make your best guess based on typical Survivor episode patterns and flag uncertain values.
- "survive_tribal" = 1 for everyone who was NOT voted out/eliminated this episode.
- Only the eliminated castaway(s) get survive_tribal = 0.

OUTPUT FORMAT (valid JSON, no markdown):
{
  "suggestions": [
    {
      "castaway_name": "Name",
      "events": {
        "rule_key": 0
      },
      "confidence_notes": {
        "rule_key": "reason this is uncertain"
      }
    }
  ],
  "episode_summary": "Brief 1-2 sentence summary of the episode",
  "eliminated": ["Name of eliminated castaway(s)"],
  "notes": "Any caveats about the scoring suggestions"
}`,
		strings.Join(contextParts, ". "),
		strings.Join(castawayLines, "\n"),
		strings.Join(ruleLines, "\n"),
		recapSection,
	)
}
