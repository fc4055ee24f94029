package suggest

import "github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"

// messagesRequest is the Anthropic Messages API request format.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

// message is one conversation turn.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic Messages API response format.
type messagesResponse struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
	Model   string         `json:"model"`
	Usage   usage          `json:"usage"`
}

// contentBlock is one block of response content.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// usage reports token consumption.
type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// rawResponse is the JSON document the model is instructed to produce.
type rawResponse struct {
	Suggestions    []rawSuggestion `json:"suggestions"`
	EpisodeSummary string          `json:"episode_summary"`
	Eliminated     []string        `json:"eliminated"`
	Notes          string          `json:"notes"`
}

// rawSuggestion is one castaway's suggested scoring grid as the model
// emitted it, before validation.
type rawSuggestion struct {
	CastawayName    string                 `json:"castaway_name"`
	Events          map[string]interface{} `json:"events"`
	ConfidenceNotes map[string]string      `json:"confidence_notes"`
}

// Suggestion is one validated, castaway-resolved scoring suggestion. Event
// values are already clamped: binary rules to 0 or 1, per-instance rules to
// non-negative counts.
type Suggestion struct {
	CastawayID      int64             `json:"castaway_id"`
	CastawayName    string            `json:"castaway_name"`
	EventData       model.EventData   `json:"event_data"`
	ConfidenceNotes map[string]string `json:"confidence_notes"`
}

// Result is a full set of suggestions for one episode, ready for the
// commissioner to review and adjust before submitting.
type Result struct {
	RequestID      string       `json:"request_id"`
	EpisodeID      int64        `json:"episode_id"`
	EpisodeNumber  int          `json:"episode_number"`
	Suggestions    []Suggestion `json:"suggestions"`
	EpisodeSummary string       `json:"episode_summary"`
	Eliminated     []string     `json:"eliminated"`
	Notes          string       `json:"notes"`
}
