package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/repository"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testCatalog() ([]model.Castaway, []model.ScoringRule) {
	castaways := []model.Castaway{
		{ID: 1, Name: "Parvati Shallow", Status: model.CastawayActive},
		{ID: 2, Name: "Sandra Diaz-Twine", Status: model.CastawayActive},
	}
	rules := []model.ScoringRule{
		{ID: 1, RuleKey: "survive_tribal", RuleName: "Survived Tribal", Points: 1, Multiplier: model.Binary, Phase: model.AnyPhase},
		{ID: 2, RuleKey: "confessional_count", RuleName: "Confessionals", Points: 0.25, Multiplier: model.PerInstance, Phase: model.AnyPhase},
	}
	return castaways, rules
}

func TestParseSuggestions(t *testing.T) {
	Convey("Given a raw model reply", t, func() {
		castaways, rules := testCatalog()

		Convey("Exact names resolve and values pass through", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Parvati Shallow",
				Events:       map[string]interface{}{"survive_tribal": float64(1), "confessional_count": float64(3)},
			}}}
			out := parseSuggestions(raw, castaways, rules)
			So(len(out), ShouldEqual, 1)
			So(out[0].CastawayID, ShouldEqual, 1)
			So(out[0].EventData["survive_tribal"], ShouldEqual, 1.0)
			So(out[0].EventData["confessional_count"], ShouldEqual, 3.0)
		})

		Convey("First names match by substring", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Sandra",
				Events:       map[string]interface{}{"survive_tribal": float64(1)},
			}}}
			out := parseSuggestions(raw, castaways, rules)
			So(len(out), ShouldEqual, 1)
			So(out[0].CastawayName, ShouldEqual, "Sandra Diaz-Twine")
		})

		Convey("Unknown castaways are dropped", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Jeff Probst",
				Events:       map[string]interface{}{"survive_tribal": float64(1)},
			}}}
			So(parseSuggestions(raw, castaways, rules), ShouldBeEmpty)
		})

		Convey("Unknown rule keys are filtered", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Parvati Shallow",
				Events:       map[string]interface{}{"invented_rule": float64(5), "survive_tribal": float64(1)},
			}}}
			out := parseSuggestions(raw, castaways, rules)
			So(out[0].EventData, ShouldNotContainKey, "invented_rule")
			So(out[0].EventData, ShouldContainKey, "survive_tribal")
		})

		Convey("Binary values clamp to 0 or 1", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Parvati Shallow",
				Events:       map[string]interface{}{"survive_tribal": float64(7)},
			}}}
			out := parseSuggestions(raw, castaways, rules)
			So(out[0].EventData["survive_tribal"], ShouldEqual, 1.0)
		})

		Convey("Per-instance values clamp to non-negative whole counts", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Parvati Shallow",
				Events:       map[string]interface{}{"confessional_count": float64(-2)},
			}}}
			out := parseSuggestions(raw, castaways, rules)
			So(out[0].EventData["confessional_count"], ShouldEqual, 0.0)
		})

		Convey("Non-numeric values fail closed to 0", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Parvati Shallow",
				Events:       map[string]interface{}{"confessional_count": "several"},
			}}}
			out := parseSuggestions(raw, castaways, rules)
			So(out[0].EventData["confessional_count"], ShouldEqual, 0.0)
		})

		Convey("Confessional counts are always flagged low-confidence", func() {
			raw := rawResponse{Suggestions: []rawSuggestion{{
				CastawayName: "Parvati Shallow",
				Events:       map[string]interface{}{"confessional_count": float64(4)},
			}}}
			out := parseSuggestions(raw, castaways, rules)
			So(out[0].ConfidenceNotes, ShouldContainKey, "confessional_count")
		})
	})
}

func TestStripCodeFences(t *testing.T) {
	Convey("Code fences are stripped when present", t, func() {
		So(stripCodeFences("```json\n{\"a\":1}\n```"), ShouldEqual, `{"a":1}`)
		So(stripCodeFences("```\n{\"a\":1}\n```"), ShouldEqual, `{"a":1}`)
		So(stripCodeFences(`{"a":1}`), ShouldEqual, `{"a":1}`)
	})
}

func suggesterFixture(t *testing.T, endpoint string) (*Suggester, int64, int64) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemStore()

	season := &model.Season{SeasonNumber: 40, Name: "Winners at War"}
	if err := store.CreateSeason(ctx, season); err != nil {
		t.Fatal(err)
	}
	episode := &model.Episode{SeasonID: season.ID, EpisodeNumber: 5, Title: "The Buddy System"}
	if err := store.CreateEpisode(ctx, episode); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateCastaway(ctx, &model.Castaway{SeasonID: season.ID, Name: "Parvati Shallow"}); err != nil {
		t.Fatal(err)
	}
	rules := []*model.ScoringRule{
		{SeasonID: season.ID, RuleKey: "survive_tribal", RuleName: "Survived Tribal", Points: 1, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true},
	}
	if err := store.CreateRules(ctx, rules); err != nil {
		t.Fatal(err)
	}

	client := NewClient("test-key", WithEndpoint(endpoint), WithTimeout(2*time.Second))
	return NewSuggester(store, client, nil), season.ID, episode.ID
}

func TestSuggesterSuggest(t *testing.T) {
	Convey("Given a model that returns a fenced suggestion document", t, func() {
		document := `{
			"suggestions": [{"castaway_name": "Parvati", "events": {"survive_tribal": 1}}],
			"episode_summary": "Parvati survives.",
			"eliminated": ["Nobody"],
			"notes": "low recap detail"
		}`
		var gotAPIKey, gotVersion string
		var gotReq messagesRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAPIKey = r.Header.Get("X-Api-Key")
			gotVersion = r.Header.Get("Anthropic-Version")
			_ = json.NewDecoder(r.Body).Decode(&gotReq)

			resp := messagesResponse{Content: []contentBlock{{Type: "text", Text: "```json\n" + document + "\n```"}}}
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		suggester, seasonID, episodeID := suggesterFixture(t, server.URL)

		Convey("Suggest returns validated suggestions", func() {
			result, err := suggester.Suggest(context.Background(), seasonID, episodeID, "Parvati dominated the episode")
			So(err, ShouldBeNil)
			So(result.RequestID, ShouldNotBeEmpty)
			So(result.EpisodeNumber, ShouldEqual, 5)
			So(len(result.Suggestions), ShouldEqual, 1)
			So(result.Suggestions[0].CastawayName, ShouldEqual, "Parvati Shallow")
			So(result.EpisodeSummary, ShouldEqual, "Parvati survives.")

			So(gotAPIKey, ShouldEqual, "test-key")
			So(gotVersion, ShouldEqual, APIVersion)
			So(gotReq.System, ShouldContainSubstring, "scoring assistant")
			So(gotReq.Messages[0].Content, ShouldContainSubstring, "survive_tribal")
		})
	})

	Convey("Given a model that returns garbage", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			resp := messagesResponse{Content: []contentBlock{{Type: "text", Text: "I cannot score this episode."}}}
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		suggester, seasonID, episodeID := suggesterFixture(t, server.URL)

		Convey("Suggest reports an unparsable response", func() {
			_, err := suggester.Suggest(context.Background(), seasonID, episodeID, "")
			So(errors.Is(err, ErrUnparsable), ShouldBeTrue)
		})
	})

	Convey("Given an upstream failure", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
		}))
		defer server.Close()

		suggester, seasonID, episodeID := suggesterFixture(t, server.URL)

		Convey("Suggest reports the upstream error", func() {
			_, err := suggester.Suggest(context.Background(), seasonID, episodeID, "")
			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
		})
	})

	Convey("Given a stalled upstream", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer server.Close()

		store := repository.NewMemStore()
		ctx := context.Background()
		season := &model.Season{SeasonNumber: 41, Name: "Forty-One"}
		So(store.CreateSeason(ctx, season), ShouldBeNil)
		episode := &model.Episode{SeasonID: season.ID, EpisodeNumber: 1}
		So(store.CreateEpisode(ctx, episode), ShouldBeNil)

		client := NewClient("test-key", WithEndpoint(server.URL), WithTimeout(50*time.Millisecond))
		suggester := NewSuggester(store, client, nil)

		Convey("Suggest reports a timeout", func() {
			_, err := suggester.Suggest(ctx, season.ID, episode.ID, "")
			So(errors.Is(err, ErrTimeout), ShouldBeTrue)
		})
	})

	Convey("Given no API key", t, func() {
		suggester, seasonID, episodeID := suggesterFixture(t, "http://unreachable.invalid")
		disabled := NewSuggester(suggester.store, NewClient(""), nil)

		Convey("Suggest reports the feature disabled", func() {
			_, err := disabled.Suggest(context.Background(), seasonID, episodeID, "")
			So(errors.Is(err, ErrDisabled), ShouldBeTrue)
		})
	})
}
