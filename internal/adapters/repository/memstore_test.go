package repository

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

func TestMemStoreSeasons(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := NewMemStore()

		Convey("When a season is created", func() {
			season := &model.Season{SeasonNumber: 47, Name: "Season 47", Status: model.SeasonSetup}
			err := store.CreateSeason(ctx, season)

			So(err, ShouldBeNil)
			So(season.ID, ShouldBeGreaterThan, 0)

			Convey("Then it can be read back", func() {
				got, err := store.Season(ctx, season.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Season 47")
			})

			Convey("And a duplicate season number conflicts", func() {
				dup := &model.Season{SeasonNumber: 47, Name: "Again"}
				So(errors.Is(store.CreateSeason(ctx, dup), ErrConflict), ShouldBeTrue)
			})

			Convey("And its status can be updated", func() {
				So(store.UpdateSeasonStatus(ctx, season.ID, model.SeasonActive), ShouldBeNil)
				got, _ := store.Season(ctx, season.ID)
				So(got.Status, ShouldEqual, model.SeasonActive)
			})
		})

		Convey("When a missing season is read", func() {
			_, err := store.Season(ctx, 99)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemStoreRules(t *testing.T) {
	Convey("Given a season with mixed rules", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		season := &model.Season{SeasonNumber: 1, Name: "One"}
		So(store.CreateSeason(ctx, season), ShouldBeNil)

		rules := []*model.ScoringRule{
			{SeasonID: season.ID, RuleKey: "immunity_win", RuleName: "Immunity", Points: 3, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 20},
			{SeasonID: season.ID, RuleKey: "survive_tribal", RuleName: "Survive", Points: 1, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: true, SortOrder: 10},
			{SeasonID: season.ID, RuleKey: "retired_rule", RuleName: "Retired", Points: 5, Multiplier: model.Binary, Phase: model.AnyPhase, IsActive: false, SortOrder: 5},
		}
		So(store.CreateRules(ctx, rules), ShouldBeNil)

		Convey("ActiveRules filters inactive rules and orders by sort order", func() {
			active, err := store.ActiveRules(ctx, season.ID)
			So(err, ShouldBeNil)
			So(len(active), ShouldEqual, 2)
			So(active[0].RuleKey, ShouldEqual, "survive_tribal")
			So(active[1].RuleKey, ShouldEqual, "immunity_win")
		})

		Convey("Rules returns everything including inactive", func() {
			all, err := store.Rules(ctx, season.ID)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 3)
			So(all[0].RuleKey, ShouldEqual, "retired_rule")
		})

		Convey("Duplicate rule keys in one season conflict", func() {
			dup := &model.ScoringRule{SeasonID: season.ID, RuleKey: "immunity_win", RuleName: "Dup", Multiplier: model.Binary, Phase: model.AnyPhase}
			So(errors.Is(store.CreateRule(ctx, dup), ErrConflict), ShouldBeTrue)
		})

		Convey("UpdateRule rewrites the editable fields", func() {
			rule := *rules[0]
			rule.Points = 4
			rule.IsActive = false
			So(store.UpdateRule(ctx, &rule), ShouldBeNil)

			got, err := store.Rule(ctx, rule.ID)
			So(err, ShouldBeNil)
			So(got.Points, ShouldEqual, 4)
			So(got.IsActive, ShouldBeFalse)
			// The key is immutable.
			So(got.RuleKey, ShouldEqual, "immunity_win")
		})

		Convey("Updating an unknown rule reports not found", func() {
			missing := &model.ScoringRule{ID: 999, RuleName: "ghost"}
			So(errors.Is(store.UpdateRule(ctx, missing), ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemStoreMergeSignal(t *testing.T) {
	Convey("Given a season whose merge lands on episode 7", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		season := &model.Season{SeasonNumber: 2, Name: "Two"}
		So(store.CreateSeason(ctx, season), ShouldBeNil)

		for n := 1; n <= 10; n++ {
			episode := &model.Episode{SeasonID: season.ID, EpisodeNumber: n, IsMerge: n == 7}
			So(store.CreateEpisode(ctx, episode), ShouldBeNil)
		}

		Convey("Episodes before the merge are pre-merge", func() {
			post, err := store.HasMergeAtOrBefore(ctx, season.ID, 6)
			So(err, ShouldBeNil)
			So(post, ShouldBeFalse)
		})

		Convey("The merge episode itself is post-merge", func() {
			post, err := store.HasMergeAtOrBefore(ctx, season.ID, 7)
			So(err, ShouldBeNil)
			So(post, ShouldBeTrue)
		})

		Convey("Episodes after the merge are post-merge", func() {
			post, err := store.HasMergeAtOrBefore(ctx, season.ID, 10)
			So(err, ShouldBeNil)
			So(post, ShouldBeTrue)
		})

		Convey("Another season's merge does not leak", func() {
			other := &model.Season{SeasonNumber: 3, Name: "Three"}
			So(store.CreateSeason(ctx, other), ShouldBeNil)
			post, err := store.HasMergeAtOrBefore(ctx, other.ID, 10)
			So(err, ShouldBeNil)
			So(post, ShouldBeFalse)
		})
	})
}

func TestMemStoreEvents(t *testing.T) {
	Convey("Given a castaway with an episode", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		season := &model.Season{SeasonNumber: 4, Name: "Four"}
		So(store.CreateSeason(ctx, season), ShouldBeNil)
		castaway := &model.Castaway{SeasonID: season.ID, Name: "Parvati"}
		So(store.CreateCastaway(ctx, castaway), ShouldBeNil)
		episode := &model.Episode{SeasonID: season.ID, EpisodeNumber: 1}
		So(store.CreateEpisode(ctx, episode), ShouldBeNil)

		Convey("UpsertEvent inserts on first call", func() {
			event := &model.CastawayEpisodeEvent{
				CastawayID: castaway.ID,
				EpisodeID:  episode.ID,
				EventData:  model.EventData{"survive_tribal": true},
			}
			So(store.UpsertEvent(ctx, event), ShouldBeNil)
			So(event.ID, ShouldBeGreaterThan, 0)
			So(event.CalculatedScore, ShouldBeNil)

			Convey("And updates in place on the second", func() {
				So(store.SetCalculatedScore(ctx, event.ID, 2.5), ShouldBeNil)

				again := &model.CastawayEpisodeEvent{
					CastawayID: castaway.ID,
					EpisodeID:  episode.ID,
					EventData:  model.EventData{"survive_tribal": true, "immunity_win": true},
					Notes:      "corrected",
				}
				So(store.UpsertEvent(ctx, again), ShouldBeNil)
				So(again.ID, ShouldEqual, event.ID)

				got, err := store.EventByPair(ctx, castaway.ID, episode.ID)
				So(err, ShouldBeNil)
				So(got.EventData["immunity_win"], ShouldEqual, true)
				So(got.Notes, ShouldEqual, "corrected")
				// The stale cached score survives until an explicit rescore.
				So(got.CalculatedScore, ShouldNotBeNil)
				So(*got.CalculatedScore, ShouldEqual, 2.5)
			})

			Convey("And mutating the caller's map does not leak into the store", func() {
				event.EventData["survive_tribal"] = false
				got, err := store.EventByPair(ctx, castaway.ID, episode.ID)
				So(err, ShouldBeNil)
				So(got.EventData["survive_tribal"], ShouldEqual, true)
			})
		})

		Convey("EventsForCastawaySeason orders by episode number", func() {
			later := &model.Episode{SeasonID: season.ID, EpisodeNumber: 2}
			So(store.CreateEpisode(ctx, later), ShouldBeNil)
			So(store.UpsertEvent(ctx, &model.CastawayEpisodeEvent{CastawayID: castaway.ID, EpisodeID: later.ID, EventData: model.EventData{}}), ShouldBeNil)
			So(store.UpsertEvent(ctx, &model.CastawayEpisodeEvent{CastawayID: castaway.ID, EpisodeID: episode.ID, EventData: model.EventData{}}), ShouldBeNil)

			events, err := store.EventsForCastawaySeason(ctx, castaway.ID, season.ID)
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 2)
			So(events[0].EpisodeID, ShouldEqual, episode.ID)
			So(events[1].EpisodeID, ShouldEqual, later.ID)
		})
	})
}

func TestMemStoreRosters(t *testing.T) {
	Convey("Given players with roster entries", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		season := &model.Season{SeasonNumber: 5, Name: "Five"}
		So(store.CreateSeason(ctx, season), ShouldBeNil)

		alice := &model.FantasyPlayer{Username: "alice", DisplayName: "Alice"}
		bob := &model.FantasyPlayer{Username: "bob", DisplayName: "Bob"}
		So(store.CreatePlayer(ctx, alice), ShouldBeNil)
		So(store.CreatePlayer(ctx, bob), ShouldBeNil)

		c1 := &model.Castaway{SeasonID: season.ID, Name: "Rob"}
		c2 := &model.Castaway{SeasonID: season.ID, Name: "Sandra"}
		So(store.CreateCastaway(ctx, c1), ShouldBeNil)
		So(store.CreateCastaway(ctx, c2), ShouldBeNil)

		So(store.CreateRosterEntry(ctx, &model.FantasyRoster{SeasonID: season.ID, FantasyPlayerID: bob.ID, CastawayID: c1.ID, PickupType: model.Draft, IsActive: true}), ShouldBeNil)
		So(store.CreateRosterEntry(ctx, &model.FantasyRoster{SeasonID: season.ID, FantasyPlayerID: alice.ID, CastawayID: c1.ID, PickupType: model.Draft, IsActive: true}), ShouldBeNil)
		entry := &model.FantasyRoster{SeasonID: season.ID, FantasyPlayerID: alice.ID, CastawayID: c2.ID, PickupType: model.FreeAgent, IsActive: true}
		So(store.CreateRosterEntry(ctx, entry), ShouldBeNil)

		Convey("ActiveRosterEntries returns only the player's live entries", func() {
			entries, err := store.ActiveRosterEntries(ctx, alice.ID, season.ID)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)

			So(store.DeactivateRosterEntry(ctx, entry.ID), ShouldBeNil)
			entries, err = store.ActiveRosterEntries(ctx, alice.ID, season.ID)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].CastawayID, ShouldEqual, c1.ID)
		})

		Convey("SeasonPlayerIDs is distinct and ascending", func() {
			ids, err := store.SeasonPlayerIDs(ctx, season.ID)
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []int64{alice.ID, bob.ID})
		})

		Convey("Duplicate roster pairs conflict", func() {
			dup := &model.FantasyRoster{SeasonID: season.ID, FantasyPlayerID: alice.ID, CastawayID: c1.ID}
			So(errors.Is(store.CreateRosterEntry(ctx, dup), ErrConflict), ShouldBeTrue)
		})
	})
}

func TestMemStorePredictions(t *testing.T) {
	Convey("Given an unresolved prediction", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		season := &model.Season{SeasonNumber: 6, Name: "Six"}
		So(store.CreateSeason(ctx, season), ShouldBeNil)
		player := &model.FantasyPlayer{Username: "carol", DisplayName: "Carol"}
		So(store.CreatePlayer(ctx, player), ShouldBeNil)
		castaway := &model.Castaway{SeasonID: season.ID, Name: "Tony"}
		So(store.CreateCastaway(ctx, castaway), ShouldBeNil)

		prediction := &model.Prediction{SeasonID: season.ID, FantasyPlayerID: player.ID, PredictionType: "season_winner", CastawayID: castaway.ID, BonusPoints: 10}
		So(store.CreatePrediction(ctx, prediction), ShouldBeNil)

		Convey("It does not count until resolved true", func() {
			correct, err := store.CorrectPredictions(ctx, player.ID, season.ID)
			So(err, ShouldBeNil)
			So(correct, ShouldBeEmpty)
		})

		Convey("Resolving it true surfaces the bonus", func() {
			So(store.ResolvePrediction(ctx, prediction.ID, true, 10), ShouldBeNil)
			correct, err := store.CorrectPredictions(ctx, player.ID, season.ID)
			So(err, ShouldBeNil)
			So(len(correct), ShouldEqual, 1)
			So(correct[0].BonusPoints, ShouldEqual, 10.0)
		})

		Convey("Resolving it false keeps it out", func() {
			So(store.ResolvePrediction(ctx, prediction.ID, false, 0), ShouldBeNil)
			correct, err := store.CorrectPredictions(ctx, player.ID, season.ID)
			So(err, ShouldBeNil)
			So(correct, ShouldBeEmpty)
		})
	})
}

func TestMemStoreRunInTx(t *testing.T) {
	Convey("Given a store with one season", t, func() {
		ctx := context.Background()
		store := NewMemStore()
		season := &model.Season{SeasonNumber: 7, Name: "Seven"}
		So(store.CreateSeason(ctx, season), ShouldBeNil)

		Convey("A failing transaction rolls its writes back", func() {
			boom := errors.New("boom")
			err := store.RunInTx(ctx, func(ctx context.Context, tx Store) error {
				if err := tx.UpdateSeasonStatus(ctx, season.ID, model.SeasonComplete); err != nil {
					return err
				}
				if err := tx.CreateCastaway(ctx, &model.Castaway{SeasonID: season.ID, Name: "Ghost"}); err != nil {
					return err
				}
				return boom
			})
			So(errors.Is(err, boom), ShouldBeTrue)

			got, _ := store.Season(ctx, season.ID)
			So(got.Status, ShouldEqual, model.SeasonSetup)
			castaways, _ := store.CastawaysBySeason(ctx, season.ID)
			So(castaways, ShouldBeEmpty)
		})

		Convey("A successful transaction keeps its writes", func() {
			err := store.RunInTx(ctx, func(ctx context.Context, tx Store) error {
				return tx.UpdateSeasonStatus(ctx, season.ID, model.SeasonActive)
			})
			So(err, ShouldBeNil)
			got, _ := store.Season(ctx, season.ID)
			So(got.Status, ShouldEqual, model.SeasonActive)
		})
	})
}
