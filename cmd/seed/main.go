// Command seed provisions a demo league: a season with the default rule
// catalog, generated castaways, episodes, fantasy players with rosters, and
// randomized scored events. Useful for local development and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/repository"
	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/config"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/logger"
)

func main() {
	seasonNumber := flag.Int("season", 99, "season number to create")
	castawayCount := flag.Int("castaways", 18, "castaways to generate")
	episodeCount := flag.Int("episodes", 8, "episodes to generate and score")
	mergeEpisode := flag.Int("merge", 5, "episode number of the merge")
	playerCount := flag.Int("players", 6, "fantasy players to generate")
	rosterSize := flag.Int("roster", 3, "castaways per fantasy roster")
	seed := flag.Int64("seed", 0, "random seed (0 for nondeterministic)")
	dryRun := flag.Bool("dry-run", false, "seed an in-memory store and print the leaderboard without touching the database")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	ctx := context.Background()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	var store repository.Store
	if *dryRun {
		store = repository.NewMemStore()
	} else {
		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, "failed to load config", logger.Error(err))
			os.Exit(1)
		}
		bunStore, err := repository.NewBunStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Error(ctx, "failed to connect to database", logger.Error(err))
			os.Exit(1)
		}
		if err := bunStore.InitSchema(ctx); err != nil {
			log.Error(ctx, "failed to initialize schema", logger.Error(err))
			os.Exit(1)
		}
		store = bunStore
	}

	svc := service.New(store, service.WithLogger(log))
	if err := run(ctx, store, svc, seedParams{
		seasonNumber:  *seasonNumber,
		castawayCount: *castawayCount,
		episodeCount:  *episodeCount,
		mergeEpisode:  *mergeEpisode,
		playerCount:   *playerCount,
		rosterSize:    *rosterSize,
	}); err != nil {
		log.Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}

type seedParams struct {
	seasonNumber  int
	castawayCount int
	episodeCount  int
	mergeEpisode  int
	playerCount   int
	rosterSize    int
}

func run(ctx context.Context, store repository.Store, svc *service.Service, p seedParams) error {
	log := logger.Get()

	season := &model.Season{
		SeasonNumber:  p.seasonNumber,
		Name:          fmt.Sprintf("Demo Season %d", p.seasonNumber),
		Status:        model.SeasonActive,
		MaxRosterSize: p.rosterSize,
	}
	if err := store.CreateSeason(ctx, season); err != nil {
		return fmt.Errorf("create season: %w", err)
	}
	log.Info(ctx, "created season", logger.Int64("seasonID", season.ID))

	rules, err := svc.SeedDefaultRules(ctx, season.ID)
	if err != nil {
		return fmt.Errorf("seed rules: %w", err)
	}

	tribes := []string{"Luzon", "Solana", "Aparri"}
	castaways := make([]*model.Castaway, 0, p.castawayCount)
	for i := 0; i < p.castawayCount; i++ {
		castaway := &model.Castaway{
			SeasonID:      season.ID,
			Name:          gofakeit.Name(),
			Age:           gofakeit.Number(21, 60),
			Occupation:    gofakeit.JobTitle(),
			StartingTribe: tribes[i%len(tribes)],
			Status:        model.CastawayActive,
		}
		castaway.CurrentTribe = castaway.StartingTribe
		if err := store.CreateCastaway(ctx, castaway); err != nil {
			return fmt.Errorf("create castaway: %w", err)
		}
		castaways = append(castaways, castaway)
	}

	players := make([]*model.FantasyPlayer, 0, p.playerCount)
	for i := 0; i < p.playerCount; i++ {
		player := &model.FantasyPlayer{
			Username:       fmt.Sprintf("%s%d", gofakeit.Username(), i),
			DisplayName:    gofakeit.FirstName(),
			IsCommissioner: i == 0,
		}
		if err := store.CreatePlayer(ctx, player); err != nil {
			return fmt.Errorf("create player: %w", err)
		}
		players = append(players, player)
	}

	// Snake-draft the rosters.
	pick := 0
	for round := 0; round < p.rosterSize; round++ {
		for i, player := range players {
			if pick >= len(castaways) {
				break
			}
			entry := &model.FantasyRoster{
				SeasonID:        season.ID,
				FantasyPlayerID: player.ID,
				CastawayID:      castaways[pick].ID,
				PickupType:      model.Draft,
				DraftPosition:   round*len(players) + i + 1,
				IsActive:        true,
			}
			if err := store.CreateRosterEntry(ctx, entry); err != nil {
				return fmt.Errorf("create roster entry: %w", err)
			}
			pick++
		}
	}

	// Everyone predicts a winner.
	for _, player := range players {
		prediction := &model.Prediction{
			SeasonID:        season.ID,
			FantasyPlayerID: player.ID,
			PredictionType:  "season_winner",
			CastawayID:      castaways[gofakeit.Number(0, len(castaways)-1)].ID,
			BonusPoints:     10,
		}
		if err := store.CreatePrediction(ctx, prediction); err != nil {
			return fmt.Errorf("create prediction: %w", err)
		}
	}

	// Play out the episodes: one elimination per episode, random events for
	// the rest.
	remaining := append([]*model.Castaway(nil), castaways...)
	for n := 1; n <= p.episodeCount; n++ {
		episode := &model.Episode{
			SeasonID:      season.ID,
			EpisodeNumber: n,
			Title:         gofakeit.Sentence(3),
			IsMerge:       n == p.mergeEpisode,
			IsFinale:      n == p.episodeCount,
		}
		if err := store.CreateEpisode(ctx, episode); err != nil {
			return fmt.Errorf("create episode: %w", err)
		}

		eliminated := gofakeit.Number(0, len(remaining)-1)
		events := make(map[int64]model.EventData, len(remaining))
		for i, castaway := range remaining {
			events[castaway.ID] = randomEvents(rules, i != eliminated)
		}
		if _, err := svc.SubmitFullEpisode(ctx, episode.ID, events); err != nil {
			return fmt.Errorf("score episode %d: %w", n, err)
		}

		remaining = append(remaining[:eliminated], remaining[eliminated+1:]...)
		log.Info(ctx, "scored episode", logger.Int("episode", n), logger.Int("remaining", len(remaining)))
	}

	entries, err := svc.Leaderboard(ctx, season.ID, 0)
	if err != nil {
		return fmt.Errorf("build leaderboard: %w", err)
	}
	for _, entry := range entries {
		fmt.Printf("%2d. %-20s %8.2f\n", entry.Rank, entry.PlayerName, entry.GrandTotal)
	}
	return nil
}

// randomEvents rolls a plausible event grid for one castaway. Survivors get
// survive_tribal; a few binary and per-instance rules fire at random.
func randomEvents(rules []model.ScoringRule, survived bool) model.EventData {
	events := model.EventData{}
	if survived {
		events["survive_tribal"] = 1
	} else {
		events["survive_tribal"] = 0
	}
	for _, rule := range rules {
		if rule.RuleKey == "survive_tribal" {
			continue
		}
		switch rule.Multiplier {
		case model.Binary:
			// Most binary events are rare.
			if gofakeit.Number(1, 10) == 1 {
				events[rule.RuleKey] = 1
			}
		case model.PerInstance:
			if gofakeit.Bool() {
				events[rule.RuleKey] = gofakeit.Number(0, 5)
			}
		}
	}
	return events
}
