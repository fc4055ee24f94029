package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/metrics"
)

// BunStore implements Store on Postgres via bun.
type BunStore struct {
	db   bun.IDB
	root *bun.DB
}

// NewBunStore connects to Postgres with the given DSN and returns a ready
// store.
func NewBunStore(ctx context.Context, dsn string) (*BunStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	return &BunStore{db: db, root: db}, nil
}

// NewBunStoreFromDB wraps an existing bun.DB, mainly for tests.
func NewBunStoreFromDB(db *bun.DB) *BunStore {
	return &BunStore{db: db, root: db}
}

// InitSchema creates the tables and unique indexes if they do not exist.
// Seasons own their children: every season_id foreign key cascades on
// delete.
func (s *BunStore) InitSchema(ctx context.Context) error {
	models := []interface{}{
		(*model.Season)(nil),
		(*model.FantasyPlayer)(nil),
		(*model.Castaway)(nil),
		(*model.Episode)(nil),
		(*model.ScoringRule)(nil),
		(*model.CastawayEpisodeEvent)(nil),
		(*model.FantasyRoster)(nil),
		(*model.Prediction)(nil),
	}
	cascades := map[interface{}][]string{
		(*model.Castaway)(nil):    {`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`},
		(*model.Episode)(nil):     {`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`},
		(*model.ScoringRule)(nil): {`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`},
		(*model.CastawayEpisodeEvent)(nil): {
			`("castaway_id") REFERENCES "castaways" ("id") ON DELETE CASCADE`,
			`("episode_id") REFERENCES "episodes" ("id") ON DELETE CASCADE`,
		},
		(*model.FantasyRoster)(nil): {`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`},
		(*model.Prediction)(nil):    {`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`},
	}

	for _, m := range models {
		q := s.db.NewCreateTable().Model(m).IfNotExists()
		for _, fk := range cascades[m] {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}

	uniques := []struct {
		name    string
		model   interface{}
		columns string
	}{
		{"uq_castaway_season_name", (*model.Castaway)(nil), "season_id, name"},
		{"uq_episode_season_number", (*model.Episode)(nil), "season_id, episode_number"},
		{"uq_rule_season_key", (*model.ScoringRule)(nil), "season_id, rule_key"},
		{"uq_castaway_episode", (*model.CastawayEpisodeEvent)(nil), "castaway_id, episode_id"},
		{"uq_roster_entry", (*model.FantasyRoster)(nil), "season_id, fantasy_player_id, castaway_id"},
		{"uq_prediction", (*model.Prediction)(nil), "season_id, fantasy_player_id, prediction_type"},
	}
	for _, u := range uniques {
		_, err := s.db.NewCreateIndex().
			Model(u.model).
			Index(u.name).
			Unique().
			IfNotExists().
			ColumnExpr(u.columns).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", u.name, err)
		}
	}
	return nil
}

// mapErr normalizes driver errors to the package sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// observe records the store query latency.
func observe(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
}

// Seasons.

func (s *BunStore) Season(ctx context.Context, id int64) (model.Season, error) {
	defer observe(time.Now())
	var season model.Season
	err := s.db.NewSelect().Model(&season).Where("s.id = ?", id).Scan(ctx)
	if err != nil {
		return model.Season{}, mapErr(err)
	}
	return season, nil
}

func (s *BunStore) CreateSeason(ctx context.Context, season *model.Season) error {
	defer observe(time.Now())
	_, err := s.db.NewInsert().Model(season).Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) UpdateSeasonStatus(ctx context.Context, id int64, status model.SeasonStatus) error {
	defer observe(time.Now())
	res, err := s.db.NewUpdate().
		Model((*model.Season)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// Rule catalog.

func (s *BunStore) ActiveRules(ctx context.Context, seasonID int64) ([]model.ScoringRule, error) {
	defer observe(time.Now())
	var rules []model.ScoringRule
	err := s.db.NewSelect().
		Model(&rules).
		Where("r.season_id = ?", seasonID).
		Where("r.is_active = ?", true).
		Order("r.sort_order ASC", "r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return rules, nil
}

func (s *BunStore) Rules(ctx context.Context, seasonID int64) ([]model.ScoringRule, error) {
	defer observe(time.Now())
	var rules []model.ScoringRule
	err := s.db.NewSelect().
		Model(&rules).
		Where("r.season_id = ?", seasonID).
		Order("r.sort_order ASC", "r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return rules, nil
}

func (s *BunStore) Rule(ctx context.Context, id int64) (model.ScoringRule, error) {
	defer observe(time.Now())
	var rule model.ScoringRule
	err := s.db.NewSelect().Model(&rule).Where("r.id = ?", id).Scan(ctx)
	if err != nil {
		return model.ScoringRule{}, mapErr(err)
	}
	return rule, nil
}

func (s *BunStore) CreateRule(ctx context.Context, rule *model.ScoringRule) error {
	defer observe(time.Now())
	_, err := s.db.NewInsert().Model(rule).Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) CreateRules(ctx context.Context, rules []*model.ScoringRule) error {
	defer observe(time.Now())
	if len(rules) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&rules).Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) UpdateRule(ctx context.Context, rule *model.ScoringRule) error {
	defer observe(time.Now())
	res, err := s.db.NewUpdate().
		Model(rule).
		Column("rule_name", "points", "multiplier", "phase", "description", "is_active", "sort_order").
		WherePK().
		Exec(ctx)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// Castaways.

func (s *BunStore) Castaway(ctx context.Context, id int64) (model.Castaway, error) {
	defer observe(time.Now())
	var castaway model.Castaway
	err := s.db.NewSelect().Model(&castaway).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		return model.Castaway{}, mapErr(err)
	}
	return castaway, nil
}

func (s *BunStore) CastawaysBySeason(ctx context.Context, seasonID int64) ([]model.Castaway, error) {
	defer observe(time.Now())
	var castaways []model.Castaway
	err := s.db.NewSelect().
		Model(&castaways).
		Where("c.season_id = ?", seasonID).
		Order("c.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return castaways, nil
}

func (s *BunStore) ActiveCastaways(ctx context.Context, seasonID int64) ([]model.Castaway, error) {
	defer observe(time.Now())
	var castaways []model.Castaway
	err := s.db.NewSelect().
		Model(&castaways).
		Where("c.season_id = ?", seasonID).
		Where("c.status = ?", model.CastawayActive).
		Order("c.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return castaways, nil
}

func (s *BunStore) CreateCastaway(ctx context.Context, castaway *model.Castaway) error {
	defer observe(time.Now())
	_, err := s.db.NewInsert().Model(castaway).Exec(ctx)
	return mapErr(err)
}

// Episodes.

func (s *BunStore) Episode(ctx context.Context, id int64) (model.Episode, error) {
	defer observe(time.Now())
	var episode model.Episode
	err := s.db.NewSelect().Model(&episode).Where("e.id = ?", id).Scan(ctx)
	if err != nil {
		return model.Episode{}, mapErr(err)
	}
	return episode, nil
}

func (s *BunStore) EpisodesBySeason(ctx context.Context, seasonID int64) ([]model.Episode, error) {
	defer observe(time.Now())
	var episodes []model.Episode
	err := s.db.NewSelect().
		Model(&episodes).
		Where("e.season_id = ?", seasonID).
		Order("e.episode_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return episodes, nil
}

func (s *BunStore) CreateEpisode(ctx context.Context, episode *model.Episode) error {
	defer observe(time.Now())
	_, err := s.db.NewInsert().Model(episode).Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) MarkEpisodeScored(ctx context.Context, episodeID int64) error {
	defer observe(time.Now())
	res, err := s.db.NewUpdate().
		Model((*model.Episode)(nil)).
		Set("is_scored = ?", true).
		Where("id = ?", episodeID).
		Exec(ctx)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (s *BunStore) HasMergeAtOrBefore(ctx context.Context, seasonID int64, episodeNumber int) (bool, error) {
	defer observe(time.Now())
	exists, err := s.db.NewSelect().
		Model((*model.Episode)(nil)).
		Where("e.season_id = ?", seasonID).
		Where("e.is_merge = ?", true).
		Where("e.episode_number <= ?", episodeNumber).
		Exists(ctx)
	if err != nil {
		return false, mapErr(err)
	}
	return exists, nil
}

// Events.

func (s *BunStore) Event(ctx context.Context, id int64) (model.CastawayEpisodeEvent, error) {
	defer observe(time.Now())
	var event model.CastawayEpisodeEvent
	err := s.db.NewSelect().Model(&event).Where("ev.id = ?", id).Scan(ctx)
	if err != nil {
		return model.CastawayEpisodeEvent{}, mapErr(err)
	}
	return event, nil
}

func (s *BunStore) EventByPair(ctx context.Context, castawayID, episodeID int64) (model.CastawayEpisodeEvent, error) {
	defer observe(time.Now())
	var event model.CastawayEpisodeEvent
	err := s.db.NewSelect().
		Model(&event).
		Where("ev.castaway_id = ?", castawayID).
		Where("ev.episode_id = ?", episodeID).
		Scan(ctx)
	if err != nil {
		return model.CastawayEpisodeEvent{}, mapErr(err)
	}
	return event, nil
}

func (s *BunStore) EventsByEpisode(ctx context.Context, episodeID int64) ([]model.CastawayEpisodeEvent, error) {
	defer observe(time.Now())
	var events []model.CastawayEpisodeEvent
	err := s.db.NewSelect().
		Model(&events).
		Where("ev.episode_id = ?", episodeID).
		Order("ev.castaway_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return events, nil
}

func (s *BunStore) EventsForCastawaySeason(ctx context.Context, castawayID, seasonID int64) ([]model.CastawayEpisodeEvent, error) {
	defer observe(time.Now())
	var events []model.CastawayEpisodeEvent
	err := s.db.NewSelect().
		Model(&events).
		Join("JOIN episodes AS e ON e.id = ev.episode_id").
		Where("ev.castaway_id = ?", castawayID).
		Where("e.season_id = ?", seasonID).
		Order("e.episode_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return events, nil
}

func (s *BunStore) UpsertEvent(ctx context.Context, event *model.CastawayEpisodeEvent) error {
	defer observe(time.Now())
	event.UpdatedAt = time.Now()
	_, err := s.db.NewInsert().
		Model(event).
		On("CONFLICT (castaway_id, episode_id) DO UPDATE").
		Set("event_data = EXCLUDED.event_data").
		Set("notes = EXCLUDED.notes").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, calculated_score").
		Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) SetCalculatedScore(ctx context.Context, eventID int64, score float64) error {
	defer observe(time.Now())
	res, err := s.db.NewUpdate().
		Model((*model.CastawayEpisodeEvent)(nil)).
		Set("calculated_score = ?", score).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// Fantasy players, rosters, predictions.

func (s *BunStore) Player(ctx context.Context, id int64) (model.FantasyPlayer, error) {
	defer observe(time.Now())
	var player model.FantasyPlayer
	err := s.db.NewSelect().Model(&player).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		return model.FantasyPlayer{}, mapErr(err)
	}
	return player, nil
}

func (s *BunStore) CreatePlayer(ctx context.Context, player *model.FantasyPlayer) error {
	defer observe(time.Now())
	_, err := s.db.NewInsert().Model(player).Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) ActiveRosterEntries(ctx context.Context, playerID, seasonID int64) ([]model.FantasyRoster, error) {
	defer observe(time.Now())
	var entries []model.FantasyRoster
	err := s.db.NewSelect().
		Model(&entries).
		Where("fr.fantasy_player_id = ?", playerID).
		Where("fr.season_id = ?", seasonID).
		Where("fr.is_active = ?", true).
		Order("fr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return entries, nil
}

func (s *BunStore) CreateRosterEntry(ctx context.Context, entry *model.FantasyRoster) error {
	defer observe(time.Now())
	_, err := s.db.NewInsert().Model(entry).Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) DeactivateRosterEntry(ctx context.Context, entryID int64) error {
	defer observe(time.Now())
	res, err := s.db.NewUpdate().
		Model((*model.FantasyRoster)(nil)).
		Set("is_active = ?", false).
		Where("id = ?", entryID).
		Exec(ctx)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (s *BunStore) SeasonPlayerIDs(ctx context.Context, seasonID int64) ([]int64, error) {
	defer observe(time.Now())
	var ids []int64
	err := s.db.NewSelect().
		Model((*model.FantasyRoster)(nil)).
		ColumnExpr("DISTINCT fantasy_player_id").
		Where("season_id = ?", seasonID).
		OrderExpr("fantasy_player_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, mapErr(err)
	}
	return ids, nil
}

func (s *BunStore) CreatePrediction(ctx context.Context, prediction *model.Prediction) error {
	defer observe(time.Now())
	_, err := s.db.NewInsert().Model(prediction).Exec(ctx)
	return mapErr(err)
}

func (s *BunStore) ResolvePrediction(ctx context.Context, id int64, correct bool, bonusPoints float64) error {
	defer observe(time.Now())
	res, err := s.db.NewUpdate().
		Model((*model.Prediction)(nil)).
		Set("is_correct = ?", correct).
		Set("bonus_points = ?", bonusPoints).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (s *BunStore) CorrectPredictions(ctx context.Context, playerID, seasonID int64) ([]model.Prediction, error) {
	defer observe(time.Now())
	var predictions []model.Prediction
	err := s.db.NewSelect().
		Model(&predictions).
		Where("pr.fantasy_player_id = ?", playerID).
		Where("pr.season_id = ?", seasonID).
		Where("pr.is_correct = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return predictions, nil
}

// RunInTx runs fn inside one database transaction. Nested calls reuse the
// surrounding transaction.
func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.root == nil {
		// Already inside a transaction.
		return fn(ctx, s)
	}
	return s.root.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &BunStore{db: tx})
	})
}

// requireAffected converts a zero-row update into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
