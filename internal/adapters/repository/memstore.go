package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/domain/model"
)

// MemStore is an in-memory Store used by tests and the seed tooling. All
// methods are safe for concurrent use.
type MemStore struct {
	mu sync.RWMutex

	seasons     map[int64]model.Season
	castaways   map[int64]model.Castaway
	episodes    map[int64]model.Episode
	rules       map[int64]model.ScoringRule
	events      map[int64]model.CastawayEpisodeEvent
	players     map[int64]model.FantasyPlayer
	rosters     map[int64]model.FantasyRoster
	predictions map[int64]model.Prediction

	nextID map[string]int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		seasons:     make(map[int64]model.Season),
		castaways:   make(map[int64]model.Castaway),
		episodes:    make(map[int64]model.Episode),
		rules:       make(map[int64]model.ScoringRule),
		events:      make(map[int64]model.CastawayEpisodeEvent),
		players:     make(map[int64]model.FantasyPlayer),
		rosters:     make(map[int64]model.FantasyRoster),
		predictions: make(map[int64]model.Prediction),
		nextID:      make(map[string]int64),
	}
}

func (m *MemStore) allocate(kind string) int64 {
	m.nextID[kind]++
	return m.nextID[kind]
}

// Seasons.

func (m *MemStore) Season(_ context.Context, id int64) (model.Season, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	season, ok := m.seasons[id]
	if !ok {
		return model.Season{}, ErrNotFound
	}
	return season, nil
}

func (m *MemStore) CreateSeason(_ context.Context, season *model.Season) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.seasons {
		if existing.SeasonNumber == season.SeasonNumber {
			return ErrConflict
		}
	}
	season.ID = m.allocate("season")
	if season.Status == "" {
		season.Status = model.SeasonSetup
	}
	if season.CreatedAt.IsZero() {
		season.CreatedAt = time.Now()
	}
	m.seasons[season.ID] = *season
	return nil
}

func (m *MemStore) UpdateSeasonStatus(_ context.Context, id int64, status model.SeasonStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	season, ok := m.seasons[id]
	if !ok {
		return ErrNotFound
	}
	season.Status = status
	m.seasons[id] = season
	return nil
}

// Rule catalog.

func (m *MemStore) ActiveRules(_ context.Context, seasonID int64) ([]model.ScoringRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rules []model.ScoringRule
	for _, rule := range m.rules {
		if rule.SeasonID == seasonID && rule.IsActive {
			rules = append(rules, rule)
		}
	}
	sortRules(rules)
	return rules, nil
}

func (m *MemStore) Rules(_ context.Context, seasonID int64) ([]model.ScoringRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rules []model.ScoringRule
	for _, rule := range m.rules {
		if rule.SeasonID == seasonID {
			rules = append(rules, rule)
		}
	}
	sortRules(rules)
	return rules, nil
}

func sortRules(rules []model.ScoringRule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].SortOrder != rules[j].SortOrder {
			return rules[i].SortOrder < rules[j].SortOrder
		}
		return rules[i].ID < rules[j].ID
	})
}

func (m *MemStore) Rule(_ context.Context, id int64) (model.ScoringRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[id]
	if !ok {
		return model.ScoringRule{}, ErrNotFound
	}
	return rule, nil
}

func (m *MemStore) CreateRule(_ context.Context, rule *model.ScoringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertRule(rule)
}

func (m *MemStore) CreateRules(_ context.Context, rules []*model.ScoringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rule := range rules {
		if err := m.insertRule(rule); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) insertRule(rule *model.ScoringRule) error {
	for _, existing := range m.rules {
		if existing.SeasonID == rule.SeasonID && existing.RuleKey == rule.RuleKey {
			return ErrConflict
		}
	}
	rule.ID = m.allocate("rule")
	m.rules[rule.ID] = *rule
	return nil
}

func (m *MemStore) UpdateRule(_ context.Context, rule *model.ScoringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rules[rule.ID]
	if !ok {
		return ErrNotFound
	}
	existing.RuleName = rule.RuleName
	existing.Points = rule.Points
	existing.Multiplier = rule.Multiplier
	existing.Phase = rule.Phase
	existing.Description = rule.Description
	existing.IsActive = rule.IsActive
	existing.SortOrder = rule.SortOrder
	m.rules[rule.ID] = existing
	*rule = existing
	return nil
}

// Castaways.

func (m *MemStore) Castaway(_ context.Context, id int64) (model.Castaway, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	castaway, ok := m.castaways[id]
	if !ok {
		return model.Castaway{}, ErrNotFound
	}
	return castaway, nil
}

func (m *MemStore) CastawaysBySeason(_ context.Context, seasonID int64) ([]model.Castaway, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var castaways []model.Castaway
	for _, castaway := range m.castaways {
		if castaway.SeasonID == seasonID {
			castaways = append(castaways, castaway)
		}
	}
	sortCastaways(castaways)
	return castaways, nil
}

func (m *MemStore) ActiveCastaways(_ context.Context, seasonID int64) ([]model.Castaway, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var castaways []model.Castaway
	for _, castaway := range m.castaways {
		if castaway.SeasonID == seasonID && castaway.Status == model.CastawayActive {
			castaways = append(castaways, castaway)
		}
	}
	sortCastaways(castaways)
	return castaways, nil
}

func sortCastaways(castaways []model.Castaway) {
	sort.Slice(castaways, func(i, j int) bool {
		if castaways[i].Name != castaways[j].Name {
			return castaways[i].Name < castaways[j].Name
		}
		return castaways[i].ID < castaways[j].ID
	})
}

func (m *MemStore) CreateCastaway(_ context.Context, castaway *model.Castaway) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.castaways {
		if existing.SeasonID == castaway.SeasonID && existing.Name == castaway.Name {
			return ErrConflict
		}
	}
	castaway.ID = m.allocate("castaway")
	if castaway.Status == "" {
		castaway.Status = model.CastawayActive
	}
	m.castaways[castaway.ID] = *castaway
	return nil
}

// Episodes.

func (m *MemStore) Episode(_ context.Context, id int64) (model.Episode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	episode, ok := m.episodes[id]
	if !ok {
		return model.Episode{}, ErrNotFound
	}
	return episode, nil
}

func (m *MemStore) EpisodesBySeason(_ context.Context, seasonID int64) ([]model.Episode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var episodes []model.Episode
	for _, episode := range m.episodes {
		if episode.SeasonID == seasonID {
			episodes = append(episodes, episode)
		}
	}
	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].EpisodeNumber < episodes[j].EpisodeNumber
	})
	return episodes, nil
}

func (m *MemStore) CreateEpisode(_ context.Context, episode *model.Episode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.episodes {
		if existing.SeasonID == episode.SeasonID && existing.EpisodeNumber == episode.EpisodeNumber {
			return ErrConflict
		}
	}
	episode.ID = m.allocate("episode")
	m.episodes[episode.ID] = *episode
	return nil
}

func (m *MemStore) MarkEpisodeScored(_ context.Context, episodeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	episode, ok := m.episodes[episodeID]
	if !ok {
		return ErrNotFound
	}
	episode.IsScored = true
	m.episodes[episodeID] = episode
	return nil
}

func (m *MemStore) HasMergeAtOrBefore(_ context.Context, seasonID int64, episodeNumber int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, episode := range m.episodes {
		if episode.SeasonID == seasonID && episode.IsMerge && episode.EpisodeNumber <= episodeNumber {
			return true, nil
		}
	}
	return false, nil
}

// Events.

func (m *MemStore) Event(_ context.Context, id int64) (model.CastawayEpisodeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	event, ok := m.events[id]
	if !ok {
		return model.CastawayEpisodeEvent{}, ErrNotFound
	}
	return cloneEvent(event), nil
}

func (m *MemStore) EventByPair(_ context.Context, castawayID, episodeID int64) (model.CastawayEpisodeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, event := range m.events {
		if event.CastawayID == castawayID && event.EpisodeID == episodeID {
			return cloneEvent(event), nil
		}
	}
	return model.CastawayEpisodeEvent{}, ErrNotFound
}

func (m *MemStore) EventsByEpisode(_ context.Context, episodeID int64) ([]model.CastawayEpisodeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []model.CastawayEpisodeEvent
	for _, event := range m.events {
		if event.EpisodeID == episodeID {
			events = append(events, cloneEvent(event))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CastawayID < events[j].CastawayID
	})
	return events, nil
}

func (m *MemStore) EventsForCastawaySeason(_ context.Context, castawayID, seasonID int64) ([]model.CastawayEpisodeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []model.CastawayEpisodeEvent
	for _, event := range m.events {
		if event.CastawayID != castawayID {
			continue
		}
		episode, ok := m.episodes[event.EpisodeID]
		if !ok || episode.SeasonID != seasonID {
			continue
		}
		events = append(events, cloneEvent(event))
	}
	sort.Slice(events, func(i, j int) bool {
		return m.episodes[events[i].EpisodeID].EpisodeNumber < m.episodes[events[j].EpisodeID].EpisodeNumber
	})
	return events, nil
}

func (m *MemStore) UpsertEvent(_ context.Context, event *model.CastawayEpisodeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.UpdatedAt = time.Now()
	for id, existing := range m.events {
		if existing.CastawayID == event.CastawayID && existing.EpisodeID == event.EpisodeID {
			existing.EventData = cloneEventData(event.EventData)
			existing.Notes = event.Notes
			existing.UpdatedAt = event.UpdatedAt
			m.events[id] = existing
			event.ID = id
			event.CalculatedScore = existing.CalculatedScore
			return nil
		}
	}
	event.ID = m.allocate("event")
	stored := *event
	stored.EventData = cloneEventData(event.EventData)
	m.events[event.ID] = stored
	return nil
}

func (m *MemStore) SetCalculatedScore(_ context.Context, eventID int64, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventID]
	if !ok {
		return ErrNotFound
	}
	event.CalculatedScore = &score
	m.events[eventID] = event
	return nil
}

func cloneEvent(event model.CastawayEpisodeEvent) model.CastawayEpisodeEvent {
	event.EventData = cloneEventData(event.EventData)
	if event.CalculatedScore != nil {
		score := *event.CalculatedScore
		event.CalculatedScore = &score
	}
	return event
}

func cloneEventData(data model.EventData) model.EventData {
	if data == nil {
		return nil
	}
	clone := make(model.EventData, len(data))
	for k, v := range data {
		clone[k] = v
	}
	return clone
}

// Fantasy players, rosters, predictions.

func (m *MemStore) Player(_ context.Context, id int64) (model.FantasyPlayer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	player, ok := m.players[id]
	if !ok {
		return model.FantasyPlayer{}, ErrNotFound
	}
	return player, nil
}

func (m *MemStore) CreatePlayer(_ context.Context, player *model.FantasyPlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.players {
		if existing.Username == player.Username {
			return ErrConflict
		}
	}
	player.ID = m.allocate("player")
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	m.players[player.ID] = *player
	return nil
}

func (m *MemStore) ActiveRosterEntries(_ context.Context, playerID, seasonID int64) ([]model.FantasyRoster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []model.FantasyRoster
	for _, entry := range m.rosters {
		if entry.FantasyPlayerID == playerID && entry.SeasonID == seasonID && entry.IsActive {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *MemStore) CreateRosterEntry(_ context.Context, entry *model.FantasyRoster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rosters {
		if existing.SeasonID == entry.SeasonID &&
			existing.FantasyPlayerID == entry.FantasyPlayerID &&
			existing.CastawayID == entry.CastawayID {
			return ErrConflict
		}
	}
	entry.ID = m.allocate("roster")
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.rosters[entry.ID] = *entry
	return nil
}

func (m *MemStore) DeactivateRosterEntry(_ context.Context, entryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.rosters[entryID]
	if !ok {
		return ErrNotFound
	}
	entry.IsActive = false
	m.rosters[entryID] = entry
	return nil
}

func (m *MemStore) SeasonPlayerIDs(_ context.Context, seasonID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[int64]struct{})
	var ids []int64
	for _, entry := range m.rosters {
		if entry.SeasonID != seasonID {
			continue
		}
		if _, ok := seen[entry.FantasyPlayerID]; ok {
			continue
		}
		seen[entry.FantasyPlayerID] = struct{}{}
		ids = append(ids, entry.FantasyPlayerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MemStore) CreatePrediction(_ context.Context, prediction *model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.predictions {
		if existing.SeasonID == prediction.SeasonID &&
			existing.FantasyPlayerID == prediction.FantasyPlayerID &&
			existing.PredictionType == prediction.PredictionType {
			return ErrConflict
		}
	}
	prediction.ID = m.allocate("prediction")
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = time.Now()
	}
	m.predictions[prediction.ID] = *prediction
	return nil
}

func (m *MemStore) ResolvePrediction(_ context.Context, id int64, correct bool, bonusPoints float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prediction, ok := m.predictions[id]
	if !ok {
		return ErrNotFound
	}
	prediction.IsCorrect = &correct
	prediction.BonusPoints = bonusPoints
	m.predictions[id] = prediction
	return nil
}

func (m *MemStore) CorrectPredictions(_ context.Context, playerID, seasonID int64) ([]model.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var predictions []model.Prediction
	for _, prediction := range m.predictions {
		if prediction.FantasyPlayerID == playerID &&
			prediction.SeasonID == seasonID &&
			prediction.IsCorrect != nil && *prediction.IsCorrect {
			predictions = append(predictions, prediction)
		}
	}
	sort.Slice(predictions, func(i, j int) bool { return predictions[i].ID < predictions[j].ID })
	return predictions, nil
}

// RunInTx snapshots the store, runs fn, and restores the snapshot if fn
// fails. Writes made by fn must go through the tx argument; MemStore hands
// fn itself, so the rollback covers every mutation.
func (m *MemStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	snapshot := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	seasons     map[int64]model.Season
	castaways   map[int64]model.Castaway
	episodes    map[int64]model.Episode
	rules       map[int64]model.ScoringRule
	events      map[int64]model.CastawayEpisodeEvent
	players     map[int64]model.FantasyPlayer
	rosters     map[int64]model.FantasyRoster
	predictions map[int64]model.Prediction
	nextID      map[string]int64
}

func (m *MemStore) snapshot() memSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := memSnapshot{
		seasons:     make(map[int64]model.Season, len(m.seasons)),
		castaways:   make(map[int64]model.Castaway, len(m.castaways)),
		episodes:    make(map[int64]model.Episode, len(m.episodes)),
		rules:       make(map[int64]model.ScoringRule, len(m.rules)),
		events:      make(map[int64]model.CastawayEpisodeEvent, len(m.events)),
		players:     make(map[int64]model.FantasyPlayer, len(m.players)),
		rosters:     make(map[int64]model.FantasyRoster, len(m.rosters)),
		predictions: make(map[int64]model.Prediction, len(m.predictions)),
		nextID:      make(map[string]int64, len(m.nextID)),
	}
	for k, v := range m.seasons {
		snap.seasons[k] = v
	}
	for k, v := range m.castaways {
		snap.castaways[k] = v
	}
	for k, v := range m.episodes {
		snap.episodes[k] = v
	}
	for k, v := range m.rules {
		snap.rules[k] = v
	}
	for k, v := range m.events {
		snap.events[k] = cloneEvent(v)
	}
	for k, v := range m.players {
		snap.players[k] = v
	}
	for k, v := range m.rosters {
		snap.rosters[k] = v
	}
	for k, v := range m.predictions {
		snap.predictions[k] = v
	}
	for k, v := range m.nextID {
		snap.nextID[k] = v
	}
	return snap
}

func (m *MemStore) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seasons = snap.seasons
	m.castaways = snap.castaways
	m.episodes = snap.episodes
	m.rules = snap.rules
	m.events = snap.events
	m.players = snap.players
	m.rosters = snap.rosters
	m.predictions = snap.predictions
	m.nextID = snap.nextID
}
