package impect

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/roarlabs/clubgpt/internal/models"
	"gopkg.in/yaml.v3"
)

// MatchMeta is portal metadata the analysis API does not expose: schedule
// position, date, venue and the final score.
type MatchMeta struct {
	Matchday     int    `yaml:"matchday"`
	Date         string `yaml:"date"`
	Venue        string `yaml:"venue"`
	GoalsFor     int    `yaml:"goals_for"`
	GoalsAgainst int    `yaml:"goals_against"`
}

// SyncConfig drives one sync run: which squad, which competition iteration,
// which KPIs, and the match metadata keyed by portal match ID.
type SyncConfig struct {
	Team        string            `yaml:"team"`
	Season      string            `yaml:"season"`
	Competition string            `yaml:"competition"`
	SquadID     int               `yaml:"squad_id"`
	IterationID int               `yaml:"competition_iteration_id"`
	KPIs        []string          `yaml:"kpis"`
	Matches     map[int]MatchMeta `yaml:"matches"`
}

func LoadSyncConfig(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sync config %s: %w", path, err)
	}

	var cfg SyncConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse sync config %s: %w", path, err)
	}

	if cfg.SquadID == 0 {
		return nil, fmt.Errorf("sync config %s: squad_id is required", path)
	}
	if cfg.IterationID == 0 {
		return nil, fmt.Errorf("sync config %s: competition_iteration_id is required", path)
	}
	if len(cfg.Matches) == 0 {
		return nil, fmt.Errorf("sync config %s: no matches configured", path)
	}
	return &cfg, nil
}

// kpiMapping places one raw KPI into the dataset's "group.metric" key space.
type kpiMapping struct {
	kpi    string
	key    string
	places int
}

var kpiMappings = []kpiMapping{
	{"PACKING_XG", "expected_goals.packing_xg", 2},
	{"PACKING_NSXG", "expected_goals.shot_based_xg", 2},
	{"POSTSHOT_XG", "expected_goals.post_shot_xg", 2},
	{"pxtPosSum", "expected_goals.developed_goal_threat", 2},
	{"OFFENSIVE_PLAY", "buildup.ball_progression", 1},
	{"OFFENSIVE_PLAY_DZ", "efficiency.breaking_opponent_defence", 1},
	{"REMOVE_TEAMMATES", "buildup.defensive_ball_control", 1},
	{"CRITICAL_BALL_LOSS_NUMBER", "buildup.critical_ball_loss", 0},
	{"REMOVE_OPPONENTS", "buildup.offensive_interventions", 1},
	{"ballPossessionRatio", "possession.ball_possession_rate", 3},
	{"passRatio", "possession.passing_accuracy", 3},
	{"successfulPassesClean", "possession.successful_passes", 0},
	{"unsuccessfulPassesClean", "possession.unsuccessful_passes", 0},
	{"duelsRatio", "duels.duel_rate", 3},
	{"groundDuelsRatio", "duels.ground_duel_success", 3},
	{"aerialDuelsRatio", "duels.aerial_duel_success", 3},
	{"SHOT_AT_GOAL_NUMBER", "shots.total_shots", 0},
	{"SHOT_AT_GOAL_NUMBER_ON_TARGET", "shots.shots_on_target", 0},
	{"oppGkUnderPressurePercent", "pressing.pressuring_gk_pct", 2},
	{"meanPressureHeight", "pressing.avg_pressure_height_m", 1},
	{"meanPressureOppDef", "pressing.avg_pressure_buildup", 2},
	{"forcedHighPassesPercent", "pressing.forced_high_passes_pct", 2},
	{"meanPressureBtl", "pressing.avg_pressure_counter_press", 2},
	{"reversePlayRatio", "ratios.reverse_play", 3},
	{"addOpponentsRatio", "ratios.add_opponents", 3},
	{"removeOpponentsRatio", "ratios.remove_opponents", 3},
	{"offensivePlayPerRemovedTeammates", "ratios.offensive_per_removed_teammates", 3},
}

var opponentMappings = []kpiMapping{
	{"OFFENSIVE_PLAY", "opponent.opponent_ball_progression", 1},
	{"OFFENSIVE_PLAY_DZ", "opponent.opponent_breaking_defence", 1},
}

// Syncer pulls every configured match and assembles a Dataset.
type Syncer struct {
	client *Client
	cfg    *SyncConfig
}

func NewSyncer(client *Client, cfg *SyncConfig) *Syncer {
	return &Syncer{client: client, cfg: cfg}
}

// BuildDataset fetches KPIs for every configured match, in match ID order,
// and computes the season summary from the configured scores. A failed match
// fetch aborts the sync rather than writing a partial dataset.
func (s *Syncer) BuildDataset(ctx context.Context) (*models.Dataset, error) {
	squadNames, err := s.client.SquadNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch squad names: %w", err)
	}

	matchIDs := make([]int, 0, len(s.cfg.Matches))
	for id := range s.cfg.Matches {
		matchIDs = append(matchIDs, id)
	}
	sort.Ints(matchIDs)

	ds := &models.Dataset{
		Team:        s.cfg.Team,
		Season:      s.cfg.Season,
		Competition: s.cfg.Competition,
		DataSource:  "Impect Analysis API",
	}

	for _, matchID := range matchIDs {
		own, opponent, err := s.client.MatchKPIs(ctx, s.cfg.SquadID, s.cfg.IterationID, matchID, s.cfg.KPIs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch match %d: %w", matchID, err)
		}

		meta := s.cfg.Matches[matchID]
		rec := models.MatchRecord{
			MatchID:      matchID,
			Matchday:     meta.Matchday,
			Date:         meta.Date,
			Venue:        meta.Venue,
			Opponent:     opponentName(squadNames, own.OpponentSquadID),
			Result:       resultString(meta.GoalsFor, meta.GoalsAgainst),
			GoalsFor:     meta.GoalsFor,
			GoalsAgainst: meta.GoalsAgainst,
			Metrics:      make(map[string]models.MetricValue),
		}

		applyMappings(rec.Metrics, own.KPIs, kpiMappings)
		if opponent != nil {
			applyMappings(rec.Metrics, opponent.KPIs, opponentMappings)
		}

		ds.Matches = append(ds.Matches, rec)

		// Portal rate limit is 10 req/s.
		select {
		case <-time.After(150 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ds.Summary = summarize(ds.Matches)
	return ds, nil
}

func applyMappings(metrics map[string]models.MetricValue, kpis map[string]float64, mappings []kpiMapping) {
	for _, m := range mappings {
		v, ok := kpis[m.kpi]
		if !ok {
			continue
		}
		metrics[m.key] = models.Number(roundTo(v, m.places))
	}
}

func summarize(matches []models.MatchRecord) models.SeasonSummary {
	summary := models.SeasonSummary{TotalMatches: len(matches)}
	var xgSum float64
	var xgCount int

	for _, m := range matches {
		summary.GoalsFor += m.GoalsFor
		summary.GoalsAgainst += m.GoalsAgainst
		switch {
		case m.GoalsFor > m.GoalsAgainst:
			summary.Wins++
		case m.GoalsFor < m.GoalsAgainst:
			summary.Losses++
		default:
			summary.Draws++
		}
		if xg, ok := m.Metrics["expected_goals.shot_based_xg"]; ok && xg.Kind == models.MetricNumber {
			xgSum += xg.Number
			xgCount++
		}
	}

	if xgCount > 0 {
		summary.AvgXG = roundTo(xgSum/float64(xgCount), 2)
	}
	return summary
}

func opponentName(names map[int]string, squadID int) string {
	if name, ok := names[squadID]; ok {
		return name
	}
	return fmt.Sprintf("Squad %d", squadID)
}

func resultString(goalsFor, goalsAgainst int) string {
	outcome := "D"
	if goalsFor > goalsAgainst {
		outcome = "W"
	} else if goalsFor < goalsAgainst {
		outcome = "L"
	}
	return fmt.Sprintf("%s %d-%d", outcome, goalsFor, goalsAgainst)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
