// Package chunker turns match records into self-contained text chunks, one
// per metric category, so retrieval can pull topically coherent context into
// a prompt without dragging the whole dataset along.
package chunker

import (
	"fmt"
	"strings"

	"github.com/roarlabs/clubgpt/internal/models"
)

type valueFormat int

const (
	formatNumber valueFormat = iota
	formatNumber2
	formatPercent
	formatCount
	formatMeters
)

type metricDef struct {
	key    string
	label  string
	format valueFormat
}

type category struct {
	name    string
	title   string
	tags    []string
	metrics []metricDef
}

// categories fixes both the set and the order of rendered chunks. Order
// matters: chunking must be deterministic so retrieval ties break the same
// way on every run.
var categories = []category{
	{
		name:  "style",
		title: "Style profile",
		tags:  []string{"style", "tactics"},
		metrics: []metricDef{
			{"style.possession_control", "possession control", formatPercent},
			{"style.heavy_metal", "heavy metal", formatPercent},
			{"style.counter_attacking", "counter attacking", formatPercent},
			{"style.direct_aerial", "direct & aerial", formatPercent},
		},
	},
	{
		name:  "xg",
		title: "Expected goals",
		tags:  []string{"xg", "goals", "threat"},
		metrics: []metricDef{
			{"expected_goals.shot_based_xg", "shot-based xG", formatNumber2},
			{"expected_goals.post_shot_xg", "post-shot xG", formatNumber2},
			{"expected_goals.packing_xg", "packing xG", formatNumber2},
			{"expected_goals.developed_goal_threat", "developed goal threat", formatNumber2},
		},
	},
	{
		name:  "progression",
		title: "Ball progression",
		tags:  []string{"progression", "buildup"},
		metrics: []metricDef{
			{"buildup.ball_progression", "ball progression", formatNumber},
			{"efficiency.breaking_opponent_defence", "breaking opponent defence", formatNumber},
			{"buildup.defensive_ball_control", "defensive ball control", formatNumber},
			{"buildup.critical_ball_loss", "critical ball losses", formatCount},
			{"buildup.offensive_interventions", "offensive interventions", formatNumber},
		},
	},
	{
		name:  "possession",
		title: "Possession & passing",
		tags:  []string{"possession", "passing"},
		metrics: []metricDef{
			{"possession.ball_possession_rate", "possession", formatPercent},
			{"possession.passing_accuracy", "pass accuracy", formatPercent},
			{"possession.successful_passes", "successful passes", formatCount},
			{"possession.unsuccessful_passes", "unsuccessful passes", formatCount},
		},
	},
	{
		name:  "pressing",
		title: "Pressing",
		tags:  []string{"pressing", "press"},
		metrics: []metricDef{
			{"pressing.pressuring_gk_pct", "pressuring GK", formatPercent},
			{"pressing.avg_pressure_height_m", "avg pressure height", formatMeters},
			{"pressing.avg_pressure_buildup", "pressure on buildup", formatNumber2},
			{"pressing.forced_high_passes_pct", "forced high passes", formatPercent},
			{"pressing.avg_pressure_counter_press", "counter-press intensity", formatNumber2},
		},
	},
	{
		name:  "shots",
		title: "Shots",
		tags:  []string{"shots", "shooting"},
		metrics: []metricDef{
			{"shots.total_shots", "total", formatCount},
			{"shots.shots_on_target", "on target", formatCount},
		},
	},
	{
		name:  "duels",
		title: "Duels",
		tags:  []string{"duels"},
		metrics: []metricDef{
			{"duels.ground_duel_success", "ground duel win rate", formatPercent},
			{"duels.aerial_duel_success", "aerial duel win rate", formatPercent},
			{"duels.duel_rate", "overall duel win rate", formatPercent},
		},
	},
}

// ChunkDataset renders the season summary chunk followed by every record's
// chunks, in dataset order.
func ChunkDataset(ds *models.Dataset) []models.Chunk {
	if ds == nil {
		return nil
	}

	var chunks []models.Chunk
	if seasonChunk, ok := SeasonChunk(ds); ok {
		chunks = append(chunks, seasonChunk)
	}
	for _, rec := range ds.Matches {
		chunks = append(chunks, ChunkRecord(rec)...)
	}
	return chunks
}

// ChunkRecord renders one match record into chunks: an overview chunk plus
// one chunk per metric category that has at least one present value. Pure
// and deterministic: the same record always yields the same chunks.
func ChunkRecord(rec models.MatchRecord) []models.Chunk {
	header := recordHeader(rec)
	baseTags := recordTags(rec)

	chunks := []models.Chunk{{
		ID:       fmt.Sprintf("%d-overview", rec.MatchID),
		MatchID:  rec.MatchID,
		Category: "overview",
		Text:     fmt.Sprintf("%s Scored %d, conceded %d.", header, rec.GoalsFor, rec.GoalsAgainst),
		Tags:     append([]string{"overview", "result", "score"}, baseTags...),
	}}

	for _, cat := range categories {
		parts := renderMetrics(rec.Metrics, cat.metrics)
		if len(parts) == 0 {
			continue
		}
		chunks = append(chunks, models.Chunk{
			ID:       fmt.Sprintf("%d-%s", rec.MatchID, cat.name),
			MatchID:  rec.MatchID,
			Category: cat.name,
			Text:     fmt.Sprintf("%s %s: %s.", header, cat.title, strings.Join(parts, ", ")),
			Tags:     append(append([]string{}, cat.tags...), baseTags...),
		})
	}

	return chunks
}

// SeasonChunk renders the season summary. The second return value is false
// when the dataset holds no matches.
func SeasonChunk(ds *models.Dataset) (models.Chunk, bool) {
	if ds.Summary.TotalMatches == 0 {
		return models.Chunk{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s season (%s): %dW-%dD-%dL across %d matches, %d goals scored, %d conceded.",
		ds.Team, ds.Season, ds.Competition,
		ds.Summary.Wins, ds.Summary.Draws, ds.Summary.Losses,
		ds.Summary.TotalMatches, ds.Summary.GoalsFor, ds.Summary.GoalsAgainst)
	if ds.Summary.AvgXG > 0 {
		fmt.Fprintf(&b, " Average xG %.2f.", ds.Summary.AvgXG)
	}

	tags := []string{"season", "summary", "record", "overall"}
	tags = append(tags, tokenizeName(ds.Team)...)

	return models.Chunk{
		ID:       "season-summary",
		Category: "season",
		Text:     b.String(),
		Tags:     tags,
	}, true
}

func recordHeader(rec models.MatchRecord) string {
	return fmt.Sprintf("Matchday %d vs %s (%s) on %s, result %s.",
		rec.Matchday, rec.Opponent, rec.Venue, rec.Date, rec.Result)
}

func recordTags(rec models.MatchRecord) []string {
	tags := tokenizeName(rec.Opponent)
	if rec.Venue != "" {
		tags = append(tags, strings.ToLower(rec.Venue))
	}
	return tags
}

func tokenizeName(name string) []string {
	var tokens []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if len(w) > 1 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func renderMetrics(values map[string]models.MetricValue, defs []metricDef) []string {
	var parts []string
	for _, def := range defs {
		v, ok := values[def.key]
		if !ok || v.Kind == models.MetricMissing {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", def.label, formatValue(v, def.format)))
	}
	return parts
}

func formatValue(v models.MetricValue, format valueFormat) string {
	if v.Kind == models.MetricLabel {
		return v.Label
	}
	switch format {
	case formatPercent:
		return fmt.Sprintf("%.0f%%", v.Number*100)
	case formatNumber2:
		return fmt.Sprintf("%.2f", v.Number)
	case formatCount:
		return fmt.Sprintf("%.0f", v.Number)
	case formatMeters:
		return fmt.Sprintf("%.1fm", v.Number)
	default:
		return fmt.Sprintf("%.1f", v.Number)
	}
}
