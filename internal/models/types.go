package models

// MetricKind discriminates what a MetricValue actually holds.
type MetricKind string

const (
	MetricNumber  MetricKind = "number"
	MetricLabel   MetricKind = "label"
	MetricMissing MetricKind = "missing"
)

// MetricValue is a tagged metric value: numeric, categorical or missing.
// Modelling "missing" explicitly keeps the chunker total over sparse records.
type MetricValue struct {
	Kind   MetricKind `json:"kind"`
	Number float64    `json:"number,omitempty"`
	Label  string     `json:"label,omitempty"`
}

func Number(v float64) MetricValue {
	return MetricValue{Kind: MetricNumber, Number: v}
}

func Label(s string) MetricValue {
	return MetricValue{Kind: MetricLabel, Label: s}
}

func Missing() MetricValue {
	return MetricValue{Kind: MetricMissing}
}

// MatchRecord is one match worth of performance data. Immutable once loaded.
// Metrics maps "group.metric" keys (e.g. "pressing.avg_pressure_height_m")
// to tagged values.
type MatchRecord struct {
	MatchID      int                    `json:"match_id"`
	Matchday     int                    `json:"matchday"`
	Date         string                 `json:"date"`
	Venue        string                 `json:"venue"`
	Opponent     string                 `json:"opponent"`
	Result       string                 `json:"result"`
	GoalsFor     int                    `json:"goals_for"`
	GoalsAgainst int                    `json:"goals_against"`
	Metrics      map[string]MetricValue `json:"metrics"`
}

// SeasonSummary aggregates the season record across all loaded matches.
type SeasonSummary struct {
	TotalMatches int     `json:"total_matches"`
	Wins         int     `json:"wins"`
	Draws        int     `json:"draws"`
	Losses       int     `json:"losses"`
	GoalsFor     int     `json:"goals_for"`
	GoalsAgainst int     `json:"goals_against"`
	AvgXG        float64 `json:"avg_xg,omitempty"`
}

// Dataset is the full in-memory data collection: one team, one season.
type Dataset struct {
	Team        string        `json:"team"`
	Season      string        `json:"season"`
	Competition string        `json:"competition"`
	DataSource  string        `json:"data_source"`
	Matches     []MatchRecord `json:"matches"`
	Summary     SeasonSummary `json:"summary"`
}

// Chunk is a self-contained text unit derived from one match record (or the
// season summary), used as retrieval context. MatchID is 0 for the season
// summary chunk.
type Chunk struct {
	ID       string   `json:"id"`
	MatchID  int      `json:"match_id,omitempty"`
	Category string   `json:"category"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags,omitempty"`
}

// ScoredChunk pairs a chunk with its relevance score for one query.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// AnswerResult is the engine's output for one question. Sources lists the IDs
// of the chunks that made it into the prompt, for traceability. ContextFound
// distinguishes "answered without relevant data" from a generation failure.
type AnswerResult struct {
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Sources      []string `json:"sources"`
	ContextFound bool     `json:"context_found"`
}
