package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/roarlabs/clubgpt/internal/models"
)

// fileDataset is the on-disk shape of matches.json. Metric values are kept
// loosely typed on the wire and converted to tagged values on read.
type fileDataset struct {
	Team        string        `json:"team"`
	Season      string        `json:"season"`
	Competition string        `json:"competition"`
	DataSource  string        `json:"data_source"`
	Matches     []fileMatch   `json:"matches"`
	Summary     fileSummary   `json:"summary"`
	LastSync    string        `json:"last_sync,omitempty"`
	Players     []json.RawMessage `json:"players,omitempty"`
}

type fileMatch struct {
	MatchID      int                       `json:"match_id"`
	Matchday     int                       `json:"matchday"`
	Date         string                    `json:"date"`
	Venue        string                    `json:"venue"`
	Opponent     string                    `json:"opponent"`
	Result       string                    `json:"result"`
	GoalsFor     int                       `json:"goals_for"`
	GoalsAgainst int                       `json:"goals_against"`
	Metrics      map[string]map[string]any `json:"metrics"`
}

type fileSummary struct {
	TotalMatches int        `json:"total_matches"`
	Record       fileRecord `json:"record"`
	GoalsFor     int        `json:"goals_for"`
	GoalsAgainst int        `json:"goals_against"`
	AvgXG        float64    `json:"avg_xg,omitempty"`
}

type fileRecord struct {
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

// ReadFile parses a matches.json file into a Dataset. Nested metric groups
// are flattened into "group.metric" keys; values that are neither numeric nor
// string are recorded as missing.
func ReadFile(path string) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data source %s: %w", path, err)
	}

	var fd fileDataset
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSource, path, err)
	}

	ds := &models.Dataset{
		Team:        fd.Team,
		Season:      fd.Season,
		Competition: fd.Competition,
		DataSource:  fd.DataSource,
		Summary: models.SeasonSummary{
			TotalMatches: fd.Summary.TotalMatches,
			Wins:         fd.Summary.Record.Wins,
			Draws:        fd.Summary.Record.Draws,
			Losses:       fd.Summary.Record.Losses,
			GoalsFor:     fd.Summary.GoalsFor,
			GoalsAgainst: fd.Summary.GoalsAgainst,
			AvgXG:        fd.Summary.AvgXG,
		},
	}

	for _, fm := range fd.Matches {
		rec := models.MatchRecord{
			MatchID:      fm.MatchID,
			Matchday:     fm.Matchday,
			Date:         fm.Date,
			Venue:        fm.Venue,
			Opponent:     fm.Opponent,
			Result:       fm.Result,
			GoalsFor:     fm.GoalsFor,
			GoalsAgainst: fm.GoalsAgainst,
			Metrics:      make(map[string]models.MetricValue),
		}
		for group, metrics := range fm.Metrics {
			for name, raw := range metrics {
				rec.Metrics[group+"."+name] = convertValue(raw)
			}
		}
		ds.Matches = append(ds.Matches, rec)
	}

	return ds, nil
}

// WriteFile writes a Dataset back into the matches.json shape. Used by the
// sync tool; the query pipeline itself never writes.
func WriteFile(path string, ds *models.Dataset) error {
	fd := fileDataset{
		Team:        ds.Team,
		Season:      ds.Season,
		Competition: ds.Competition,
		DataSource:  ds.DataSource,
		Summary: fileSummary{
			TotalMatches: ds.Summary.TotalMatches,
			Record: fileRecord{
				Wins:   ds.Summary.Wins,
				Draws:  ds.Summary.Draws,
				Losses: ds.Summary.Losses,
			},
			GoalsFor:     ds.Summary.GoalsFor,
			GoalsAgainst: ds.Summary.GoalsAgainst,
			AvgXG:        ds.Summary.AvgXG,
		},
	}

	for _, rec := range ds.Matches {
		fm := fileMatch{
			MatchID:      rec.MatchID,
			Matchday:     rec.Matchday,
			Date:         rec.Date,
			Venue:        rec.Venue,
			Opponent:     rec.Opponent,
			Result:       rec.Result,
			GoalsFor:     rec.GoalsFor,
			GoalsAgainst: rec.GoalsAgainst,
			Metrics:      make(map[string]map[string]any),
		}
		keys := make([]string, 0, len(rec.Metrics))
		for k := range rec.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			group, name, ok := strings.Cut(key, ".")
			if !ok {
				continue
			}
			if fm.Metrics[group] == nil {
				fm.Metrics[group] = make(map[string]any)
			}
			switch v := rec.Metrics[key]; v.Kind {
			case models.MetricNumber:
				fm.Metrics[group][name] = v.Number
			case models.MetricLabel:
				fm.Metrics[group][name] = v.Label
			default:
				fm.Metrics[group][name] = nil
			}
		}
		fd.Matches = append(fd.Matches, fm)
	}

	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write data file %s: %w", path, err)
	}
	return nil
}

func convertValue(raw any) models.MetricValue {
	switch v := raw.(type) {
	case float64:
		return models.Number(v)
	case string:
		return models.Label(v)
	default:
		return models.Missing()
	}
}
