package impect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// fakePortal stands in for the Impect token endpoint and analysis API.
func fakePortal(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostFormValue("grant_type") != "password" || r.PostFormValue("client_id") != "api" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		if r.PostFormValue("username") != "analyst" || r.PostFormValue("password") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})

	mux.HandleFunc("/v1/analysis/squads", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 6375, "name": "Brisbane Roar"},
				{"id": 7201, "name": "Wellington Phoenix"},
			},
		})
	})

	mux.HandleFunc("/v1/analysis/performances/squads/single-match", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		var body struct {
			MatchID int `json:"matchId"`
			SquadID int `json:"squadId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"performances": []map[string]any{
					{
						"squadId":         body.SquadID,
						"opponentSquadId": 7201,
						"matchId":         body.MatchID,
						"kpisAndScores": map[string]any{
							"PACKING_NSXG":        map[string]any{"value": 1.8041},
							"ballPossessionRatio": map[string]any{"value": 0.4471},
							"SHOT_AT_GOAL_NUMBER": map[string]any{"value": 16.0},
							"unknownNullKpi":      map[string]any{"value": nil},
						},
					},
					{
						"squadId":         7201,
						"opponentSquadId": body.SquadID,
						"matchId":         body.MatchID,
						"kpisAndScores": map[string]any{
							"OFFENSIVE_PLAY":    map[string]any{"value": 88.26},
							"OFFENSIVE_PLAY_DZ": map[string]any{"value": 24.91},
						},
					},
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func portalClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClientWithBase(server.URL+"/token", server.URL, testLogger())
	if err := client.Authenticate(context.Background(), "analyst", "secret"); err != nil {
		t.Fatalf("authentication failed: %v", err)
	}
	return client
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	server := fakePortal(t)
	client := NewClientWithBase(server.URL+"/token", server.URL, testLogger())

	err := client.Authenticate(context.Background(), "analyst", "wrong")
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestSquadNames(t *testing.T) {
	client := portalClient(t, fakePortal(t))

	names, err := client.SquadNames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names[6375] != "Brisbane Roar" || names[7201] != "Wellington Phoenix" {
		t.Errorf("squad names: %v", names)
	}
}

func TestMatchKPIs(t *testing.T) {
	client := portalClient(t, fakePortal(t))

	own, opponent, err := client.MatchKPIs(context.Background(), 6375, 1608, 234102, []string{"PACKING_NSXG"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if own.OpponentSquadID != 7201 {
		t.Errorf("opponent squad ID: %d", own.OpponentSquadID)
	}
	if own.KPIs["PACKING_NSXG"] != 1.8041 {
		t.Errorf("xG KPI: %f", own.KPIs["PACKING_NSXG"])
	}
	if _, ok := own.KPIs["unknownNullKpi"]; ok {
		t.Error("null KPI values must be dropped")
	}
	if opponent == nil || opponent.KPIs["OFFENSIVE_PLAY"] != 88.26 {
		t.Errorf("opponent KPIs: %+v", opponent)
	}
}

func TestSyncer_BuildDataset(t *testing.T) {
	client := portalClient(t, fakePortal(t))

	cfg := &SyncConfig{
		Team:        "Brisbane Roar",
		Season:      "2025-26",
		Competition: "A-League Men",
		SquadID:     6375,
		IterationID: 1608,
		KPIs:        []string{"PACKING_NSXG", "ballPossessionRatio", "SHOT_AT_GOAL_NUMBER"},
		Matches: map[int]MatchMeta{
			234102: {Matchday: 5, Date: "2025-10-26", Venue: "away", GoalsFor: 2, GoalsAgainst: 1},
		},
	}

	ds, err := NewSyncer(client, cfg).BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ds.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(ds.Matches))
	}

	rec := ds.Matches[0]
	if rec.Opponent != "Wellington Phoenix" {
		t.Errorf("opponent: %q", rec.Opponent)
	}
	if rec.Result != "W 2-1" {
		t.Errorf("result: %q", rec.Result)
	}
	if got := rec.Metrics["expected_goals.shot_based_xg"]; got.Number != 1.8 {
		t.Errorf("xG should be rounded to 2 places: %+v", got)
	}
	if got := rec.Metrics["possession.ball_possession_rate"]; got.Number != 0.447 {
		t.Errorf("possession should be rounded to 3 places: %+v", got)
	}
	if got := rec.Metrics["opponent.opponent_ball_progression"]; got.Number != 88.3 {
		t.Errorf("opponent progression: %+v", got)
	}

	if ds.Summary.Wins != 1 || ds.Summary.TotalMatches != 1 {
		t.Errorf("summary: %+v", ds.Summary)
	}
	if ds.Summary.AvgXG != 1.8 {
		t.Errorf("avg xG: %f", ds.Summary.AvgXG)
	}
}

func TestLoadSyncConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	content := `
team: Brisbane Roar
season: 2025-26
competition: A-League Men
squad_id: 6375
competition_iteration_id: 1608
kpis:
  - PACKING_NSXG
matches:
  234102: {matchday: 5, date: "2025-10-26", venue: away, goals_for: 2, goals_against: 1}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadSyncConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SquadID != 6375 || cfg.IterationID != 1608 {
		t.Errorf("ids: %d / %d", cfg.SquadID, cfg.IterationID)
	}
	meta, ok := cfg.Matches[234102]
	if !ok || meta.Matchday != 5 || meta.Venue != "away" {
		t.Errorf("match meta: %+v", meta)
	}
}

func TestLoadSyncConfig_MissingSquad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	if err := os.WriteFile(path, []byte("team: X\nmatches:\n  1: {matchday: 1}\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadSyncConfig(path); err == nil {
		t.Error("expected error for missing squad_id")
	}
}
