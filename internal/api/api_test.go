package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/roarlabs/clubgpt/internal/api"
	"github.com/roarlabs/clubgpt/internal/api/middleware"
	"github.com/roarlabs/clubgpt/internal/engine"
	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/roarlabs/clubgpt/internal/prompt"
	"github.com/roarlabs/clubgpt/internal/retriever"
	"github.com/roarlabs/clubgpt/internal/store"
	"github.com/rs/zerolog"
)

// stubAnswerer lets each test script the engine's behavior without a live
// generation backend.
type stubAnswerer struct {
	result models.AnswerResult
	err    error
}

func (s *stubAnswerer) Answer(ctx context.Context, question string) (models.AnswerResult, error) {
	if s.err != nil {
		return models.AnswerResult{}, s.err
	}
	result := s.result
	result.Question = question
	return result, nil
}

const testDataset = `{
  "team": "Brisbane Roar",
  "season": "2025-26",
  "competition": "A-League Men",
  "matches": [
    {"match_id": 234102, "matchday": 5, "date": "2025-10-26", "venue": "away",
     "opponent": "Wellington Phoenix", "result": "W 2-1", "goals_for": 2, "goals_against": 1,
     "metrics": {"expected_goals": {"shot_based_xg": 1.8}}}
  ],
  "summary": {"total_matches": 1, "record": {"wins": 1, "draws": 0, "losses": 0},
    "goals_for": 2, "goals_against": 1}
}`

func setupTestAPI(t *testing.T, answerer api.Answerer) *restful.Container {
	t.Helper()
	logger := zerolog.Nop()

	path := filepath.Join(t.TempDir(), "matches.json")
	if err := os.WriteFile(path, []byte(testDataset), 0o644); err != nil {
		t.Fatalf("failed to write test dataset: %v", err)
	}

	st := store.New(&logger)
	if _, err := st.Load(path); err != nil {
		t.Fatalf("failed to load test dataset: %v", err)
	}

	handler := api.NewHandler(answerer, st, &logger)
	container := restful.NewContainer()
	api.RegisterRoutes(container, handler)
	return container
}

func postAsk(t *testing.T, container *restful.Container, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_Ask(t *testing.T) {
	container := setupTestAPI(t, &stubAnswerer{
		result: models.AnswerResult{
			Answer:       "Your best xG came against Wellington Phoenix (1.8).",
			Sources:      []string{"234102-xg"},
			ContextFound: true,
		},
	})

	recorder := postAsk(t, container, api.AskRequest{Question: "What was our best xG match?"})

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var result models.AnswerResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Question != "What was our best xG match?" {
		t.Errorf("question: %q", result.Question)
	}
	if !result.ContextFound {
		t.Error("expected context_found")
	}
	if len(result.Sources) != 1 || result.Sources[0] != "234102-xg" {
		t.Errorf("sources: %v", result.Sources)
	}
}

func TestAPI_Ask_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid query", retriever.ErrInvalidQuery, http.StatusBadRequest},
		{"prompt too large", prompt.ErrPromptTooLarge, http.StatusRequestEntityTooLarge},
		{"generation failed", engine.ErrGeneration, http.StatusServiceUnavailable},
		{"generation timeout", engine.ErrGenerationTimeout, http.StatusServiceUnavailable},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			container := setupTestAPI(t, &stubAnswerer{err: test.err})

			recorder := postAsk(t, container, api.AskRequest{Question: "anything"})

			if recorder.Code != test.wantStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", test.wantStatus, recorder.Code, recorder.Body.String())
			}

			var response middleware.ErrorResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to parse error body: %v", err)
			}
			if response.Error == "" {
				t.Error("expected an error message in the body")
			}
		})
	}
}

func TestAPI_Ask_BadBody(t *testing.T) {
	container := setupTestAPI(t, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestAPI_Matches(t *testing.T) {
	container := setupTestAPI(t, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var summaries []api.MatchSummary
	if err := json.Unmarshal(recorder.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 match, got %d", len(summaries))
	}
	if summaries[0].Opponent != "Wellington Phoenix" || summaries[0].Result != "W 2-1" {
		t.Errorf("match summary: %+v", summaries[0])
	}
}
