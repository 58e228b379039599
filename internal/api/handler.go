package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/roarlabs/clubgpt/internal/api/middleware"
	"github.com/roarlabs/clubgpt/internal/engine"
	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/roarlabs/clubgpt/internal/prompt"
	"github.com/roarlabs/clubgpt/internal/retriever"
	"github.com/roarlabs/clubgpt/internal/store"
	"github.com/rs/zerolog"
)

// Answerer answers one question end to end.
type Answerer interface {
	Answer(ctx context.Context, question string) (models.AnswerResult, error)
}

type AskRequest struct {
	Question string `json:"question"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// MatchSummary is the /matches listing entry.
type MatchSummary struct {
	MatchID  int    `json:"match_id"`
	Matchday int    `json:"matchday"`
	Opponent string `json:"opponent"`
	Date     string `json:"date"`
	Venue    string `json:"venue"`
	Result   string `json:"result"`
}

type Handler struct {
	answerer Answerer
	store    *store.Store
	logger   *zerolog.Logger
}

func NewHandler(answerer Answerer, st *store.Store, logger *zerolog.Logger) *Handler {
	return &Handler{
		answerer: answerer,
		store:    st,
		logger:   logger,
	}
}

// POST /api/v1/ask
// Body: AskRequest
// Returns: models.AnswerResult
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	var askRequest AskRequest
	if err := req.ReadEntity(&askRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	result, err := h.answerer.Answer(ctx, askRequest.Question)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to answer question")
		middleware.HandleError(resp, err, statusForError(err))
		return
	}

	h.logger.Info().
		Int("sources", len(result.Sources)).
		Bool("context_found", result.ContextFound).
		Msg("Question answered")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/matches
func (h *Handler) Matches(req *restful.Request, resp *restful.Response) {
	records := h.store.AllRecords()
	summaries := make([]MatchSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, MatchSummary{
			MatchID:  rec.MatchID,
			Matchday: rec.Matchday,
			Opponent: rec.Opponent,
			Date:     rec.Date,
			Venue:    rec.Venue,
			Result:   rec.Result,
		})
	}
	resp.WriteHeaderAndEntity(http.StatusOK, summaries)
}

// GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

// statusForError distinguishes caller mistakes from boundary failures: an
// unanswerable service is a 503, a bad question is a 400, and a question
// that cannot fit the prompt budget is a 413.
func statusForError(err error) int {
	switch {
	case errors.Is(err, retriever.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, prompt.ErrPromptTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, engine.ErrGenerationTimeout), errors.Is(err, engine.ErrGeneration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
