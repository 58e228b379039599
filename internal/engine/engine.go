// Package engine is the per-question orchestrator: validate the question,
// retrieve context, assemble the prompt, call the generation boundary, and
// shape the answer. Every call is independent; there is no conversation
// state.
package engine

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roarlabs/clubgpt/internal/llm"
	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/roarlabs/clubgpt/internal/prompt"
	"github.com/roarlabs/clubgpt/internal/retriever"
	"github.com/rs/zerolog"
)

var (
	// ErrGeneration marks a failure at the external generation boundary.
	ErrGeneration = errors.New("answer generation failed")
	// ErrGenerationTimeout marks a generation call that exceeded the
	// configured timeout. Kept distinct so callers can report it separately.
	ErrGenerationTimeout = errors.New("answer generation timed out")
)

// Retriever selects relevant chunks for a query.
type Retriever interface {
	Retrieve(query string, chunks []models.Chunk, limit int) ([]models.ScoredChunk, error)
}

// Assembler builds the bounded prompt payload.
type Assembler interface {
	Assemble(question string, retrieved []models.ScoredChunk) (prompt.Prompt, error)
}

// Generator is the hosted LLM boundary.
type Generator interface {
	InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error)
	InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error)
}

// AnswerCache short-circuits repeated questions. Optional.
type AnswerCache interface {
	Get(ctx context.Context, question string) (*models.AnswerResult, bool)
	Set(ctx context.Context, question string, result models.AnswerResult)
}

// Params carries the generation-side knobs.
type Params struct {
	RetrievalLimit int
	MaxTokens      int
	Temperature    float64
	Timeout        time.Duration
	Retry          bool
}

type Engine struct {
	chunks    []models.Chunk
	retriever Retriever
	assembler Assembler
	generator Generator
	cache     AnswerCache
	params    Params
	logger    *zerolog.Logger
}

func New(
	chunks []models.Chunk,
	ret Retriever,
	asm Assembler,
	gen Generator,
	cache AnswerCache,
	params Params,
	logger *zerolog.Logger,
) *Engine {
	if params.Timeout <= 0 {
		params.Timeout = 60 * time.Second
	}
	return &Engine{
		chunks:    chunks,
		retriever: ret,
		assembler: asm,
		generator: gen,
		cache:     cache,
		params:    params,
		logger:    logger,
	}
}

// Answer runs the full pipeline for one question. An empty question fails
// before any collaborator is called. Zero retrieved chunks is not an error:
// the generator is still invoked with a chunk-free prompt and ContextFound
// is false on the result.
func (e *Engine) Answer(ctx context.Context, question string) (models.AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return models.AnswerResult{}, retriever.ErrInvalidQuery
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, question); ok {
			e.logger.Debug().Msg("answer served from cache")
			return *cached, nil
		}
	}

	retrieved, err := e.retriever.Retrieve(question, e.chunks, e.params.RetrievalLimit)
	if err != nil {
		return models.AnswerResult{}, err
	}

	p, err := e.assembler.Assemble(question, retrieved)
	if err != nil {
		return models.AnswerResult{}, err
	}

	genCtx, cancel := context.WithTimeout(ctx, e.params.Timeout)
	defer cancel()

	request := llm.LLMRequest{
		Prompt:      p.Text,
		MaxTokens:   e.params.MaxTokens,
		Temperature: e.params.Temperature,
	}

	var resp *llm.LLMResponse
	if e.params.Retry {
		resp, err = e.generator.InvokeModelWithRetry(genCtx, request)
	} else {
		resp, err = e.generator.InvokeModel(genCtx, request)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return models.AnswerResult{}, fmt.Errorf("%w after %s: %w", ErrGenerationTimeout, e.params.Timeout, err)
		}
		return models.AnswerResult{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	result := models.AnswerResult{
		Question:     question,
		Answer:       resp.Content,
		Sources:      p.Sources,
		ContextFound: len(retrieved) > 0,
	}

	e.logger.Info().
		Int("chunks_used", len(p.Sources)).
		Bool("context_found", result.ContextFound).
		Msg("question answered")

	if e.cache != nil {
		e.cache.Set(ctx, question, result)
	}

	return result, nil
}
