package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roarlabs/clubgpt/internal/engine/mocks"
	"github.com/roarlabs/clubgpt/internal/llm"
	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/roarlabs/clubgpt/internal/prompt"
	"github.com/roarlabs/clubgpt/internal/retriever"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{ID: "5-xg", Text: "Matchday 5 xG data."},
		{ID: "10-xg", Text: "Matchday 10 xG data."},
	}
}

func defaultParams() Params {
	return Params{
		RetrievalLimit: 5,
		MaxTokens:      512,
		Temperature:    0,
		Timeout:        5 * time.Second,
	}
}

func TestAnswer_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)

	question := "What was our best xG match?"
	retrieved := []models.ScoredChunk{
		{Chunk: models.Chunk{ID: "10-xg", Text: "Matchday 10 xG data."}, Score: 1.5},
	}

	ret.EXPECT().
		Retrieve(question, testChunks(), 5).
		Return(retrieved, nil)
	asm.EXPECT().
		Assemble(question, retrieved).
		Return(prompt.Prompt{Text: "assembled prompt", Sources: []string{"10-xg"}}, nil)
	gen.EXPECT().
		InvokeModel(gomock.Any(), llm.LLMRequest{Prompt: "assembled prompt", MaxTokens: 512, Temperature: 0}).
		Return(&llm.LLMResponse{Content: "Matchday 10 against Perth Glory."}, nil)

	eng := New(testChunks(), ret, asm, gen, nil, defaultParams(), testLogger())

	result, err := eng.Answer(context.Background(), question)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "Matchday 10 against Perth Glory." {
		t.Errorf("answer: %q", result.Answer)
	}
	if !result.ContextFound {
		t.Error("expected ContextFound with retrieved chunks")
	}
	if len(result.Sources) != 1 || result.Sources[0] != "10-xg" {
		t.Errorf("sources: %v", result.Sources)
	}
	if result.Question != question {
		t.Errorf("question echoed wrong: %q", result.Question)
	}
}

func TestAnswer_EmptyQuestionCallsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No EXPECT calls: any collaborator invocation fails the test.
	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)

	eng := New(testChunks(), ret, asm, gen, nil, defaultParams(), testLogger())

	_, err := eng.Answer(context.Background(), "   ")
	if !errors.Is(err, retriever.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestAnswer_NoContextStillGenerates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)

	question := "Who won the 1966 World Cup?"

	ret.EXPECT().
		Retrieve(question, gomock.Any(), 5).
		Return(nil, nil)
	asm.EXPECT().
		Assemble(question, gomock.Nil()).
		Return(prompt.Prompt{Text: "prompt without chunks"}, nil)
	gen.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		Return(&llm.LLMResponse{Content: "That is not in the match data."}, nil)

	eng := New(testChunks(), ret, asm, gen, nil, defaultParams(), testLogger())

	result, err := eng.Answer(context.Background(), question)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ContextFound {
		t.Error("ContextFound must be false with no retrieved chunks")
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources, got %v", result.Sources)
	}
}

func TestAnswer_AssemblerErrorPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)

	ret.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	asm.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(prompt.Prompt{}, prompt.ErrPromptTooLarge)

	eng := New(testChunks(), ret, asm, gen, nil, defaultParams(), testLogger())

	_, err := eng.Answer(context.Background(), "a very long question")
	if !errors.Is(err, prompt.ErrPromptTooLarge) {
		t.Errorf("expected ErrPromptTooLarge, got %v", err)
	}
}

func TestAnswer_GenerationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)

	ret.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	asm.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(prompt.Prompt{Text: "p"}, nil)
	gen.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(nil, errors.New("ThrottlingException: rate exceeded"))

	eng := New(testChunks(), ret, asm, gen, nil, defaultParams(), testLogger())

	_, err := eng.Answer(context.Background(), "pressing profile")
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
	if errors.Is(err, ErrGenerationTimeout) {
		t.Error("plain failure must not be reported as a timeout")
	}
}

func TestAnswer_GenerationTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)

	ret.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	asm.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(prompt.Prompt{Text: "p"}, nil)
	gen.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ llm.LLMRequest) (*llm.LLMResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	params := defaultParams()
	params.Timeout = 10 * time.Millisecond
	eng := New(testChunks(), ret, asm, gen, nil, params, testLogger())

	_, err := eng.Answer(context.Background(), "pressing profile")
	if !errors.Is(err, ErrGenerationTimeout) {
		t.Errorf("expected ErrGenerationTimeout, got %v", err)
	}
}

func TestAnswer_RetryParamUsesRetryPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)

	ret.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	asm.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(prompt.Prompt{Text: "p"}, nil)
	gen.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.LLMResponse{Content: "ok"}, nil)

	params := defaultParams()
	params.Retry = true
	eng := New(testChunks(), ret, asm, gen, nil, params, testLogger())

	if _, err := eng.Answer(context.Background(), "duels"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnswer_CacheHitSkipsPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)
	cache := mocks.NewMockAnswerCache(ctrl)

	question := "How did we press at home?"
	cached := models.AnswerResult{Question: question, Answer: "cached", ContextFound: true}

	cache.EXPECT().Get(gomock.Any(), question).Return(&cached, true)

	eng := New(testChunks(), ret, asm, gen, cache, defaultParams(), testLogger())

	result, err := eng.Answer(context.Background(), question)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "cached" {
		t.Errorf("expected cached answer, got %q", result.Answer)
	}
}

func TestAnswer_CacheMissStoresResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ret := mocks.NewMockRetriever(ctrl)
	asm := mocks.NewMockAssembler(ctrl)
	gen := mocks.NewMockGenerator(ctrl)
	cache := mocks.NewMockAnswerCache(ctrl)

	question := "duel win rate"

	cache.EXPECT().Get(gomock.Any(), question).Return(nil, false)
	ret.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	asm.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(prompt.Prompt{Text: "p"}, nil)
	gen.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(&llm.LLMResponse{Content: "answer"}, nil)
	cache.EXPECT().Set(gomock.Any(), question, gomock.Any())

	eng := New(testChunks(), ret, asm, gen, cache, defaultParams(), testLogger())

	if _, err := eng.Answer(context.Background(), question); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
