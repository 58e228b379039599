package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/roarlabs/clubgpt/internal/cache"
	"github.com/roarlabs/clubgpt/internal/chunker"
	"github.com/roarlabs/clubgpt/internal/config"
	"github.com/roarlabs/clubgpt/internal/engine"
	"github.com/roarlabs/clubgpt/internal/llm"
	"github.com/roarlabs/clubgpt/internal/llm/bedrock"
	"github.com/roarlabs/clubgpt/internal/llm/gpt"
	"github.com/roarlabs/clubgpt/internal/prompt"
	"github.com/roarlabs/clubgpt/internal/retriever"
	"github.com/roarlabs/clubgpt/internal/store"
	"github.com/rs/zerolog"
)

// EnvConfig carries process-level settings: data location, provider
// selection and credentials references. Tunables live in the YAML config.
type EnvConfig struct {
	MatchDataPath   string
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	RedisAddr       string
	RedisPassword   string
	CacheTTLMinutes int
}

type Dependencies struct {
	Engine *engine.Engine
	Store  *store.Store
	Config *config.Config
	Logger *zerolog.Logger
}

func LoadEnvConfig() *EnvConfig {
	return &EnvConfig{
		MatchDataPath:   getEnv("MATCH_DATA_PATH", "data/matches.json"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CacheTTLMinutes: getEnvInt("ANSWER_CACHE_TTL_MINUTES", 60),
	}
}

// Wire loads the dataset and builds the full question-answering pipeline.
// A missing or malformed data source is fatal here, before any request is
// served.
func Wire(ctx context.Context, envCfg *EnvConfig, logger *zerolog.Logger) (*Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st := store.New(logger)
	dataset, err := st.Load(envCfg.MatchDataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load match data: %w", err)
	}

	chunks := chunker.ChunkDataset(dataset)
	logger.Info().Int("chunks", len(chunks)).Msg("chunk index built")

	ret := retriever.New(cfg.Retrieval.Limit, cfg.Retrieval.MinScore, cfg.Retrieval.TagWeight, logger)
	asm := prompt.NewAssembler(cfg.SystemPrompt, cfg.Prompt.MaxChars)

	llmClient, err := createLLMClient(ctx, envCfg.DefaultProvider, envCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var answerCache engine.AnswerCache
	if envCfg.RedisAddr != "" {
		redisClient, err := cache.Connect(ctx, envCfg.RedisAddr, envCfg.RedisPassword, 3)
		if err != nil {
			return nil, fmt.Errorf("failed to connect answer cache: %w", err)
		}
		answerCache = cache.New(redisClient, time.Duration(envCfg.CacheTTLMinutes)*time.Minute, logger)
	}

	eng := engine.New(chunks, ret, asm, llmClient, answerCache, engine.Params{
		RetrievalLimit: cfg.Retrieval.Limit,
		MaxTokens:      cfg.Generation.MaxTokens,
		Temperature:    cfg.Generation.Temperature,
		Timeout:        time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
		Retry:          cfg.Generation.Retry,
	}, logger)

	return &Dependencies{
		Engine: eng,
		Store:  st,
		Config: cfg,
		Logger: logger,
	}, nil
}

func createLLMClient(ctx context.Context, provider string, cfg *EnvConfig) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}
