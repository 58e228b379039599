package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultPath = "configs/clubgpt.yaml"

// defaultSystemPrompt mirrors the instruction the club has been running in
// production; configs/clubgpt.yaml normally overrides it.
const defaultSystemPrompt = `You are ClubGPT, an AI assistant for Brisbane Roar Football Club.
You have access to detailed match data from the current season.
Answer questions about team performance, tactics, and trends.
Be concise. Reference specific matches and numbers. Identify patterns.
If asked about something not in the data, say so clearly.`

// Load reads the YAML config. The path comes from CLUBGPT_CONFIG_PATH when
// set. Without an explicit path, a missing default file is not an error:
// built-in defaults apply.
func Load() (*Config, error) {
	path := os.Getenv("CLUBGPT_CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Retrieval.Limit == 0 {
		cfg.Retrieval.Limit = 6
	}
	if cfg.Retrieval.TagWeight == 0 {
		cfg.Retrieval.TagWeight = 2.0
	}
	if cfg.Prompt.MaxChars == 0 {
		cfg.Prompt.MaxChars = 12000
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 1024
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 60
	}
}

func (c *Config) Validate() error {
	if c.Retrieval.Limit < 1 {
		return fmt.Errorf("retrieval.limit must be positive, got %d", c.Retrieval.Limit)
	}
	if c.Retrieval.MinScore < 0 {
		return fmt.Errorf("retrieval.min_score must not be negative, got %f", c.Retrieval.MinScore)
	}
	if c.Retrieval.TagWeight < 1 {
		return fmt.Errorf("retrieval.tag_weight must be >= 1, got %f", c.Retrieval.TagWeight)
	}
	if c.Prompt.MaxChars < 1 {
		return fmt.Errorf("prompt.max_chars must be positive, got %d", c.Prompt.MaxChars)
	}
	if c.Generation.MaxTokens < 1 {
		return fmt.Errorf("generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be in [0, 2], got %f", c.Generation.Temperature)
	}
	return nil
}
