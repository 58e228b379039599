package config

// Config is the application configuration loaded from configs/clubgpt.yaml.
type Config struct {
	SystemPrompt string           `yaml:"system_prompt"`
	Retrieval    RetrievalConfig  `yaml:"retrieval"`
	Prompt       PromptConfig     `yaml:"prompt"`
	Generation   GenerationConfig `yaml:"generation"`
}

// RetrievalConfig tunes the lexical retriever.
type RetrievalConfig struct {
	// Limit is the maximum number of chunks returned per query.
	Limit int `yaml:"limit"`
	// MinScore is the strict lower bound a chunk must exceed to be returned.
	MinScore float64 `yaml:"min_score"`
	// TagWeight scales query-term hits on chunk tags (opponent names,
	// metric categories) relative to plain text hits. Must be >= 1.
	TagWeight float64 `yaml:"tag_weight"`
}

// PromptConfig bounds the assembled prompt.
type PromptConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// GenerationConfig tunes the answer-generation call.
type GenerationConfig struct {
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Retry          bool    `yaml:"retry"`
}
