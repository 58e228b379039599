package llm

// LLMRequest is a single text-completion request to a hosted model.
type LLMRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// LLMResponse carries the generated text back, verbatim.
type LLMResponse struct {
	Content    string
	StopReason string
}
