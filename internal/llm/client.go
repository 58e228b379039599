package llm

import (
	"context"
)

// LLMClient is the answer-generation boundary. Implementations wrap a hosted
// model API; keeping it an interface lets tests run without network calls.
type LLMClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
	InvokeModelWithRetry(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}
