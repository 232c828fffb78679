package llm

import (
	"context"
)

// LLMClient is an interface for invoking text-generation models.
// The rewriter treats the model as a black-box text transformer; keeping it
// behind an interface allows mocking in tests without real API calls.
type LLMClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
	InvokeModelWithRetry(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}
