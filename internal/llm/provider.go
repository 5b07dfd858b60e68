// Package llm defines the completion-service boundary: a request/response
// contract over chat messages plus an OpenAI-backed implementation. The
// pipeline treats the service as a black box that may fail at any time.
package llm

import (
	"context"

	"github.com/mshibata/chienowa/models"
)

// Message is one turn in the conversation sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries everything one completion call needs.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Completion is the service's reply: the raw text plus token accounting.
type Completion struct {
	Text  string
	Usage models.TokenUsage
}

// Provider is the completion service. Implementations must be safe for
// concurrent use.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
