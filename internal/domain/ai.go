package domain

import (
	"context"
	"time"

	"github.com/hiveworks/hive/internal/constants"
)

// ModelClient is the consumed contract for the underlying language
// model. Implementations may fail on transport or timeout errors; every
// call site in the decision core must handle failure by degrading to a
// structural result, never by propagating.
type ModelClient interface {
	// CreateMessage performs one model call and returns the text
	// response with usage accounting.
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// MessageRequest is one model call.
type MessageRequest struct {
	// Tier selects the abstract model tier to call.
	Tier constants.ModelTier `json:"tier"`

	// System is the system prompt.
	System string `json:"system,omitempty"`

	// Prompt is the user message.
	Prompt string `json:"prompt"`

	// MaxTokens bounds the response length.
	MaxTokens int `json:"max_tokens"`

	// Timeout bounds the call duration. Zero means the client default.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// MessageResponse is the result of one model call.
type MessageResponse struct {
	// Content is the concatenated text content of the response.
	Content string `json:"content"`

	// Model is the concrete model identifier that served the call.
	Model string `json:"model"`

	// InputTokens is the prompt token count.
	InputTokens int64 `json:"input_tokens"`

	// OutputTokens is the completion token count.
	OutputTokens int64 `json:"output_tokens"`

	// StopReason is the provider's stop reason.
	StopReason string `json:"stop_reason,omitempty"`

	// Duration is the wall-clock call duration.
	Duration time.Duration `json:"duration"`
}
