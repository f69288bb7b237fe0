package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned before any network I/O when a provider that
// requires credentials was constructed without them.
var ErrMissingAPIKey = errors.New("llm: missing API key")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage reports token accounting from the upstream response. Fields default to
// zero when the provider omits usage data.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of a single chat call.
type Completion struct {
	Content string
	Usage   Usage
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

// DefaultOptions returns the option set every provider starts from.
func DefaultOptions() *Options {
	return &Options{
		Temperature: 0.7,
		MaxTokens:   2048,
	}
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the generated text
	// plus token usage.
	Chat(ctx context.Context, history []Message, options ...Option) (*Completion, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (*Completion, error)
}
