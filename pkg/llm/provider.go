// Package llm is the provider-neutral chat contract the generators talk to.
package llm

import (
	"context"
	"errors"
)

// Chat roles. Providers translate "model" to their own assistant role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleModel     = "model"
)

// ErrProviderUnavailable wraps transport failures and non-2xx replies from a model backend.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

type Message struct {
	Role    string
	Content string
}

type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	// Model overrides the provider default for one call.
	Model string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// Apply folds opts over the defaults every provider starts from.
func Apply(opts ...Option) *Options {
	o := &Options{Temperature: 0.7}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends the conversation and returns the assistant reply.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single user prompt.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
