package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend.
//
// Providers return the raw text the model produced. No parsing, no retry
// and no backoff happens at this layer: retry policy belongs to the
// caller, and in the generation pipeline any failure here is fatal to
// the current run.
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Invoke is the pipeline's per-call contract with a provider: a system
// instruction, one task prompt and a token ceiling in, raw text out.
func Invoke(ctx context.Context, p LLMProvider, systemInstruction, taskPrompt string, maxOutputTokens int) (string, error) {
	history := []Message{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: taskPrompt},
	}
	return p.Chat(ctx, history, WithMaxTokens(maxOutputTokens))
}
