package llm

import (
	"context"
)

// StreamChunk is one piece of a streamed answer. The final chunk carries
// IsFinal=true and may be empty.
type StreamChunk struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
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

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Generator defines the contract for any LLM backend.
type Generator interface {
	// Generate sends a single assembled prompt and returns the full answer.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// GenerateStream returns the answer as an ordered chunk sequence. The
	// channel is closed after the final chunk. Backends without native
	// streaming regroup the full answer instead.
	GenerateStream(ctx context.Context, prompt string, options ...Option) (<-chan StreamChunk, error)
}
