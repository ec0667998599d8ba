// Package llm provides clients for LLM-backed fixture generation.
package llm

import (
	"context"
)

// Request describes one text-generation call.
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

// Client defines the interface for fixture-generation LLM calls.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Generate produces a single completion for the request and returns the
	// raw response text (which may wrap JSON in prose or code fences; use
	// ExtractJSON / ParseRecords to get at the payload).
	Generate(ctx context.Context, req Request) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Compile-time interface checks.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
