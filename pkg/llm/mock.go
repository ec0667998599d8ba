package llm

import (
	"context"
)

// MockClient is a configurable mock for testing LLM-backed generators.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns an empty string and nil error.
	GenerateFunc func(ctx context.Context, req Request) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification.
	GenerateCalls int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

// Generate implements Client.
func (m *MockClient) Generate(ctx context.Context, req Request) (string, error) {
	m.GenerateCalls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}
