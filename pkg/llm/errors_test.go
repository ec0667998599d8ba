package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"unauthorized", errors.New("401 Unauthorized: invalid api key"), ErrorTypeAuth, false},
		{"model missing", errors.New("model gpt-17 does not exist"), ErrorTypeModel, false},
		{"endpoint 404", errors.New("POST /v1/messages: 404"), ErrorTypeEndpoint, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:8080: connection refused"), ErrorTypeEndpoint, true},
		{"timeout", errors.New("context deadline exceeded"), ErrorTypeEndpoint, true},
		{"rate limited", errors.New("429 rate limit exceeded"), ErrorTypeUnknown, true},
		{"overloaded", errors.New("529 overloaded_error"), ErrorTypeUnknown, true},
		{"server error", errors.New("HTTP 503 service unavailable"), ErrorTypeEndpoint, true},
		{"opaque", errors.New("something odd"), ErrorTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.retryable, got.Retryable)
		})
	}
}

func TestClassifyError_PassesThroughStructured(t *testing.T) {
	orig := NewError(ErrorTypeOutput, "short batch", true, nil)
	wrapped := fmt.Errorf("generate leads: %w", orig)
	got := ClassifyError(wrapped)
	assert.Same(t, orig, got)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrorTypeEndpoint, "server error", true, cause)
	assert.ErrorIs(t, err, cause)
}
