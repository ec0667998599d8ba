package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	var out struct {
		ID int `json:"id"`
	}
	err := DoJSON(context.Background(), srv.Client(), http.MethodPost, srv.URL, nil,
		map[string]string{"name": "x"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.ID)
}

func TestDoJSON_NonOKReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "email has already been taken", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := DoJSON(context.Background(), srv.Client(), http.MethodPost, srv.URL, nil, nil, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.False(t, statusErr.IsRetryable())
}

func TestStatusError_Retryability(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 429}).IsRetryable())
	assert.True(t, (&StatusError{StatusCode: 503}).IsRetryable())
	assert.False(t, (&StatusError{StatusCode: 404}).IsRetryable())
	assert.False(t, (&StatusError{StatusCode: 422}).IsRetryable())
}

func TestNewClient_RateLimits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// 20 rps with burst 1: three requests need at least ~100ms.
	client := NewClient(20, false)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, DoJSON(context.Background(), client, http.MethodGet, srv.URL, nil, nil, nil))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestNewClient_CookieJar(t *testing.T) {
	assert.NotNil(t, NewClient(0, true).Jar)
	assert.Nil(t, NewClient(0, false).Jar)
}
