package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteReturnsFirstContentBlock(t *testing.T) {
	var gotVersion, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "hello"}},
		})
	}))
	defer server.Close()

	client := NewClient("secret", "test-model", server.URL, 5*time.Second)
	text, err := client.Complete(context.Background(), "say hello", CompletionOptions{Temperature: 0.5, MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, anthropicVersion, gotVersion)
	assert.Equal(t, "secret", gotKey)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer server.Close()

	client := NewClient("secret", "test-model", server.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), "prompt", CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
	assert.Contains(t, err.Error(), "slow down")
}

func TestCompleteEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	}))
	defer server.Close()

	client := NewClient("secret", "test-model", server.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), "prompt", CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}
