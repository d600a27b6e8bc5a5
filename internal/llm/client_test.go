package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arbiterlabs/symposium/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaComplete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "test-model",
			Message: ollamaMessage{Role: "assistant", Content: "a reply"},
			Done:    true,
		})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "test-model")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System: "be brief",
		Messages: []Message{
			{Role: RoleUser, Name: "Alice", Content: "hello"},
		},
		Temperature: Float64(0.3),
		MaxTokens:   100,
	})
	require.NoError(t, err)
	assert.Equal(t, "a reply", resp.Content)

	// System prompt becomes the first message; named user turns are prefixed.
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be brief", got.Messages[0].Content)
	assert.Equal(t, "[Alice] hello", got.Messages[1].Content)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.3, got.Options["temperature"])
	assert.Equal(t, float64(100), got.Options["num_predict"])
}

func TestOllamaCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "missing")
	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, 404, provErr.Code)
	assert.Equal(t, "ollama", provErr.Provider)
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"model":"gpt-test","choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "sk-test", "gpt-test")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "gpt-test", resp.Model)
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "", "gpt-test")
	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Macro_Analyst", sanitizeName("Macro Analyst"))
	assert.Equal(t, "agent-1", sanitizeName("agent-1"))
	assert.Equal(t, "", sanitizeName(""))
}

func TestCacheReusesClients(t *testing.T) {
	built := 0
	cache := NewCache(func(cfg ClientConfig) (Client, error) {
		built++
		return &MockClient{ProviderName: cfg.Provider}, nil
	}, logging.Silent())

	cfg := ClientConfig{Provider: "mock", Model: "m1"}
	a, err := cache.Get(cfg)
	require.NoError(t, err)
	b, err := cache.Get(cfg)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, built)

	// A different model is a different instance.
	_, err = cache.Get(ClientConfig{Provider: "mock", Model: "m2"})
	require.NoError(t, err)
	assert.Equal(t, 2, built)
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, err = cache.Get(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, built)
}

func TestGenOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    GenOptions
		wantErr bool
	}{
		{"empty", GenOptions{}, false},
		{"valid", GenOptions{Temperature: Float64(0.7), MaxTokens: 2000, TopP: Float64(0.9)}, false},
		{"temperature too high", GenOptions{Temperature: Float64(2.5)}, true},
		{"negative temperature", GenOptions{Temperature: Float64(-0.1)}, true},
		{"top_p out of range", GenOptions{TopP: Float64(1.5)}, true},
		{"negative max_tokens", GenOptions{MaxTokens: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultFactory(t *testing.T) {
	c, err := DefaultFactory(ClientConfig{Provider: "ollama", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.Name())

	c, err = DefaultFactory(ClientConfig{Provider: "openai", Model: "m", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())

	_, err = DefaultFactory(ClientConfig{Provider: "nope"})
	assert.Error(t, err)
}
