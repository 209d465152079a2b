package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
)

func TestGenerate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Dear Bob"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", srv.URL+"/v1", "gpt-test", 100, 0, 1, zap.NewNop())
	out, err := c.Generate(context.Background(), "draft a reply")
	require.NoError(t, err)

	assert.Equal(t, "Dear Bob", out)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "draft a reply", got.Messages[0].Content)
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL+"/v1", "gpt-test", 0, 0, 1, zap.NewNop())
	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrGeneration)
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL+"/v1", "gpt-test", 0, 0, 1, zap.NewNop())
	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrGeneration)
}

func TestGenerate_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "x",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": ""}, "finish_reason": "length"}]
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL+"/v1", "gpt-test", 0, 0, 1, zap.NewNop())
	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrGeneration)
}
