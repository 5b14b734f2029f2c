package splox

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMChat(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		body = decodeBody(t, r)
		writeJSON(w, map[string]any{
			"id":      "cmpl-1",
			"model":   body["model"],
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "Hi!"}, "finish_reason": "stop"}},
			"usage":   map[string]any{"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5},
		})
	})
	c := newTestClient(t, mux)

	msgs := []ChatCompletionMessage{{Role: "user", Content: "Hello"}}
	resp, err := c.LLM.Chat(context.Background(), "openai/gpt-4o", msgs, map[string]any{"temperature": 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Hi!", resp.Text())
	assert.Equal(t, 5, resp.Usage.TotalTokens)

	assert.Equal(t, "openai/gpt-4o", body["model"])
	assert.Equal(t, 0.2, body["temperature"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "Hello"}}, body["messages"])
}

func TestLLMChatExtraOverrides(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		body = decodeBody(t, r)
		writeJSON(w, map[string]any{"id": "x"})
	})
	c := newTestClient(t, mux)

	_, err := c.LLM.Chat(context.Background(), "a", nil, map[string]any{"model": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", body["model"])
}
