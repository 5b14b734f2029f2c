package splox

import (
	"context"
	"net/http"
)

// LLMService calls the OpenAI-compatible completion endpoint.
type LLMService struct {
	c *Client
}

// Chat sends a chat completion request. extra carries additional
// parameters such as temperature or max_tokens; its keys override model
// and messages.
func (s *LLMService) Chat(ctx context.Context, model string, messages []ChatCompletionMessage, extra map[string]any) (*ChatCompletion, error) {
	body := make(map[string]any, len(extra)+2)
	body["model"] = model
	body["messages"] = messages
	for k, v := range extra {
		body[k] = v
	}
	var out ChatCompletion
	if err := s.c.t.DoJSON(ctx, http.MethodPost, "/chat/completions", nil, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
