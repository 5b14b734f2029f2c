package domain

// ChatCompletionMessage is an OpenAI-compatible chat message.
type ChatCompletionMessage struct {
	Role      string           `json:"role"`
	Content   any              `json:"content"`
	Name      string           `json:"name,omitempty"`
	ToolCalls []map[string]any `json:"tool_calls,omitempty"`
}

type ChatCompletionChoice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason,omitempty"`
}

type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletion is the response of POST /chat/completions.
type ChatCompletion struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object,omitempty"`
	Created int64                  `json:"created,omitempty"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   *ChatCompletionUsage   `json:"usage,omitempty"`
}

// Text returns the content of the first choice when it is a plain string.
func (c *ChatCompletion) Text() string {
	if len(c.Choices) == 0 {
		return ""
	}
	s, _ := c.Choices[0].Message.Content.(string)
	return s
}
