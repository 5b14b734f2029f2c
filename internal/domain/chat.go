package domain

// Chat is a chat session bound to a resource.
type Chat struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	UserID           string         `json:"user_id,omitempty"`
	ResourceType     string         `json:"resource_type,omitempty"`
	ResourceID       string         `json:"resource_id,omitempty"`
	IsPublic         *bool          `json:"is_public,omitempty"`
	PublicShareToken string         `json:"public_share_token,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        string         `json:"created_at,omitempty"`
	UpdatedAt        string         `json:"updated_at,omitempty"`
}

// ChatMessageContent is one content part of a chat message. The server
// uses camelCase for the tool keys.
type ChatMessageContent struct {
	Type       string         `json:"type"`
	Text       string         `json:"text,omitempty"`
	ToolCallID string         `json:"toolCallId,omitempty"`
	ToolName   string         `json:"toolName,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	Result     any            `json:"result,omitempty"`
	Reasoning  string         `json:"reasoning,omitempty"`
}

type ChatMessage struct {
	ID        string               `json:"id"`
	ChatID    string               `json:"chat_id"`
	Role      string               `json:"role"`
	Content   []ChatMessageContent `json:"content"`
	ParentID  string               `json:"parent_id,omitempty"`
	Status    map[string]any       `json:"status,omitempty"`
	Metadata  map[string]any       `json:"metadata,omitempty"`
	Files     []map[string]any     `json:"files,omitempty"`
	CreatedAt string               `json:"created_at,omitempty"`
	UpdatedAt string               `json:"updated_at,omitempty"`
}

// CreateChatParams creates a chat session. ResourceType defaults to "api".
type CreateChatParams struct {
	Name         string         `json:"name"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type ChatListResponse struct {
	Chats []Chat `json:"chats"`
}

// ChatHistoryResponse is one page of messages, newest page first.
type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
	HasMore  bool          `json:"has_more"`
}

// EventResponse acknowledges a webhook event.
type EventResponse struct {
	OK      bool   `json:"ok"`
	EventID string `json:"event_id"`
}
