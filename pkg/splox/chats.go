package splox

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultChatResourceType = "api"
	defaultHistoryLimit     = 50
)

// ChatsService manages chat sessions and their message history.
type ChatsService struct {
	c *Client
}

// Create starts a chat session. An empty ResourceType becomes "api".
func (s *ChatsService) Create(ctx context.Context, params CreateChatParams) (*Chat, error) {
	if params.ResourceType == "" {
		params.ResourceType = defaultChatResourceType
	}
	var out Chat
	if err := s.c.t.DoJSON(ctx, http.MethodPost, "/chats", nil, params, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one chat session.
func (s *ChatsService) Get(ctx context.Context, chatID string) (*Chat, error) {
	var out Chat
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/chats/%s", chatID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Listen opens the live message stream of a chat. Chat events carry their
// payload in StreamEvent.Extra; use Type and Delta to read them.
func (s *ChatsService) Listen(ctx context.Context, chatID string) (*Stream, error) {
	return s.c.t.Stream(ctx, pathf("/chat-internal-messages/%s/listen", chatID), nil)
}

// ListForResource lists the chats attached to one resource.
func (s *ChatsService) ListForResource(ctx context.Context, resourceType, resourceID string) (*ChatListResponse, error) {
	var out ChatListResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/chats/%s/%s", resourceType, resourceID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a chat session.
func (s *ChatsService) Delete(ctx context.Context, chatID string) error {
	return s.c.t.DoJSON(ctx, http.MethodDelete, pathf("/chats/%s", chatID), nil, nil, nil, nil)
}

// GetHistory returns up to limit messages (50 when limit <= 0). before is
// an RFC 3339 timestamp cursor; empty means the latest messages.
func (s *ChatsService) GetHistory(ctx context.Context, chatID string, limit int, before string) (*ChatHistoryResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if before != "" {
		q.Set("before", before)
	}
	var out ChatHistoryResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/chat-history/%s/paginated", chatID), q, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteHistory removes every message of a chat.
func (s *ChatsService) DeleteHistory(ctx context.Context, chatID string) error {
	return s.c.t.DoJSON(ctx, http.MethodDelete, pathf("/chat-history/%s", chatID), nil, nil, nil, nil)
}
