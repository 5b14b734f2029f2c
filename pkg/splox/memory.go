package splox

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"splox-go/internal/domain"
)

// MemoryService inspects and maintains agent context memories.
type MemoryService struct {
	c *Client
}

// MemoryRef addresses one context memory of an agent node.
type MemoryRef struct {
	AgentNodeID       string
	ContextMemoryID   string
	WorkflowVersionID string
}

func pageQuery(limit int, cursor string) url.Values {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return q
}

// List returns the memory instances of a workflow version.
func (s *MemoryService) List(ctx context.Context, workflowVersionID string, limit int, cursor string) (*MemoryListResponse, error) {
	var out MemoryListResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/chat-memories/%s", workflowVersionID), pageQuery(limit, cursor), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get pages through the messages of one memory. chatID is the context
// memory id.
func (s *MemoryService) Get(ctx context.Context, agentNodeID, chatID string, limit int, cursor string) (*MemoryGetResponse, error) {
	q := pageQuery(limit, cursor)
	q.Set("chat_id", chatID)
	var out MemoryGetResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/chat-memory/%s", agentNodeID), q, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize replaces older messages with a summary, keeping the last
// keepLastN when non-nil. An empty prompt uses the agent's default.
func (s *MemoryService) Summarize(ctx context.Context, ref MemoryRef, keepLastN *int, prompt string) (*MemoryActionResponse, error) {
	req := actionRequest(domain.MemorySummarize, ref)
	req.KeepLastN = keepLastN
	req.SummarizePrompt = prompt
	return s.Action(ctx, ref.AgentNodeID, req)
}

// Trim drops the oldest messages beyond maxMessages (server default 10).
func (s *MemoryService) Trim(ctx context.Context, ref MemoryRef, maxMessages *int) (*MemoryActionResponse, error) {
	req := actionRequest(domain.MemoryTrim, ref)
	req.MaxMessages = maxMessages
	return s.Action(ctx, ref.AgentNodeID, req)
}

func (s *MemoryService) Clear(ctx context.Context, ref MemoryRef) (*MemoryActionResponse, error) {
	return s.Action(ctx, ref.AgentNodeID, actionRequest(domain.MemoryClear, ref))
}

// Export returns every message of the memory in the response.
func (s *MemoryService) Export(ctx context.Context, ref MemoryRef) (*MemoryActionResponse, error) {
	return s.Action(ctx, ref.AgentNodeID, actionRequest(domain.MemoryExport, ref))
}

// Action posts a raw maintenance request for agentNodeID.
func (s *MemoryService) Action(ctx context.Context, agentNodeID string, req MemoryActionRequest) (*MemoryActionResponse, error) {
	var out MemoryActionResponse
	if err := s.c.t.DoJSON(ctx, http.MethodPost, pathf("/chat-memory/%s/actions", agentNodeID), nil, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a memory instance entirely.
func (s *MemoryService) Delete(ctx context.Context, ref MemoryRef) error {
	body := map[string]string{
		"memory_node_id":      ref.AgentNodeID,
		"workflow_version_id": ref.WorkflowVersionID,
	}
	return s.c.t.DoJSON(ctx, http.MethodDelete, pathf("/chat-memories/%s", ref.ContextMemoryID), nil, body, nil, nil)
}

func actionRequest(action domain.MemoryAction, ref MemoryRef) MemoryActionRequest {
	return MemoryActionRequest{
		Action:            action,
		ContextMemoryID:   ref.ContextMemoryID,
		WorkflowVersionID: ref.WorkflowVersionID,
	}
}
