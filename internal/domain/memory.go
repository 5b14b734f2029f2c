package domain

// MemoryMessage is one message stored in an agent's context memory.
type MemoryMessage struct {
	ID                string           `json:"id"`
	Role              string           `json:"role"`
	Content           any              `json:"content,omitempty"`
	ContextMemoryID   string           `json:"context_memory_id,omitempty"`
	AgentNodeID       string           `json:"agent_node_id,omitempty"`
	WorkflowVersionID string           `json:"workflow_version_id,omitempty"`
	ToolCalls         []map[string]any `json:"tool_calls,omitempty"`
	ToolCallID        string           `json:"tool_call_id,omitempty"`
	Files             []map[string]any `json:"files,omitempty"`
	CreatedAt         string           `json:"created_at,omitempty"`
	UpdatedAt         string           `json:"updated_at,omitempty"`
}

// MemoryInstance is one context memory of a workflow version.
type MemoryInstance struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	WorkflowVersionID string `json:"workflow_version_id"`
	ChatID            string `json:"chat_id"`
	MemoryNodeID      string `json:"memory_node_id"`
	MemoryNodeLabel   string `json:"memory_node_label"`
	ContextSize       int    `json:"context_size"`
	MessageCount      int    `json:"message_count"`
	CreatedAt         string `json:"created_at,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

type MemoryListResponse struct {
	Chats      []MemoryInstance `json:"chats"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

type MemoryGetResponse struct {
	Messages   []MemoryMessage `json:"messages"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
	Limit      int             `json:"limit"`
}

// MemoryAction names a memory maintenance action.
type MemoryAction string

const (
	MemorySummarize MemoryAction = "summarize"
	MemoryTrim      MemoryAction = "trim"
	MemoryClear     MemoryAction = "clear"
	MemoryExport    MemoryAction = "export"
)

// MemoryActionRequest is the body of POST /chat-memory/{node}/actions.
type MemoryActionRequest struct {
	Action            MemoryAction `json:"action"`
	ContextMemoryID   string       `json:"context_memory_id"`
	WorkflowVersionID string       `json:"workflow_version_id"`
	KeepLastN         *int         `json:"keep_last_n,omitempty"`
	SummarizePrompt   string       `json:"summarize_prompt,omitempty"`
	MaxMessages       *int         `json:"max_messages,omitempty"`
}

type MemoryActionResponse struct {
	Action         string          `json:"action"`
	Message        string          `json:"message"`
	DeletedCount   int             `json:"deleted_count"`
	Summary        string          `json:"summary,omitempty"`
	Messages       []MemoryMessage `json:"messages,omitempty"`
	RemainingCount int             `json:"remaining_count"`
}
