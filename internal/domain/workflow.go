package domain

// Timestamps are kept as the RFC 3339 strings the server sends; callers
// that need time.Time parse them with time.Parse(time.RFC3339Nano, ...).

// WorkflowRequest is the status of one workflow run.
type WorkflowRequest struct {
	ID                      string         `json:"id"`
	WorkflowVersionID       string         `json:"workflow_version_id"`
	StartNodeID             string         `json:"start_node_id"`
	Status                  Status         `json:"status"`
	CreatedAt               string         `json:"created_at"`
	UserID                  string         `json:"user_id,omitempty"`
	BillingUserID           string         `json:"billing_user_id,omitempty"`
	ParentNodeExecutionID   string         `json:"parent_node_execution_id,omitempty"`
	ParentWorkflowRequestID string         `json:"parent_workflow_request_id,omitempty"`
	ChatID                  string         `json:"chat_id,omitempty"`
	Payload                 map[string]any `json:"payload,omitempty"`
	Metadata                map[string]any `json:"metadata,omitempty"`
	StartedAt               string         `json:"started_at,omitempty"`
	CompletedAt             string         `json:"completed_at,omitempty"`
}

// WorkflowRequestRequired lists the keys a workflow_request object must
// carry to be decoded from a stream payload.
var WorkflowRequestRequired = []string{"id", "workflow_version_id", "start_node_id", "status", "created_at"}

// NodeExecution is the status of one step inside a run.
type NodeExecution struct {
	ID                string         `json:"id"`
	WorkflowRequestID string         `json:"workflow_request_id"`
	NodeID            string         `json:"node_id"`
	WorkflowVersionID string         `json:"workflow_version_id"`
	Status            Status         `json:"status"`
	InputData         map[string]any `json:"input_data,omitempty"`
	OutputData        map[string]any `json:"output_data,omitempty"`
	AttemptCount      *int           `json:"attempt_count,omitempty"`
	CreatedAt         string         `json:"created_at,omitempty"`
	CompletedAt       string         `json:"completed_at,omitempty"`
	FailedAt          string         `json:"failed_at,omitempty"`
}

// NodeExecutionRequired lists the keys a node_execution object must carry.
var NodeExecutionRequired = []string{"id", "workflow_request_id", "node_id", "workflow_version_id", "status"}

// RunFile is a file attachment passed to a run.
type RunFile struct {
	URL         string         `json:"url"`
	ContentType string         `json:"content_type,omitempty"`
	FileName    string         `json:"file_name,omitempty"`
	FileSize    *int64         `json:"file_size,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// RunParams triggers a workflow run.
type RunParams struct {
	WorkflowVersionID string         `json:"workflow_version_id"`
	ChatID            string         `json:"chat_id"`
	StartNodeID       string         `json:"start_node_id"`
	Query             string         `json:"query"`
	Files             []RunFile      `json:"files,omitempty"`
	AdditionalParams  map[string]any `json:"additional_params,omitempty"`
	EndUserID         string         `json:"end_user_id,omitempty"`
}

// Validate reports missing required fields.
func (p RunParams) Validate() error {
	switch {
	case p.WorkflowVersionID == "":
		return NewDomainError("RunParams.Validate", ErrInvalidInput, "workflow_version_id is required")
	case p.ChatID == "":
		return NewDomainError("RunParams.Validate", ErrInvalidInput, "chat_id is required")
	case p.StartNodeID == "":
		return NewDomainError("RunParams.Validate", ErrInvalidInput, "start_node_id is required")
	}
	return nil
}

// RunResponse identifies a triggered run.
type RunResponse struct {
	WorkflowRequestID string `json:"workflow_request_id"`
}

// ExecutionTree is the hierarchical snapshot of a run.
type ExecutionTree struct {
	WorkflowRequestID string          `json:"workflow_request_id"`
	Status            Status          `json:"status"`
	CreatedAt         string          `json:"created_at"`
	CompletedAt       string          `json:"completed_at,omitempty"`
	Nodes             []ExecutionNode `json:"nodes"`
}

// ExecutionNode is one node of an ExecutionTree.
type ExecutionNode struct {
	ID              string           `json:"id"`
	NodeID          string           `json:"node_id"`
	Status          Status           `json:"status"`
	NodeLabel       string           `json:"node_label,omitempty"`
	NodeType        string           `json:"node_type,omitempty"`
	InputData       map[string]any   `json:"input_data,omitempty"`
	OutputData      map[string]any   `json:"output_data,omitempty"`
	CreatedAt       string           `json:"created_at,omitempty"`
	CompletedAt     string           `json:"completed_at,omitempty"`
	FailedAt        string           `json:"failed_at,omitempty"`
	AttemptCount    *int             `json:"attempt_count,omitempty"`
	ChildExecutions []ChildExecution `json:"child_executions,omitempty"`
	TotalChildren   *int             `json:"total_children,omitempty"`
	HasMoreChildren *bool            `json:"has_more_children,omitempty"`
}

// ChildExecution is a sub-run spawned by an execution node.
type ChildExecution struct {
	Index             int             `json:"index"`
	WorkflowRequestID string          `json:"workflow_request_id"`
	Status            Status          `json:"status"`
	Label             string          `json:"label,omitempty"`
	TargetNodeLabel   string          `json:"target_node_label,omitempty"`
	CreatedAt         string          `json:"created_at,omitempty"`
	CompletedAt       string          `json:"completed_at,omitempty"`
	Nodes             []ExecutionNode `json:"nodes,omitempty"`
}

// ExecutionTreeResponse wraps the tree returned by the execution-tree endpoint.
type ExecutionTreeResponse struct {
	ExecutionTree ExecutionTree `json:"execution_tree"`
}

// Walk visits every node of the tree depth-first, including nodes of child
// executions. Returning false stops the walk.
func (t *ExecutionTree) Walk(fn func(depth int, n *ExecutionNode) bool) {
	walkNodes(t.Nodes, 0, fn)
}

func walkNodes(nodes []ExecutionNode, depth int, fn func(int, *ExecutionNode) bool) bool {
	for i := range nodes {
		if !fn(depth, &nodes[i]) {
			return false
		}
		for _, child := range nodes[i].ChildExecutions {
			if !walkNodes(child.Nodes, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// Pagination is cursor-based paging metadata.
type Pagination struct {
	Limit      int    `json:"limit"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// HistoryResponse lists past runs.
type HistoryResponse struct {
	Data       []WorkflowRequest `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// WorkflowVersion is one version of a workflow definition.
type WorkflowVersion struct {
	ID            string         `json:"id"`
	WorkflowID    string         `json:"workflow_id"`
	VersionNumber int            `json:"version_number"`
	Name          string         `json:"name"`
	Status        string         `json:"status"`
	CreatedAt     string         `json:"created_at,omitempty"`
	UpdatedAt     string         `json:"updated_at,omitempty"`
	Description   string         `json:"description,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Workflow is a workflow definition owned by a user.
type Workflow struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	CreatedAt     string           `json:"created_at,omitempty"`
	UpdatedAt     string           `json:"updated_at,omitempty"`
	LatestVersion *WorkflowVersion `json:"latest_version,omitempty"`
	IsPublic      *bool            `json:"is_public,omitempty"`
}

// Node is a node of a workflow graph.
type Node struct {
	ID                string         `json:"id"`
	WorkflowVersionID string         `json:"workflow_version_id"`
	NodeType          string         `json:"node_type"`
	Label             string         `json:"label"`
	PosX              *float64       `json:"pos_x,omitempty"`
	PosY              *float64       `json:"pos_y,omitempty"`
	ParentID          string         `json:"parent_id,omitempty"`
	Extent            string         `json:"extent,omitempty"`
	Data              map[string]any `json:"data,omitempty"`
	CreatedAt         string         `json:"created_at,omitempty"`
	UpdatedAt         string         `json:"updated_at,omitempty"`
}

// Edge connects two nodes of a workflow graph.
type Edge struct {
	ID                string         `json:"id"`
	WorkflowVersionID string         `json:"workflow_version_id"`
	Source            string         `json:"source"`
	Target            string         `json:"target"`
	EdgeType          string         `json:"edge_type"`
	SourceHandle      string         `json:"source_handle,omitempty"`
	Data              map[string]any `json:"data,omitempty"`
	CreatedAt         string         `json:"created_at,omitempty"`
	UpdatedAt         string         `json:"updated_at,omitempty"`
}

// WorkflowFull is a workflow with its version graph.
type WorkflowFull struct {
	Workflow        Workflow        `json:"workflow"`
	WorkflowVersion WorkflowVersion `json:"workflow_version"`
	Nodes           []Node          `json:"nodes"`
	Edges           []Edge          `json:"edges"`
}

type WorkflowListResponse struct {
	Workflows  []Workflow `json:"workflows"`
	Pagination Pagination `json:"pagination"`
}

type StartNodesResponse struct {
	Nodes []Node `json:"nodes"`
}

type WorkflowVersionListResponse struct {
	Versions []WorkflowVersion `json:"versions"`
}

// ListOptions pages through cursor-based listings.
type ListOptions struct {
	Limit  int
	Cursor string
	Search string
}

// SecretMetadata describes a stored secret. Values are never returned.
type SecretMetadata struct {
	Key       string `json:"key"`
	Type      string `json:"type,omitempty"`
	EndUserID string `json:"end_user_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// SecretActionResponse confirms a secret write or delete.
type SecretActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Key     string `json:"key,omitempty"`
}

// EndUserSecretsSummary groups secret keys by end user.
type EndUserSecretsSummary struct {
	EndUserID   string   `json:"end_user_id"`
	SecretCount int      `json:"secret_count"`
	Keys        []string `json:"keys,omitempty"`
}

// SecretsLinkResponse is a public link for an end user to submit secrets.
type SecretsLinkResponse struct {
	Link      string `json:"link"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at,omitempty"`
}
