package splox

import (
	"splox-go/internal/domain"
	"splox-go/internal/runwait"
	"splox-go/internal/sse"
	"splox-go/internal/transport"
)

// Streaming.
type (
	Stream      = sse.Stream
	StreamEvent = domain.StreamEvent
	EventKind   = domain.EventKind
	Status      = domain.Status
)

const (
	EventStatusUpdate = domain.EventStatusUpdate
	EventKeepalive    = domain.EventKeepalive
	EventUnparsed     = domain.EventUnparsed

	StatusPending    = domain.StatusPending
	StatusInProgress = domain.StatusInProgress
	StatusCompleted  = domain.StatusCompleted
	StatusFailed     = domain.StatusFailed
	StatusStopped    = domain.StatusStopped
)

// Chat stream event types, as returned by StreamEvent.Type.
const (
	ChatEventTextDelta            = domain.ChatEventTextDelta
	ChatEventReasoningDelta       = domain.ChatEventReasoningDelta
	ChatEventToolCallStart        = domain.ChatEventToolCallStart
	ChatEventToolCallDelta        = domain.ChatEventToolCallDelta
	ChatEventToolStart            = domain.ChatEventToolStart
	ChatEventToolComplete         = domain.ChatEventToolComplete
	ChatEventToolError            = domain.ChatEventToolError
	ChatEventToolApprovalRequest  = domain.ChatEventToolApprovalRequest
	ChatEventToolApprovalResponse = domain.ChatEventToolApprovalResponse
	ChatEventUserMessage          = domain.ChatEventUserMessage
	ChatEventDone                 = domain.ChatEventDone
	ChatEventStopped              = domain.ChatEventStopped
	ChatEventError                = domain.ChatEventError
)

// Run and wait.
const (
	RunTriggering = runwait.StateTriggering
	RunStreaming  = runwait.StateStreaming
	RunResolving  = runwait.StateResolving
	RunDone       = runwait.StateDone
	RunTimedOut   = runwait.StateTimedOut
	RunFailed     = runwait.StateFailed
)

type (
	RunState         = runwait.State
	RunAndWaitResult = runwait.Result[*ExecutionTreeResponse]
)

// Transport tuning.
type (
	PoolConfig      = transport.PoolConfig
	BreakerConfig   = transport.BreakerConfig
	RateLimitConfig = transport.RateLimitConfig
)

// Workflows.
type (
	WorkflowRequest             = domain.WorkflowRequest
	NodeExecution               = domain.NodeExecution
	RunFile                     = domain.RunFile
	RunParams                   = domain.RunParams
	RunResponse                 = domain.RunResponse
	ExecutionTree               = domain.ExecutionTree
	ExecutionNode               = domain.ExecutionNode
	ChildExecution              = domain.ChildExecution
	ExecutionTreeResponse       = domain.ExecutionTreeResponse
	Pagination                  = domain.Pagination
	HistoryResponse             = domain.HistoryResponse
	Workflow                    = domain.Workflow
	WorkflowVersion             = domain.WorkflowVersion
	WorkflowFull                = domain.WorkflowFull
	Node                        = domain.Node
	Edge                        = domain.Edge
	WorkflowListResponse        = domain.WorkflowListResponse
	StartNodesResponse          = domain.StartNodesResponse
	WorkflowVersionListResponse = domain.WorkflowVersionListResponse
	ListOptions                 = domain.ListOptions
	SecretMetadata              = domain.SecretMetadata
	SecretActionResponse        = domain.SecretActionResponse
	EndUserSecretsSummary       = domain.EndUserSecretsSummary
	SecretsLinkResponse         = domain.SecretsLinkResponse
)

// Chats and events.
type (
	Chat                = domain.Chat
	ChatMessage         = domain.ChatMessage
	ChatMessageContent  = domain.ChatMessageContent
	CreateChatParams    = domain.CreateChatParams
	ChatListResponse    = domain.ChatListResponse
	ChatHistoryResponse = domain.ChatHistoryResponse
	EventResponse       = domain.EventResponse
)

// Billing.
type (
	UserBalance                = domain.UserBalance
	BalanceTransaction         = domain.BalanceTransaction
	TransactionPagination      = domain.TransactionPagination
	TransactionHistoryResponse = domain.TransactionHistoryResponse
	TransactionFilter          = domain.TransactionFilter
	ActivityStats              = domain.ActivityStats
	DailyActivity              = domain.DailyActivity
	DailyActivityResponse      = domain.DailyActivityResponse
)

// Memory.
type (
	MemoryMessage        = domain.MemoryMessage
	MemoryInstance       = domain.MemoryInstance
	MemoryListResponse   = domain.MemoryListResponse
	MemoryGetResponse    = domain.MemoryGetResponse
	MemoryAction         = domain.MemoryAction
	MemoryActionRequest  = domain.MemoryActionRequest
	MemoryActionResponse = domain.MemoryActionResponse
)

// MCP and LLM.
type (
	MCPCatalogItem            = domain.MCPCatalogItem
	MCPCatalogListResponse    = domain.MCPCatalogListResponse
	CatalogOptions            = domain.CatalogOptions
	MCPConnection             = domain.MCPConnection
	MCPConnectionListResponse = domain.MCPConnectionListResponse
	ChatCompletionMessage     = domain.ChatCompletionMessage
	ChatCompletionChoice      = domain.ChatCompletionChoice
	ChatCompletionUsage       = domain.ChatCompletionUsage
	ChatCompletion            = domain.ChatCompletion
)

// Memory actions.
const (
	MemorySummarize = domain.MemorySummarize
	MemoryTrim      = domain.MemoryTrim
	MemoryClear     = domain.MemoryClear
	MemoryExport    = domain.MemoryExport
)
