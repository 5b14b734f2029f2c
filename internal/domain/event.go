package domain

import (
	"encoding/json"
	"strconv"
)

// EventKind discriminates StreamEvent.
type EventKind int

const (
	// EventStatusUpdate is a JSON object payload. Either status field may be
	// nil; an empty object is still a valid status tick.
	EventStatusUpdate EventKind = iota
	// EventKeepalive is the literal "keepalive" payload.
	EventKeepalive
	// EventUnparsed is a payload that was not a JSON object.
	EventUnparsed
)

func (k EventKind) String() string {
	switch k {
	case EventStatusUpdate:
		return "status_update"
	case EventKeepalive:
		return "keepalive"
	case EventUnparsed:
		return "unparsed"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Chat event types carried in the "type" key of status updates.
const (
	ChatEventTextDelta            = "text_delta"
	ChatEventReasoningDelta       = "reasoning_delta"
	ChatEventToolCallStart        = "tool_call_start"
	ChatEventToolCallDelta        = "tool_call_delta"
	ChatEventToolStart            = "tool_start"
	ChatEventToolComplete         = "tool_complete"
	ChatEventToolError            = "tool_error"
	ChatEventToolApprovalRequest  = "tool_approval_request"
	ChatEventToolApprovalResponse = "tool_approval_response"
	ChatEventUserMessage          = "user_message"
	ChatEventDone                 = "done"
	ChatEventStopped              = "stopped"
	ChatEventError                = "error"
)

// StreamEvent is one decoded payload from an execution or chat stream.
//
// Keepalive and unparsed events carry only Raw. Status updates carry the
// optional workflow request and node execution plus every other top-level
// key of the payload in Extra, byte for byte.
type StreamEvent struct {
	Kind EventKind
	Raw  string

	WorkflowRequest *WorkflowRequest
	NodeExecution   *NodeExecution
	Extra           map[string]json.RawMessage
}

// IsKeepalive reports whether e is a heartbeat.
func (e StreamEvent) IsKeepalive() bool { return e.Kind == EventKeepalive }

// RunStatus returns the workflow request status, if the event carries one.
func (e StreamEvent) RunStatus() (Status, bool) {
	if e.WorkflowRequest == nil {
		return "", false
	}
	return e.WorkflowRequest.Status, true
}

// Terminal reports whether the event carries a workflow request in a
// terminal status.
func (e StreamEvent) Terminal() bool {
	s, ok := e.RunStatus()
	return ok && s.Terminal()
}

// Type is the chat event type ("text_delta", "tool_start", ...).
func (e StreamEvent) Type() string { return e.stringField("type") }

// RunID is the run identifier attached to chat events.
func (e StreamEvent) RunID() string { return e.stringField("run_id") }

// Delta is the streamed text chunk of a text_delta event.
func (e StreamEvent) Delta() string { return e.stringField("delta") }

// ReasoningDelta is the streamed chunk of a reasoning_delta event.
func (e StreamEvent) ReasoningDelta() string { return e.stringField("reasoning_delta") }

// ReasoningType labels the kind of reasoning chunk.
func (e StreamEvent) ReasoningType() string { return e.stringField("reasoning_type") }

// ToolCallID identifies the tool call of tool_* events.
func (e StreamEvent) ToolCallID() string { return e.stringField("tool_call_id") }

// ToolName is the name of the tool being called.
func (e StreamEvent) ToolName() string { return e.stringField("tool_name") }

// ToolArgsDelta is a chunk of the JSON arguments of a tool_call_delta event.
func (e StreamEvent) ToolArgsDelta() string { return e.stringField("tool_args_delta") }

// Text is the full text carried by user_message events.
func (e StreamEvent) Text() string { return e.stringField("text") }

// Message is the human-readable message some chat events carry.
func (e StreamEvent) Message() string { return e.stringField("message") }

// Error is the error text of error and tool_error events.
func (e StreamEvent) Error() string { return e.stringField("error") }

// ToolArgs is the raw "args" value of tool approval requests.
func (e StreamEvent) ToolArgs() json.RawMessage { return e.Extra["args"] }

// ToolResult is the raw "result" value of tool_complete events.
func (e StreamEvent) ToolResult() json.RawMessage { return e.Extra["result"] }

// Iteration returns the agent loop iteration, if present.
func (e StreamEvent) Iteration() (int, bool) {
	raw, ok := e.Extra["iteration"]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// Approved returns the decision of a tool_approval_response event.
func (e StreamEvent) Approved() (approved, ok bool) {
	raw, present := e.Extra["approved"]
	if !present {
		return false, false
	}
	if err := json.Unmarshal(raw, &approved); err != nil {
		return false, false
	}
	return approved, true
}

func (e StreamEvent) stringField(key string) string {
	raw, ok := e.Extra[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
