// Package sse decodes the Splox execution event stream.
//
// The server frames every event as a single line of the form
//
//	data: <payload>
//
// where payload is the literal keepalive token or a JSON object. Blank
// lines, comments and other SSE fields carry no event.
package sse

import (
	"encoding/json"
	"strings"

	"splox-go/internal/domain"
)

const (
	dataPrefix       = "data:"
	keepalivePayload = "keepalive"

	keyWorkflowRequest = "workflow_request"
	keyNodeExecution   = "node_execution"
)

// ParseLine classifies one reassembled line. It returns the trimmed payload
// of a data line, or ok=false for anything that carries no event.
func ParseLine(line string) (payload string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	rest, found := strings.CutPrefix(line, dataPrefix)
	if !found {
		return "", false
	}
	payload = strings.TrimSpace(rest)
	if payload == "" {
		return "", false
	}
	return payload, true
}

// DecodePayload maps a payload to a StreamEvent. It never fails: anything
// that is not a JSON object becomes an EventUnparsed, and a recognised
// sub-object that is null, empty, missing a required key or of the wrong
// shape is left nil.
func DecodePayload(payload string) domain.StreamEvent {
	if payload == keepalivePayload {
		return domain.StreamEvent{Kind: domain.EventKeepalive, Raw: payload}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil || fields == nil {
		return domain.StreamEvent{Kind: domain.EventUnparsed, Raw: payload}
	}

	ev := domain.StreamEvent{
		Kind:  domain.EventStatusUpdate,
		Extra: make(map[string]json.RawMessage, len(fields)),
	}
	for key, raw := range fields {
		switch key {
		case keyWorkflowRequest:
			ev.WorkflowRequest = decodeObject[domain.WorkflowRequest](raw, domain.WorkflowRequestRequired)
		case keyNodeExecution:
			ev.NodeExecution = decodeObject[domain.NodeExecution](raw, domain.NodeExecutionRequired)
		default:
			ev.Extra[key] = raw
		}
	}
	return ev
}

// DecodeLine composes ParseLine and DecodePayload.
func DecodeLine(line string) (domain.StreamEvent, bool) {
	payload, ok := ParseLine(line)
	if !ok {
		return domain.StreamEvent{}, false
	}
	return DecodePayload(payload), true
}

func decodeObject[T any](raw json.RawMessage, required []string) *T {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || len(probe) == 0 {
		return nil
	}
	for _, key := range required {
		v, ok := probe[key]
		if !ok || string(v) == "null" {
			return nil
		}
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}
