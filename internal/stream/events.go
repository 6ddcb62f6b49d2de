// Package stream decodes the planner backend's SSE-style event stream into
// typed events. It owns the wire protocol only: line framing across arbitrary
// chunk boundaries and per-line decoding of the JSON event envelope.
package stream

import "encoding/json"

// Event type discriminants carried in the envelope's "type" field.
const (
	EventSession = "session"
	EventChunk   = "chunk"
	EventTrace   = "trace"
	EventDone    = "done"
	EventError   = "error"
)

// StreamEvent is the JSON envelope for one planner stream event. Exactly one
// payload field is meaningful per type: session_id for "session", text for
// "chunk", data for "trace", message for "error".
type StreamEvent struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Text      string      `json:"text,omitempty"`
	Data      *TraceEvent `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// TraceEvent is the payload of a "trace" StreamEvent: one increment of agent
// activity reported by the supervisor or a collaborator.
type TraceEvent struct {
	Agent                string                `json:"agent,omitempty"`
	Status               string                `json:"status,omitempty"`
	Reasoning            string                `json:"reasoning,omitempty"`
	CallingCollaborator  string                `json:"calling_collaborator,omitempty"`
	InputText            string                `json:"input_text,omitempty"`
	CollaboratorResponse *CollaboratorResponse `json:"collaborator_response,omitempty"`
	ToolCalls            []ToolCall            `json:"tool_calls,omitempty"`
	SupervisorID         string                `json:"supervisor_id,omitempty"`
	AgentCallID          string                `json:"agent_call_id,omitempty"`
}

// CollaboratorResponse carries a collaborator's final output back to the
// supervisor turn that invoked it.
type CollaboratorResponse struct {
	Agent  string `json:"agent,omitempty"`
	Output string `json:"output,omitempty"`
}

// Tool call lifecycle statuses.
const (
	ToolCallCalling   = "calling"
	ToolCallCompleted = "completed"
	ToolCallFailed    = "failed"
)

// ToolCall describes one tool invocation reported in a trace. The protocol
// attaches free-form metadata next to the known fields; unknown keys are
// retained in Meta so nothing is lost between decode and display.
type ToolCall struct {
	Type   string
	Name   string
	Result string
	Status string
	Meta   map[string]any
}

// UnmarshalJSON decodes the known fields and keeps the rest in Meta.
func (t *ToolCall) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Type = stringField(raw, "type")
	t.Name = stringField(raw, "name")
	t.Result = stringField(raw, "result")
	t.Status = stringField(raw, "status")
	if len(raw) > 0 {
		t.Meta = raw
	} else {
		t.Meta = nil
	}
	return nil
}

// MarshalJSON re-merges Meta with the known fields so records round-trip.
func (t ToolCall) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Meta)+4)
	for k, v := range t.Meta {
		out[k] = v
	}
	if t.Type != "" {
		out["type"] = t.Type
	}
	if t.Name != "" {
		out["name"] = t.Name
	}
	if t.Result != "" {
		out["result"] = t.Result
	}
	if t.Status != "" {
		out["status"] = t.Status
	}
	return json.Marshal(out)
}

// stringField pops a string value out of raw, tolerating absent or
// non-string values.
func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	delete(raw, key)
	s, _ := v.(string)
	return s
}
