package stream

import (
	"encoding/json"
	"testing"
)

func TestDecode_EventTypes(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		check func(t *testing.T, ev *StreamEvent)
	}{
		{
			name: "session event",
			line: `data: {"type":"session","session_id":"s1"}`,
			check: func(t *testing.T, ev *StreamEvent) {
				if ev.Type != EventSession || ev.SessionID != "s1" {
					t.Errorf("got %+v", ev)
				}
			},
		},
		{
			name: "chunk event",
			line: `data: {"type":"chunk","text":"Hello","session_id":"s1"}`,
			check: func(t *testing.T, ev *StreamEvent) {
				if ev.Type != EventChunk || ev.Text != "Hello" {
					t.Errorf("got %+v", ev)
				}
			},
		},
		{
			name: "trace event with reasoning",
			line: `data: {"type":"trace","data":{"agent":"Supervisor","supervisor_id":"sup1","reasoning":"Thinking"}}`,
			check: func(t *testing.T, ev *StreamEvent) {
				if ev.Type != EventTrace {
					t.Fatalf("type = %q", ev.Type)
				}
				if ev.Data == nil || ev.Data.Reasoning != "Thinking" || ev.Data.SupervisorID != "sup1" {
					t.Errorf("data = %+v", ev.Data)
				}
			},
		},
		{
			name: "trace event with collaborator response",
			line: `data: {"type":"trace","data":{"collaborator_response":{"agent":"JobMarketAgent","output":"Found 10 jobs"},"agent_call_id":"call1"}}`,
			check: func(t *testing.T, ev *StreamEvent) {
				resp := ev.Data.CollaboratorResponse
				if resp == nil || resp.Agent != "JobMarketAgent" || resp.Output != "Found 10 jobs" {
					t.Errorf("collaborator_response = %+v", resp)
				}
				if ev.Data.AgentCallID != "call1" {
					t.Errorf("agent_call_id = %q", ev.Data.AgentCallID)
				}
			},
		},
		{
			name: "done event",
			line: `data: {"type":"done"}`,
			check: func(t *testing.T, ev *StreamEvent) {
				if ev.Type != EventDone {
					t.Errorf("type = %q", ev.Type)
				}
			},
		},
		{
			name: "error event",
			line: `data: {"type":"error","message":"Rate limited"}`,
			check: func(t *testing.T, ev *StreamEvent) {
				if ev.Type != EventError || ev.Message != "Rate limited" {
					t.Errorf("got %+v", ev)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.line)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if ev == nil {
				t.Fatal("Decode returned nil event")
			}
			tt.check(t, ev)
		})
	}
}

func TestDecode_IgnoresNonCandidateLines(t *testing.T) {
	for _, line := range []string{"", "   ", ": keep-alive", "event: message", "data:"} {
		ev, err := Decode(line)
		if err != nil {
			t.Errorf("Decode(%q) error: %v", line, err)
		}
		if ev != nil {
			t.Errorf("Decode(%q) = %+v, want nil", line, ev)
		}
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"truncated json", `data: {"type":"ch`},
		{"not json", `data: hello`},
		{"missing discriminant", `data: {"session_id":"s1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.line)
			if err == nil {
				t.Fatalf("Decode(%q) = %+v, want error", tt.line, ev)
			}
		})
	}
}

// A malformed line must not prevent decoding of subsequent lines.
func TestDecode_ContinuesAfterMalformedLine(t *testing.T) {
	lines := []string{
		`data: {"type":"chunk","text":"ok"`,
		`data: {"type":"done"}`,
	}
	if _, err := Decode(lines[0]); err == nil {
		t.Fatal("expected error on malformed line")
	}
	ev, err := Decode(lines[1])
	if err != nil || ev == nil || ev.Type != EventDone {
		t.Fatalf("next line not decoded: ev=%+v err=%v", ev, err)
	}
}

// Scenario: the literal bytes are delivered as two separate chunks and still
// decode to exactly one chunk event with the full text.
func TestFramerDecode_SplitPayload(t *testing.T) {
	f := &Framer{}
	var events []*StreamEvent

	for _, chunk := range []string{`data: {"type":"ch`, "unk\",\"text\":\"Hello\"}\n"} {
		for _, line := range f.Feed([]byte(chunk)) {
			ev, err := Decode(line)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if ev != nil {
				events = append(events, ev)
			}
		}
	}

	if len(events) != 1 {
		t.Fatalf("decoded %d events, want 1", len(events))
	}
	if events[0].Type != EventChunk || events[0].Text != "Hello" {
		t.Errorf("got %+v", events[0])
	}
}

func TestToolCall_RetainsMetadata(t *testing.T) {
	raw := `{"type":"function","name":"search_jobs","status":"completed","result":"10 jobs","region":"TX","attempt":2}`

	var tc ToolCall
	if err := json.Unmarshal([]byte(raw), &tc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if tc.Name != "search_jobs" || tc.Status != ToolCallCompleted || tc.Result != "10 jobs" {
		t.Errorf("known fields = %+v", tc)
	}
	if tc.Meta["region"] != "TX" {
		t.Errorf("metadata not retained: %v", tc.Meta)
	}

	// Round-trip keeps both known fields and metadata.
	out, err := json.Marshal(tc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-unmarshal failed: %v", err)
	}
	if back["name"] != "search_jobs" || back["region"] != "TX" {
		t.Errorf("round-trip lost fields: %v", back)
	}
}
