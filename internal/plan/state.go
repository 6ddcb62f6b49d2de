// Package plan drives one career-planning run against the planner backend:
// it opens the streaming HTTP request, feeds every chunk through the
// framing/decoding/aggregation pipeline, and tracks the run's lifecycle in a
// pure, reducer-style RunState.
package plan

import (
	"strings"

	"career-spark/internal/stream"
)

// AgentCoreStatusComplete marks a plan assembled by the AgentCore supervisor.
const AgentCoreStatusComplete = "complete"

// Result describes a completed plan run.
type Result struct {
	Goal            string `json:"goal"`
	SessionID       string `json:"session_id"`
	AgentCoreStatus string `json:"agentcore_status"`
}

// RunState is the lifecycle state of one run: idle → running → done/error.
// Values are immutable from the caller's perspective; Reduce returns an
// updated copy.
type RunState struct {
	Goal      string
	SessionID string
	Running   bool
	Result    *Result
	Err       string

	// chunks accumulates streamed response text append-only; joined lazily
	// so long responses stay amortized O(1) per delta.
	chunks        []string
	sessionPinned bool
}

// NewRunState starts a running state for one goal. sessionID is the
// caller-supplied id, used unless the stream announces its own.
func NewRunState(goal, sessionID string) RunState {
	return RunState{Goal: goal, SessionID: sessionID, Running: true}
}

// ResponseText returns the accumulated streamed response text.
func (s RunState) ResponseText() string {
	return strings.Join(s.chunks, "")
}

// Reduce folds one decoded event into the state. It is pure: the input state
// is not modified, and events after a terminal transition are ignored.
func (s RunState) Reduce(ev *stream.StreamEvent) RunState {
	if ev == nil || !s.Running {
		return s
	}

	switch ev.Type {
	case stream.EventSession:
		// The first session event pins the run's id; the caller-supplied id
		// is only a fallback.
		if !s.sessionPinned && ev.SessionID != "" {
			s.SessionID = ev.SessionID
			s.sessionPinned = true
		}

	case stream.EventChunk:
		if ev.Text != "" {
			s.chunks = append(s.chunks[:len(s.chunks):len(s.chunks)], ev.Text)
		}

	case stream.EventDone:
		s.Running = false
		s.Result = &Result{
			Goal:            s.Goal,
			SessionID:       s.SessionID,
			AgentCoreStatus: AgentCoreStatusComplete,
		}

	case stream.EventError:
		msg := ev.Message
		if msg == "" {
			msg = "planner reported an error"
		}
		return s.Fail(msg)
	}

	return s
}

// Fail marks the run terminally failed. Aggregator state built so far is
// retained for display, never rolled back.
func (s RunState) Fail(msg string) RunState {
	s.Running = false
	s.Err = msg
	return s
}
