package plan

import (
	"testing"

	"career-spark/internal/stream"
)

func TestReduceSessionPinsOnce(t *testing.T) {
	s := NewRunState("goal", "fallback")
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventSession, SessionID: "s1"})
	if s.SessionID != "s1" {
		t.Fatalf("SessionID = %q, want s1", s.SessionID)
	}
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventSession, SessionID: "s2"})
	if s.SessionID != "s1" {
		t.Fatalf("second session event repinned id to %q", s.SessionID)
	}
}

func TestReduceChunkAccumulation(t *testing.T) {
	s := NewRunState("goal", "")
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventChunk, Text: "Hello"})
	mid := s
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventChunk, Text: ", world"})
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventChunk, Text: ""})

	if got := s.ResponseText(); got != "Hello, world" {
		t.Fatalf("ResponseText = %q, want %q", got, "Hello, world")
	}
	// Earlier state values must not observe later appends.
	if got := mid.ResponseText(); got != "Hello" {
		t.Fatalf("prior state ResponseText = %q, want %q", got, "Hello")
	}
}

func TestReduceDoneBuildsResult(t *testing.T) {
	s := NewRunState("become a data analyst", "caller-id")
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventSession, SessionID: "s1"})
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventDone})

	if s.Running {
		t.Fatal("state still running after done")
	}
	if s.Result == nil {
		t.Fatal("Result not set after done")
	}
	if s.Result.Goal != "become a data analyst" {
		t.Errorf("Result.Goal = %q", s.Result.Goal)
	}
	if s.Result.SessionID != "s1" {
		t.Errorf("Result.SessionID = %q, want s1", s.Result.SessionID)
	}
	if s.Result.AgentCoreStatus != AgentCoreStatusComplete {
		t.Errorf("Result.AgentCoreStatus = %q", s.Result.AgentCoreStatus)
	}
}

func TestReduceDoneFallsBackToCallerSession(t *testing.T) {
	s := NewRunState("goal", "caller-id")
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventDone})
	if s.Result.SessionID != "caller-id" {
		t.Fatalf("Result.SessionID = %q, want caller-id", s.Result.SessionID)
	}
}

func TestReduceErrorIsTerminal(t *testing.T) {
	s := NewRunState("goal", "")
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventChunk, Text: "partial"})
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventError, Message: "Rate limited"})

	if s.Running {
		t.Fatal("state still running after error")
	}
	if s.Err != "Rate limited" {
		t.Fatalf("Err = %q, want %q", s.Err, "Rate limited")
	}
	if s.Result != nil {
		t.Fatal("error run must not carry a Result")
	}
	// Accumulated text survives the failure.
	if got := s.ResponseText(); got != "partial" {
		t.Fatalf("ResponseText = %q, want %q", got, "partial")
	}

	// Terminal state ignores everything after it.
	after := s.Reduce(&stream.StreamEvent{Type: stream.EventChunk, Text: "late"})
	if got := after.ResponseText(); got != "partial" {
		t.Fatalf("chunk applied after terminal state: %q", got)
	}
	after = s.Reduce(&stream.StreamEvent{Type: stream.EventDone})
	if after.Result != nil || after.Err != "Rate limited" {
		t.Fatal("done applied after terminal error")
	}
}

func TestReduceErrorDefaultMessage(t *testing.T) {
	s := NewRunState("goal", "")
	s = s.Reduce(&stream.StreamEvent{Type: stream.EventError})
	if s.Err != "planner reported an error" {
		t.Fatalf("Err = %q", s.Err)
	}
}

func TestReduceNilEvent(t *testing.T) {
	s := NewRunState("goal", "")
	if got := s.Reduce(nil); got.Running != true || got.Goal != "goal" {
		t.Fatal("nil event changed state")
	}
}
