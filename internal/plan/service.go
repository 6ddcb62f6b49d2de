package plan

import (
	"context"
	"log"
	"sync"
)

// Run terminal statuses as persisted.
const (
	RunStatusDone  = "done"
	RunStatusError = "error"
)

// RunRecord is the terminal state of a run handed to the persistence layer.
type RunRecord struct {
	ID           string
	SessionID    string
	Goal         string
	Status       string
	ResponseText string
	Error        string
}

// RunStore persists terminal run state for cross-session resume.
type RunStore interface {
	SaveRun(rec RunRecord) error
}

// Service coordinates runs across sessions: at most one active run per
// session (a new goal cancels and replaces the previous one) and terminal
// state persisted when a store is configured.
type Service struct {
	runner *Runner
	store  RunStore

	mu     sync.Mutex
	active map[string]*Run
}

// NewService creates a plan service. store may be nil; persistence is then
// disabled.
func NewService(runner *Runner, store RunStore) *Service {
	return &Service{
		runner: runner,
		store:  store,
		active: make(map[string]*Run),
	}
}

// StartPlan starts a run for the session, aborting any run already in flight
// for it. The returned run's Updates channel closes once the run reaches a
// terminal state or is cancelled.
func (s *Service) StartPlan(ctx context.Context, goal, sessionID string, profile *Profile) (*Run, error) {
	if sessionID != "" {
		s.mu.Lock()
		if prev, ok := s.active[sessionID]; ok {
			prev.Cancel()
			delete(s.active, sessionID)
		}
		s.mu.Unlock()
	}

	inner, err := s.runner.StartPlan(ctx, goal, sessionID, profile)
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot, 16)
	run := &Run{
		ID:        inner.ID,
		Goal:      inner.Goal,
		SessionID: inner.SessionID,
		Updates:   out,
		cancel:    inner.cancel,
	}
	if sessionID != "" {
		s.mu.Lock()
		s.active[sessionID] = run
		s.mu.Unlock()
	}

	go func() {
		var last Snapshot
		seen := false
		for snap := range inner.Updates {
			last, seen = snap, true
			select {
			case out <- snap:
			default:
				// Slow or gone consumer. Snapshots are cumulative, so the
				// newest supersedes anything still queued.
				select {
				case <-out:
				default:
				}
				select {
				case out <- snap:
				default:
				}
			}
		}
		close(out)
		s.finish(sessionID, run, last, seen)
	}()

	return run, nil
}

// CancelSession aborts the session's active run, if any.
func (s *Service) CancelSession(sessionID string) bool {
	s.mu.Lock()
	run, ok := s.active[sessionID]
	if ok {
		delete(s.active, sessionID)
	}
	s.mu.Unlock()
	if ok {
		run.Cancel()
	}
	return ok
}

func (s *Service) finish(sessionKey string, run *Run, last Snapshot, seen bool) {
	s.mu.Lock()
	if sessionKey != "" && s.active[sessionKey] == run {
		delete(s.active, sessionKey)
	}
	s.mu.Unlock()

	// Persist only terminal state; a cancelled run ends mid-flight and is
	// intentionally discarded.
	if s.store == nil || !seen || last.State.Running {
		return
	}
	status := RunStatusDone
	if last.State.Err != "" {
		status = RunStatusError
	}
	rec := RunRecord{
		ID:           run.ID,
		SessionID:    last.State.SessionID,
		Goal:         last.State.Goal,
		Status:       status,
		ResponseText: last.State.ResponseText(),
		Error:        last.State.Err,
	}
	if err := s.store.SaveRun(rec); err != nil {
		log.Printf("plan: persisting run %s failed: %v", run.ID, err)
	}
}
