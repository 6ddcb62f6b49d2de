package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"career-spark/internal/progress"
	"career-spark/internal/stream"
	"career-spark/internal/textnorm"
	"career-spark/internal/transcript"
)

// DefaultIdleTimeout bounds how long a run may sit without any stream
// activity. The wire protocol carries no heartbeat, so a silent stream is
// indistinguishable from a dead one and gets aborted.
const DefaultIdleTimeout = 2 * time.Minute

// Snapshot is one consistent view of a run, emitted after every processed
// event. Cards maps are immutable generations, so consumers may diff
// successive snapshots by reference.
type Snapshot struct {
	State   RunState
	Cards   progress.CardMap
	Entries []transcript.Entry
}

// Run is one in-flight planning invocation. Updates delivers snapshots until
// the run reaches a terminal state or is cancelled, then closes.
type Run struct {
	ID        string
	Goal      string
	SessionID string
	Updates   <-chan Snapshot

	cancel context.CancelFunc
}

// Cancel aborts the run: the underlying stream reader is released and pending
// state is discarded, not finalized.
func (r *Run) Cancel() {
	r.cancel()
}

// Runner starts runs against the planner backend and drives the
// framer → decoder → interpreter → aggregator pipeline for each. Processing
// is single-writer by construction: one goroutine per run applies every
// mutation, preserving the append-order invariants.
type Runner struct {
	client      *Client
	idleTimeout time.Duration

	mu sync.Mutex
	// contextSent tracks sessions whose profile context already went out;
	// follow-up turns omit it.
	contextSent map[string]struct{}
}

// NewRunner creates a runner. idleTimeout <= 0 selects DefaultIdleTimeout.
func NewRunner(client *Client, idleTimeout time.Duration) *Runner {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Runner{
		client:      client,
		idleTimeout: idleTimeout,
		contextSent: make(map[string]struct{}),
	}
}

// StartPlan opens a planning stream for the goal and returns the live run.
// Each run starts from an empty card map and a fresh RunState. The profile is
// attached only on a session's first request.
func (r *Runner) StartPlan(ctx context.Context, goal, sessionID string, profile *Profile) (*Run, error) {
	if goal == "" {
		return nil, errors.New("goal is required")
	}

	if r.sentContext(sessionID) {
		profile = nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	body, err := r.client.OpenPlanStream(runCtx, goal, sessionID, profile)
	if err != nil {
		cancel()
		return nil, err
	}
	r.markContextSent(sessionID)

	updates := make(chan Snapshot, 16)
	run := &Run{
		ID:        uuid.NewString(),
		Goal:      goal,
		SessionID: sessionID,
		Updates:   updates,
		cancel:    cancel,
	}
	go r.consume(runCtx, cancel, body, goal, sessionID, updates)
	return run, nil
}

// consume reads the stream incrementally and drives each resolved chunk
// through the full pipeline before issuing the next read.
func (r *Runner) consume(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser, goal, sessionID string, updates chan<- Snapshot) {
	defer close(updates)
	defer body.Close()
	defer cancel()

	var (
		framer  stream.Framer
		trimmer textnorm.LeadingBlankLineTrimmer
		cards   = progress.CardMap{}
		state   = NewRunState(goal, sessionID)
		tb      = transcript.NewBuilder()
	)
	tb.AddUserMessage(goal)

	emit := func() {
		select {
		case updates <- Snapshot{State: state, Cards: cards, Entries: tb.Entries()}:
		case <-ctx.Done():
		}
	}
	emit()

	// Idle watchdog: no event for idleTimeout aborts the run.
	var idleFired atomic.Bool
	idle := time.AfterFunc(r.idleTimeout, func() {
		idleFired.Store(true)
		cancel()
	})
	defer idle.Stop()

	handleLine := func(line string) {
		ev, err := stream.Decode(line)
		if err != nil {
			// Protocol errors are local to the line; the stream goes on.
			log.Printf("plan stream: skipping line: %v", err)
			return
		}
		if ev == nil {
			return
		}
		if ev.Type == stream.EventChunk {
			text := trimmer.Push(ev.Text)
			if text == "" {
				return
			}
			trimmed := *ev
			trimmed.Text = text
			ev = &trimmed
		}

		state = state.Reduce(ev)

		switch ev.Type {
		case stream.EventSession:
			r.markContextSent(state.SessionID)
		case stream.EventTrace:
			if m, ok := progress.Interpret(ev.Data); ok {
				cards = progress.Apply(cards, m, time.Now())
				tb.ObserveCards(cards)
			}
		case stream.EventDone:
			// The supervisor never closes its own card; done does.
			cards = progress.CompleteSupervisors(cards)
			tb.ObserveCards(cards)
		case stream.EventError:
			tb.AddNotice(state.Err)
		}
		emit()
	}

	buf := make([]byte, 32*1024)
	for state.Running {
		n, err := body.Read(buf)
		if n > 0 {
			idle.Reset(r.idleTimeout)
			for _, line := range framer.Feed(buf[:n]) {
				handleLine(line)
				if !state.Running {
					break
				}
			}
		}
		if err == nil {
			continue
		}
		if !state.Running {
			return
		}
		switch {
		case errors.Is(err, io.EOF):
			if rest, ok := framer.Flush(); ok {
				handleLine(rest)
			}
			if state.Running {
				state = state.Fail("planner stream ended before completion")
				tb.AddNotice(state.Err)
				emit()
			}
		case idleFired.Load():
			state = state.Fail(fmt.Sprintf("no stream activity for %s", r.idleTimeout))
			tb.AddNotice(state.Err)
			emit()
		case ctx.Err() != nil:
			// Cancelled by the caller: discard pending state silently.
		default:
			state = state.Fail("planner stream read failed: " + err.Error())
			tb.AddNotice(state.Err)
			emit()
		}
		return
	}
}

func (r *Runner) sentContext(sessionID string) bool {
	if sessionID == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.contextSent[sessionID]
	return ok
}

func (r *Runner) markContextSent(sessionID string) {
	if sessionID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contextSent[sessionID] = struct{}{}
}
