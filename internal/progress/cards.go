package progress

import (
	"fmt"
	"time"

	"career-spark/internal/stream"
)

// Card statuses. Completed is terminal per key: a later update never demotes
// a completed card back to working, though reasoning and tool calls may still
// append to its history.
const (
	StatusWorking   = "working"
	StatusCompleted = "completed"
)

const workingPlaceholder = "Working..."

// Card is the aggregated live-status record for one supervisor turn or one
// collaborator invocation.
type Card struct {
	Agent          string            `json:"agent"`
	Status         string            `json:"status"`
	ReasoningItems []string          `json:"reasoning_items"`
	Output         *string           `json:"output"`
	ToolCalls      []stream.ToolCall `json:"tool_calls,omitempty"`
	Supervisor     bool              `json:"supervisor,omitempty"`
	StartTime      time.Time         `json:"start_time"`
}

// CardMap holds the live cards for one run, keyed by supervisor id or
// collaborator call id. Treat it as immutable: Apply never mutates its input,
// so consumers may diff successive maps by reference.
type CardMap map[string]*Card

// Apply folds one mutation into the map and returns a new map. Only the
// addressed card is copied; untouched cards are shared with the input so
// reference comparison detects what changed. Unknown keys are created
// implicitly. Reasoning and tool-call lists are concatenation-only.
func Apply(cards CardMap, m Mutation, now time.Time) CardMap {
	next := make(CardMap, len(cards)+1)
	for k, v := range cards {
		next[k] = v
	}

	switch m := m.(type) {
	case CompleteCollaborator:
		card := copyOrCreate(next, m.Key, m.Agent, false, now)
		card.Status = StatusCompleted
		if card.Output == nil {
			// The first response is the card's authoritative final value;
			// dashboards must see it exactly once.
			out := m.Output
			card.Output = &out
		}

	case StartDelegation:
		if existing, ok := next[m.Key]; ok && existing.Status == StatusCompleted {
			// Anomaly: a delegation for an already-finished invocation.
			// Completed is terminal, keep the finished card as-is.
			break
		}
		next[m.Key] = &Card{
			Agent:          m.Collaborator,
			Status:         StatusWorking,
			ReasoningItems: []string{fmt.Sprintf("Calling %s...", m.Collaborator)},
			StartTime:      now,
		}

	case AppendReasoning:
		card := copyOrCreate(next, m.Key, m.Agent, m.Supervisor, now)
		card.ReasoningItems = appendString(card.ReasoningItems, m.Reasoning)

	case AppendToolCalls:
		card := copyOrCreate(next, m.Key, m.Agent, m.Supervisor, now)
		card.ToolCalls = appendToolCalls(card.ToolCalls, m.Calls)

	case TouchAgent:
		if _, ok := next[m.Key]; ok {
			// Nothing new to record; the card already exists and a bare
			// status never changes completion state.
			break
		}
		next[m.Key] = &Card{
			Agent:          m.Agent,
			Status:         StatusWorking,
			ReasoningItems: []string{workingPlaceholder},
			Supervisor:     m.Supervisor,
			StartTime:      now,
		}
	}

	return next
}

// CompleteSupervisors marks still-working supervisor cards completed. The
// terminal done event arrives without a closing trace for the supervisor, so
// completion happens retroactively here. Returns the input map unchanged when
// no card needed updating.
func CompleteSupervisors(cards CardMap) CardMap {
	changed := false
	next := make(CardMap, len(cards))
	for k, v := range cards {
		if v.Supervisor && v.Status == StatusWorking {
			c := *v
			c.Status = StatusCompleted
			next[k] = &c
			changed = true
			continue
		}
		next[k] = v
	}
	if !changed {
		return cards
	}
	return next
}

// copyOrCreate places a private copy of the addressed card in next and
// returns it for mutation. Completed status survives the copy untouched.
func copyOrCreate(next CardMap, key, agent string, supervisor bool, now time.Time) *Card {
	if existing, ok := next[key]; ok {
		c := *existing
		if agent != "" && c.Agent == "" {
			c.Agent = agent
		}
		next[key] = &c
		return &c
	}
	c := &Card{
		Agent:      agent,
		Status:     StatusWorking,
		Supervisor: supervisor,
		StartTime:  now,
	}
	next[key] = c
	return c
}

// appendString appends without sharing the backing array with prior map
// generations, keeping older cards immutable.
func appendString(items []string, s string) []string {
	return append(items[:len(items):len(items)], s)
}

func appendToolCalls(items []stream.ToolCall, calls []stream.ToolCall) []stream.ToolCall {
	return append(items[:len(items):len(items)], calls...)
}
