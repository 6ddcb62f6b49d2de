// Package progress turns decoded trace events into live per-agent status
// cards. Interpret classifies a trace into exactly one mutation; Apply folds
// mutations into an immutable card map keyed by the actor's identity.
package progress

import (
	"strings"

	"career-spark/internal/stream"
)

// SupervisorName is the reserved name of the top-level orchestrating agent.
// The backend labels collaborator traces with a "Collaborator: " prefix and
// leaves the supervisor's traces under this bare name.
const SupervisorName = "Supervisor"

const collaboratorPrefix = "Collaborator: "

// Mutation is the closed set of card updates a trace event can produce.
// Apply dispatches over it exhaustively.
type Mutation interface {
	// CardKey is the identity of the card the mutation addresses.
	CardKey() string

	isMutation()
}

// CompleteCollaborator marks the addressed card completed and records the
// collaborator's final output.
type CompleteCollaborator struct {
	Key    string
	Agent  string
	Output string
}

// StartDelegation creates a working card for a collaborator the supervisor
// just invoked, seeded with a placeholder reasoning entry.
type StartDelegation struct {
	Key          string
	Collaborator string
}

// AppendReasoning appends one reasoning increment to the addressed card.
type AppendReasoning struct {
	Key        string
	Agent      string
	Supervisor bool
	Reasoning  string
}

// AppendToolCalls appends a batch of tool call records to the addressed card.
type AppendToolCalls struct {
	Key        string
	Agent      string
	Supervisor bool
	Calls      []stream.ToolCall
}

// TouchAgent creates or refreshes the addressed card from a bare status
// trace that carries no reasoning text.
type TouchAgent struct {
	Key        string
	Agent      string
	Supervisor bool
}

func (m CompleteCollaborator) CardKey() string { return m.Key }
func (m StartDelegation) CardKey() string      { return m.Key }
func (m AppendReasoning) CardKey() string      { return m.Key }
func (m AppendToolCalls) CardKey() string      { return m.Key }
func (m TouchAgent) CardKey() string           { return m.Key }

func (CompleteCollaborator) isMutation() {}
func (StartDelegation) isMutation()      {}
func (AppendReasoning) isMutation()      {}
func (AppendToolCalls) isMutation()      {}
func (TouchAgent) isMutation()           {}

// Interpret classifies a trace event into exactly one mutation, in priority
// order: collaborator completion, delegation, reasoning increment, tool-call
// batch, bare status. An event with none of reasoning, collaborator_response,
// calling_collaborator, or agent set carries no actionable information and is
// discarded (ok == false).
func Interpret(ev *stream.TraceEvent) (Mutation, bool) {
	if ev == nil {
		return nil, false
	}
	if ev.Reasoning == "" && ev.CollaboratorResponse == nil &&
		ev.CallingCollaborator == "" && ev.Agent == "" {
		return nil, false
	}

	switch {
	case ev.CollaboratorResponse != nil:
		resp := ev.CollaboratorResponse
		key := ev.AgentCallID
		if key == "" {
			key = resp.Agent
		}
		return CompleteCollaborator{Key: key, Agent: resp.Agent, Output: resp.Output}, true

	case ev.CallingCollaborator != "":
		// A delegation addresses the called collaborator's card, not the
		// supervisor's: the call id keeps two concurrent invocations of the
		// same collaborator type apart.
		key := ev.AgentCallID
		if key == "" {
			key = ev.CallingCollaborator
		}
		return StartDelegation{Key: key, Collaborator: ev.CallingCollaborator}, true

	case ev.Reasoning != "":
		key, name, supervisor := resolveAddress(ev)
		return AppendReasoning{Key: key, Agent: name, Supervisor: supervisor, Reasoning: ev.Reasoning}, true

	case len(ev.ToolCalls) > 0:
		key, name, supervisor := resolveAddress(ev)
		return AppendToolCalls{Key: key, Agent: name, Supervisor: supervisor, Calls: ev.ToolCalls}, true

	default:
		key, name, supervisor := resolveAddress(ev)
		return TouchAgent{Key: key, Agent: name, Supervisor: supervisor}, true
	}
}

// resolveAddress maps a trace to the logical actor it addresses. The optional
// "Collaborator: " label prefix is stripped from the agent name; a trace from
// the reserved supervisor carrying a supervisor_id routes to the supervisor's
// card so multiple reasoning turns of one invocation stay together, while
// every other trace routes by agent_call_id with the bare name as fallback.
func resolveAddress(ev *stream.TraceEvent) (key, name string, supervisor bool) {
	name = strings.TrimPrefix(ev.Agent, collaboratorPrefix)
	if name == SupervisorName && ev.SupervisorID != "" {
		return ev.SupervisorID, name, true
	}
	if ev.AgentCallID != "" {
		return ev.AgentCallID, name, false
	}
	return name, name, false
}
