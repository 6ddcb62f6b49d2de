package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"career-spark/internal/plan"
	"career-spark/internal/planstore"
	"career-spark/internal/progress"
	"career-spark/internal/transcript"
)

// planStreamRequest is the POST body for /api/plan.
type planStreamRequest struct {
	Goal      string `json:"goal"`
	SessionID string `json:"session_id"`
	plan.Profile
}

// snapshotEvent is one NDJSON line of the plan stream: the full aggregated
// view after an event, not a delta.
type snapshotEvent struct {
	Type         string             `json:"type"`
	RunID        string             `json:"run_id"`
	SessionID    string             `json:"session_id"`
	Running      bool               `json:"running"`
	ResponseText string             `json:"response_text"`
	Error        string             `json:"error,omitempty"`
	Result       *plan.Result       `json:"result,omitempty"`
	Cards        progress.CardMap   `json:"cards"`
	Transcript   []transcript.Entry `json:"transcript"`
}

// handlePlanStream starts a plan run and streams aggregated snapshots as
// NDJSON until the run reaches a terminal state.
func (s *Server) handlePlanStream(w http.ResponseWriter, r *http.Request) {
	var req planStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		writeBadRequest(w, "Goal is required.")
		return
	}

	var profile *plan.Profile
	if !req.Profile.IsZero() {
		p := req.Profile
		profile = &p
	}

	run, err := s.plans.StartPlan(r.Context(), req.Goal, req.SessionID, profile)
	if err != nil {
		var pe *plan.PlannerError
		if errors.As(err, &pe) {
			writeError(w, http.StatusBadGateway, pe.Error())
			return
		}
		writeBadRequest(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeStreamError(w, "Streaming not supported")
		return
	}

	for snap := range run.Updates {
		ev := snapshotEvent{
			Type:         "snapshot",
			RunID:        run.ID,
			SessionID:    snap.State.SessionID,
			Running:      snap.State.Running,
			ResponseText: snap.State.ResponseText(),
			Error:        snap.State.Err,
			Result:       snap.State.Result,
			Cards:        snap.Cards,
			Transcript:   snap.Entries,
		}
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		w.Write(data)
		w.Write([]byte("\n"))
		flusher.Flush()
	}
}

// planCancelRequest is the POST body for /api/plan/cancel.
type planCancelRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handlePlanCancel(w http.ResponseWriter, r *http.Request) {
	var req planCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeBadRequest(w, "Session id is required.")
		return
	}
	cancelled := s.plans.CancelSession(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": cancelled})
}

// handleListRuns returns a session's persisted runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeBadRequest(w, "session_id query parameter is required")
		return
	}

	runs, err := s.store.ListBySession(sessionID, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}
	run, err := s.store.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, planstore.ErrNotFound) {
			writeNotFound(w, "Run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}
