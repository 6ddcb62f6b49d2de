package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// introRequest is the POST body for /api/intro.
type introRequest struct {
	Goal      string `json:"goal"`
	SessionID string `json:"session_id"`
}

// handleIntro validates a career goal and generates the welcoming intro
// message. Rejected goals return 400 with the classifier's verdict.
func (s *Server) handleIntro(w http.ResponseWriter, r *http.Request) {
	var req introRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		writeBadRequest(w, "Goal is required.")
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = newSessionID()
	}

	allowed, verdict := s.claude.ClassifyGoal(r.Context(), goal)
	if !allowed {
		writeBadRequest(w, verdict)
		return
	}

	message, err := s.claude.IntroMessage(r.Context(), goal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate introduction: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    message,
		"session_id": sessionID,
	})
}

// processGoalRequest is the POST body for /api/process-career-goal.
type processGoalRequest struct {
	Goal string `json:"goal"`
}

// handleProcessGoal rewrites a natural-language goal into a polished
// statement. Rewriting is best-effort: on model failure the original goal
// comes back unchanged.
func (s *Server) handleProcessGoal(w http.ResponseWriter, r *http.Request) {
	var req processGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		writeBadRequest(w, "Career goal is required.")
		return
	}

	processed := s.claude.RewriteGoal(r.Context(), req.Goal)
	writeJSON(w, http.StatusOK, map[string]any{
		"original_goal":  req.Goal,
		"processed_goal": processed,
	})
}

// newSessionID generates a compact session identifier.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
