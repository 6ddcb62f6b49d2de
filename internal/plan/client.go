package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Profile carries the student context attached to a session's first planning
// request. Later turns of the same session omit it; the backend keeps the
// context in session memory.
type Profile struct {
	UserName       string `json:"user_name,omitempty"`
	UserEmail      string `json:"user_email,omitempty"`
	UserPhone      string `json:"user_phone,omitempty"`
	UserLocation   string `json:"user_location,omitempty"`
	UserMajor      string `json:"user_major,omitempty"`
	GraduationYear string `json:"graduation_year,omitempty"`
	GPA            string `json:"gpa,omitempty"`
	CareerGoal     string `json:"career_goal,omitempty"`
	Bio            string `json:"bio,omitempty"`
	StudentYear    string `json:"student_year,omitempty"`
	CoursesTaken   string `json:"courses_taken,omitempty"`
	TimeCommitment string `json:"time_commitment,omitempty"`
	Skills         string `json:"skills,omitempty"`
	Experience     string `json:"experience,omitempty"`
}

// IsZero reports whether the profile carries no context at all.
func (p *Profile) IsZero() bool {
	return p == nil || *p == Profile{}
}

// planRequest is the POST body for the planner's streaming endpoint.
type planRequest struct {
	Goal      string `json:"goal"`
	SessionID string `json:"session_id,omitempty"`
	Profile
}

// PlannerError is a transport-level failure talking to the planner backend:
// network error, non-OK status, or an unusable response. It is fatal to the
// current run.
type PlannerError struct {
	StatusCode int
	Reason     string
}

func (e *PlannerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("planner error (%d): %s", e.StatusCode, e.Reason)
	}
	return "planner error: " + e.Reason
}

// Client talks to the planner backend's streaming endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a planner client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{
			// Streaming requests must not have a global client timeout.
			Timeout: 0,
		},
	}
}

// OpenPlanStream POSTs a planning request and returns the raw streaming body.
// The caller owns closing it. Profile is included only when non-nil; callers
// pass nil for follow-up turns of a session whose context was already sent.
func (c *Client) OpenPlanStream(ctx context.Context, goal, sessionID string, profile *Profile) (io.ReadCloser, error) {
	reqBody := planRequest{Goal: goal, SessionID: sessionID}
	if !profile.IsZero() {
		reqBody.Profile = *profile
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/plan", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &PlannerError{Reason: "request failed: " + err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &PlannerError{StatusCode: resp.StatusCode, Reason: strings.TrimSpace(string(detail))}
	}
	if resp.Body == nil {
		return nil, &PlannerError{StatusCode: resp.StatusCode, Reason: "response has no body"}
	}
	return resp.Body, nil
}
