package claude

import (
	"context"
	"fmt"
	"strings"
)

// goalKeywords is the heuristic fallback used when the classifier model is
// unavailable: any of these in the statement passes it as a career goal.
var goalKeywords = []string{
	"career",
	"job",
	"role",
	"position",
	"engineer",
	"consult",
	"manager",
	"designer",
	"analyst",
}

// ClassifyGoal decides whether the statement is a legitimate career goal.
// The verdict string starts with "ALLOW:" or "REJECT:" followed by a short
// rationale. Model failures fall back to a keyword heuristic rather than
// blocking the user.
func (s *Service) ClassifyGoal(ctx context.Context, goal string) (bool, string) {
	prompt := "Determine if the following user statement expresses a legitimate career goal or request for career guidance.\n" +
		"Respond with either:\n" +
		"ALLOW: <very short rationale>\n" +
		"REJECT: <brief reason why it's not a career goal>\n\n" +
		"User statement: " + strings.TrimSpace(goal) + "\n"

	result, err := s.chat(ctx, chatParams{
		System:    "You are a strict classifier for career-goal intents.",
		Prompt:    prompt,
		MaxTokens: 60,
	})
	if err != nil {
		lowered := strings.ToLower(goal)
		for _, word := range goalKeywords {
			if strings.Contains(lowered, word) {
				return true, "ALLOW: heuristic keyword match"
			}
		}
		return false, "REJECT: does not appear to be a role or career goal."
	}

	result = strings.TrimSpace(result)
	upper := strings.ToUpper(result)
	switch {
	case strings.HasPrefix(upper, "ALLOW"):
		return true, result
	case strings.HasPrefix(upper, "REJECT"):
		return false, result
	default:
		return false, fmt.Sprintf("REJECT: Unexpected classifier output (%s)", result)
	}
}

// IntroMessage generates the upbeat two-sentence welcome shown after a goal
// passes classification.
func (s *Service) IntroMessage(ctx context.Context, goal string) (string, error) {
	prompt := "The student said their primary career goal is: " + goal + ".\n" +
		"Respond in exactly two sentences:\n" +
		"1) Celebrate the goal and mention one or two exciting aspects or opportunities, including a concise salary hint if known.\n" +
		"2) Ask them to share their current year, recent courses or experiences, and weekly time commitment; remind them they can sign up later so their details are saved.\n" +
		"Keep the tone upbeat, stay under 70 words total, and focus strictly on academics, skills, and career planning."

	msg, err := s.chat(ctx, chatParams{
		System:      "You are a concise, energizing career coach who keeps responses under 120 words.",
		Prompt:      prompt,
		MaxTokens:   180,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(msg), nil
}

// RewriteGoal turns a natural-language goal into a polished single-paragraph
// statement. On any model failure the original text is returned unchanged.
func (s *Service) RewriteGoal(ctx context.Context, goal string) string {
	prompt := "Transform this natural language career goal into a clear, professional career goal statement:\n\n" +
		"Original: " + goal + "\n\n" +
		"Create a single, well-written paragraph (3-4 sentences) that describes their career aspirations. " +
		"Write it as a flowing narrative, not a bulleted list. " +
		"Start with their desired role, mention key skills/technologies, and end with their long-term vision. " +
		"Make it sound natural and professional, like something they would write in a bio or resume summary. " +
		"Output ONLY the career goal statement, no introductory text or explanations."

	rewritten, err := s.chat(ctx, chatParams{
		System: "You are a career guidance expert. Output ONLY the career goal statement. " +
			"Do not include any introductory text, explanations, or formatting. Just return the goal statement itself.",
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.3,
	})
	if err != nil {
		return goal
	}
	return strings.TrimSpace(rewritten)
}
