// Package config handles loading and validating configuration from environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// PlannerURL is the base URL of the planning backend that streams
	// agent progress events.
	PlannerURL string
	// ServerAddr is the HTTP listen address (e.g., :80, :8080).
	ServerAddr string
	// AnthropicKey is the API key for direct Claude calls (classification,
	// intro messages, goal rewriting).
	AnthropicKey string
	// ClaudeModel overrides the default model for direct Claude calls.
	ClaudeModel string
	// PlanDBPath is the SQLite file for persisted plan runs. Empty disables
	// persistence.
	PlanDBPath string
	// PlanIdleTimeout aborts a run when the planner stream goes silent.
	PlanIdleTimeout time.Duration
	// AllowedOrigins lists CORS origins permitted to call the API.
	AllowedOrigins []string
}

// Load reads configuration from environment variables.
// It loads .env file if present, but environment variables take precedence.
func Load() (*Config, error) {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		PlannerURL:      strings.TrimSpace(os.Getenv("PLANNER_URL")),
		ServerAddr:      os.Getenv("SERVER_ADDR"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		ClaudeModel:     strings.TrimSpace(os.Getenv("CLAUDE_MODEL")),
		PlanDBPath:      strings.TrimSpace(os.Getenv("PLAN_DB_PATH")),
		PlanIdleTimeout: parseDurationEnv("PLAN_IDLE_TIMEOUT", 2*time.Minute),
		AllowedOrigins:  parseCSV(os.Getenv("ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.PlannerURL == "" {
		return errors.New("PLANNER_URL is required")
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	// AnthropicKey is optional - goal classification falls back to a keyword
	// heuristic and the intro endpoint reports unavailability without it.
	// PlanDBPath is optional - run persistence is disabled without it.
	return nil
}

func parseCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
