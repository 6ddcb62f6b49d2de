package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"career-spark/internal/claude"
	"career-spark/internal/config"
	"career-spark/internal/plan"
	"career-spark/internal/planstore"
)

// Server holds all dependencies for the HTTP server.
type Server struct {
	config *config.Config
	claude *claude.Service
	plans  *plan.Service
	store  *planstore.Store
}

// NewServer creates a new server with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	var store *planstore.Store
	if cfg.PlanDBPath != "" {
		s, err := planstore.NewStore(cfg.PlanDBPath)
		if err != nil {
			return nil, err
		}
		store = s
	}

	runner := plan.NewRunner(plan.NewClient(cfg.PlannerURL), cfg.PlanIdleTimeout)
	var runStore plan.RunStore
	if store != nil {
		runStore = store
	}

	return &Server{
		config: cfg,
		claude: claude.NewService(cfg.AnthropicKey, cfg.ClaudeModel),
		plans:  plan.NewService(runner, runStore),
		store:  store,
	}, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(srv *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(RecovererMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   srv.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", srv.handleRoot)
	r.Get("/health", srv.handleHealth)

	// Goal routes
	r.Post("/api/intro", srv.handleIntro)
	r.Post("/api/process-career-goal", srv.handleProcessGoal)

	// Plan routes
	r.Post("/api/plan", srv.handlePlanStream)
	r.Post("/api/plan/cancel", srv.handlePlanCancel)
	r.Get("/api/plan/runs", srv.handleListRuns)
	r.Get("/api/plan/runs/{id}", srv.handleGetRun)

	r.Get("/api/status", srv.handleStatus)

	return r
}

// handleRoot is the root health/identity endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "Career Spark API",
		"version": "2.0.0",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "API is operational",
	})
}

// handleStatus reports backend configuration state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"planner_url":         s.config.PlannerURL,
		"claude_configured":   s.config.AnthropicKey != "",
		"persistence_enabled": s.store != nil,
	})
}
