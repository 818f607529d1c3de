// Package webhook exposes the HTTP ingestion surface. External systems
// POST goal requests to /v1/goals; valid requests become goals with
// their first phase planned and are answered with the created ids.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/eventbus"
)

// maxBodyBytes bounds a request body read.
const maxBodyBytes = 1 << 20

// GoalPlanner is the consumed slice of the director.
type GoalPlanner interface {
	CreateGoal(ctx context.Context, description string, category constants.GoalCategory, priority constants.Priority, deadline *time.Time) (*domain.Goal, error)
	PlanGoalTasks(ctx context.Context, goal *domain.Goal) (*domain.PipelineRun, []*domain.Task, error)
}

// GoalRequest is the POST /v1/goals payload.
type GoalRequest struct {
	// EventID deduplicates redelivered webhooks. Optional.
	EventID string `json:"event_id,omitempty"`

	// Description is the goal text.
	Description string `json:"description"`

	// Category is the goal category.
	Category string `json:"category"`

	// Priority is the goal priority. Defaults to P2.
	Priority string `json:"priority,omitempty"`

	// Deadline is an optional RFC 3339 completion deadline.
	Deadline *time.Time `json:"deadline,omitempty"`
}

// GoalResponse is the success payload.
type GoalResponse struct {
	GoalID  string   `json:"goal_id"`
	RunID   string   `json:"run_id"`
	TaskIDs []string `json:"task_ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the webhook HTTP server.
type Server struct {
	planner GoalPlanner
	bus     *eventbus.Bus
	log     zerolog.Logger
	httpSrv *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithEventBus deduplicates redelivered webhook events.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(s *Server) { s.bus = bus }
}

// WithLogger sets the server's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a webhook server listening on addr.
func New(addr string, planner GoalPlanner, opts ...Option) *Server {
	s := &Server{
		planner: planner,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /v1/healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("webhook server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	category := constants.GoalCategory(req.Category)
	if !category.Valid() {
		s.writeError(w, http.StatusUnprocessableEntity, "unknown category "+req.Category)
		return
	}

	priority := constants.PriorityP2
	if req.Priority != "" {
		priority = constants.Priority(req.Priority)
		if !priority.Valid() {
			s.writeError(w, http.StatusUnprocessableEntity, "unknown priority "+req.Priority)
			return
		}
	}

	if s.bus != nil && req.EventID != "" {
		if !s.bus.ShouldTrigger("webhook.goal", req.EventID) {
			s.writeError(w, http.StatusConflict, "duplicate event "+req.EventID)
			return
		}
		s.bus.RecordTrigger("webhook.goal", req.EventID)
	}

	ctx := r.Context()
	goal, err := s.planner.CreateGoal(ctx, req.Description, category, priority, req.Deadline)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	run, tasks, err := s.planner.PlanGoalTasks(ctx, goal)
	if err != nil {
		s.log.Error().Err(err).Str("goal_id", goal.ID).Msg("goal planning failed")
		s.writeError(w, http.StatusInternalServerError, "goal created but planning failed: "+err.Error())
		return
	}

	resp := GoalResponse{GoalID: goal.ID, RunID: run.ID}
	for _, t := range tasks {
		resp.TaskIDs = append(resp.TaskIDs, t.ID)
	}

	s.log.Info().
		Str("goal_id", goal.ID).
		Str("run_id", run.ID).
		Int("tasks", len(tasks)).
		Msg("goal ingested")

	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("response encoding failed")
	}
}
