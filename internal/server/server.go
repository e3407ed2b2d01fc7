package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/player"
	"github.com/claude/fittrack/internal/suggest"
)

// Deps are the collaborators of the HTTP API. Suggester may be nil, which
// disables the suggestion endpoints. MCP, when set, is mounted at /mcp.
type Deps struct {
	Catalog   *catalog.Service
	Players   *player.Manager
	Suggester suggest.Suggester
	Metrics   *metrics.Manager
	Gatherer  prometheus.Gatherer
	Identity  func(http.Handler) http.Handler
	MCP       http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog   *catalog.Service
	players   *player.Manager
	suggester suggest.Suggester
	metrics   *metrics.Manager
	gatherer  prometheus.Gatherer
	identity  func(http.Handler) http.Handler
	mcp       http.Handler
	log       *slog.Logger
	apiKey    string
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(deps Deps, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		catalog:   deps.Catalog,
		players:   deps.Players,
		suggester: deps.Suggester,
		metrics:   deps.Metrics,
		gatherer:  deps.Gatherer,
		identity:  deps.Identity,
		mcp:       deps.MCP,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.identity == nil {
		s.identity = DevIdentity
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Metrics(s.metrics))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	if s.mcp != nil {
		s.router.With(s.identity, APIKeyAuth(s.apiKey)).Handle("/mcp", s.mcp)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)
		r.Get("/me", s.handleMe)

		r.Get("/exercises", s.handleListExercises)
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Get("/history", s.handleListHistory)
		r.Get("/measurements", s.handleListMeasurements)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/sessions/{id}/events", s.handleSessionEvents)
		r.Get("/suggest/history", s.handleSuggestHistory)
		r.Get("/export", s.handleExport)

		// Mutations (API key required when configured)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))

			r.Post("/exercises", s.handleCreateExercise)
			r.Put("/exercises/{id}", s.handleUpdateExercise)
			r.Delete("/exercises/{id}", s.handleDeleteExercise)

			r.Post("/workouts", s.handleCreateWorkout)
			r.Put("/workouts/{id}", s.handleUpdateWorkout)
			r.Delete("/workouts/{id}", s.handleDeleteWorkout)
			r.Post("/workouts/{id}/exercises", s.handleAddWorkoutExercise)
			r.Post("/workouts/{id}/start-over", s.handleStartOver)

			r.Delete("/history", s.handleClearHistory)
			r.Delete("/history/{id}", s.handleDeleteLog)

			r.Post("/measurements", s.handleAddMeasurement)
			r.Delete("/measurements", s.handleDeleteMeasurement)

			r.Post("/sessions", s.handleOpenSession)
			r.Post("/sessions/{id}/complete", s.sessionAction(completeAction))
			r.Post("/sessions/{id}/skip", s.sessionAction(skipAction))
			r.Post("/sessions/{id}/toggle-timer", s.sessionAction(toggleTimerAction))
			r.Post("/sessions/{id}/extend-rest", s.sessionAction(extendRestAction))
			r.Post("/sessions/{id}/skip-rest", s.sessionAction(skipRestAction))
			r.Post("/sessions/{id}/finish", s.sessionAction(finishAction))
			r.Post("/sessions/{id}/save", s.sessionAction(saveAction))
			r.Post("/sessions/{id}/exit", s.handleExitSession)

			r.Post("/suggest", s.handleSuggest)
			r.Post("/import", s.handleImport)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
