package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/omicron/internal/condor"
	"github.com/me/omicron/internal/config"
	"github.com/me/omicron/internal/store"
)

// JobFinder is the part of condor.JobQuery the API serves.
type JobFinder interface {
	FindJobs(ctx context.Context, filters condor.Filters) ([]condor.JobRecord, error)
	JobStatus(ctx context.Context, id condor.ClusterID) (condor.JobStatus, error)
	DAGIsRunning(dagPath string) bool
}

// Server is the read-only omicron REST API.
type Server struct {
	router     chi.Router
	logger     *slog.Logger
	config     config.PipelineConfig
	startTime  time.Time
	store      store.Store
	jobs       JobFinder
	findRescue func(string) (string, error)
}

// New creates a new Server with all routes registered.
// st may be nil, in which case the /runs endpoints report the ledger as unavailable.
func New(cfg config.PipelineConfig, st store.Store, jobs JobFinder, logger *slog.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		logger:     logger.With("component", "server"),
		config:     cfg,
		startTime:  time.Now(),
		store:      st,
		jobs:       jobs,
		findRescue: condor.FindRescueDAG,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/segments", s.handleSegments)
		r.Get("/channels", s.handleChannels)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleFindJobs)
			r.Get("/{clusterID}/status", s.handleJobStatus)
		})

		r.Route("/dags", func(r chi.Router) {
			r.Get("/running", s.handleDAGRunning)
			r.Get("/rescue", s.handleRescueDAG)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})
	})
}
