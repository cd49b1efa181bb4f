package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/talentstream/talentstream/internal/logger"
	"github.com/talentstream/talentstream/internal/search"
	"github.com/talentstream/talentstream/internal/store"
	"github.com/talentstream/talentstream/internal/stream"
)

// Analyzer is the profile analysis backend plus its readiness probe.
type Analyzer interface {
	search.ProfileAnalyzer
	Ready(ctx context.Context) error
}

// Agent is the job-search backend plus its readiness probe.
type Agent interface {
	search.JobSearcher
	Ready(ctx context.Context) error
}

// Config configures the HTTP surface.
type Config struct {
	// CORSOrigins lists allowed origins. Empty allows none.
	CORSOrigins []string

	// Version is reported by the health endpoint.
	Version string
}

// Server wires the stream multiplexer, search backends and session store
// into the HTTP API.
type Server struct {
	cfg      Config
	mux      *stream.Multiplexer
	analyzer Analyzer
	agent    Agent
	sessions store.SearchStore
	logger   zerolog.Logger
	started  time.Time
}

// New creates a server. All dependencies are required.
func New(cfg Config, mux *stream.Multiplexer, analyzer Analyzer, agent Agent, sessions store.SearchStore, logger zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		mux:      mux,
		analyzer: analyzer,
		agent:    agent,
		sessions: sessions,
		logger:   logger,
		started:  time.Now(),
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	r.Get("/", s.handleIndex)
	r.Handle("/r/*", s.staticHandler())

	r.Get("/resume", s.handleResume)

	r.Route("/api/search", func(r chi.Router) {
		r.Post("/execute", s.handleExecuteSearch)
		r.Get("/config/template/{searchType}", s.handleConfigTemplate)
		r.Get("/sessions", s.handleListSessions)
	})

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
