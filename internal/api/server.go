// Package api wires the HTTP surface: dashboard queries behind JWT auth,
// push ingestion behind API keys, and the operational endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/borgwatch/internal/api/handler"
	mw "github.com/edvin/borgwatch/internal/api/middleware"
	"github.com/edvin/borgwatch/internal/auth"
	"github.com/edvin/borgwatch/internal/store"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

type Server struct {
	router chi.Router
	logger zerolog.Logger
	store  *store.Store
	auth   *auth.Service
}

func NewServer(logger zerolog.Logger, st *store.Store, authSvc *auth.Service) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		store:  st,
		auth:   authSvc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check (no auth)
	s.router.Get("/health", s.handleHealth)

	authHandler := handler.NewAuth(s.auth)
	s.router.Post("/api/auth/login", authHandler.Login)
	s.router.With(mw.JWTAuth(s.auth)).Post("/auth/verify", authHandler.Verify)

	// Dashboard queries
	jobs := handler.NewJobs(s.store)
	s.router.Route("/api/jobs", func(r chi.Router) {
		r.Use(mw.JWTAuth(s.auth))

		r.Get("/", jobs.List)
		r.Get("/{jobID}", jobs.Get)
		r.Get("/{jobID}/archives", jobs.Archives)
		r.Get("/{jobID}/runs", jobs.Runs)
		r.Get("/{jobID}/runs/{runID}", jobs.RunDetail)
		r.Get("/{jobID}/events", jobs.Events)
		r.Get("/{jobID}/events/{eventID}/info", jobs.EventInfo)
	})

	// Push ingestion
	push := handler.NewPush(s.store, s.auth)
	s.router.Route("/api/push", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.auth))

		r.Post("/event", push.Event)
		r.Post("/status", push.Status)
		r.Post("/borg/info", push.BorgInfo)
		r.Post("/borgmatic/info", push.BorgmaticInfo)
		r.Post("/borgmatic/rinfo", push.BorgmaticRinfo)
	})

	// Retired push surface
	s.router.Post("/push/{jobID}/info", handler.Gone("/api/push/borg/info or /api/push/borgmatic/info"))
	s.router.Post("/push/{jobID}/log", handler.Gone("/api/push/status"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
