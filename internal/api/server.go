// Package api serves the AI backend (moderation, scripture, community tools)
// and the community endpoints over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/community"
	"github.com/autopneuma/pneuma/internal/domain"
	"github.com/autopneuma/pneuma/internal/moderation"
	"github.com/autopneuma/pneuma/internal/scripture"
	"github.com/autopneuma/pneuma/internal/status"
	"github.com/autopneuma/pneuma/internal/tools"
)

const (
	serviceName = "autopneuma-api"
	Version     = "0.1.0"
)

// Services are the handlers' dependencies. Accounts may be nil, in which case
// every route that needs a signed-in member answers 401.
type Services struct {
	Moderation    *moderation.Service
	Scripture     *scripture.Assistant
	Tools         *tools.Service
	Community     *community.Service
	ModerationLog domain.ModerationLog
	Status        *status.Checker
	Accounts      Accounts
}

// Server handles HTTP requests for the platform API
type Server struct {
	svc        Services
	logger     *zap.Logger
	httpServer *http.Server
}

func New(svc Services, port int, logger *zap.Logger) *Server {
	s := &Server{svc: svc, logger: logger}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(withLogging(s.logger))
	r.Use(withCORS)
	r.Use(s.withUser)

	r.Get("/", s.root)
	r.Get("/health", s.health)
	r.Get("/status", s.statusReport)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/moderation", func(r chi.Router) {
			r.Post("/moderate", s.moderate)
			r.Get("/health", s.moderationHealth)
			r.With(requireUser).Get("/log", s.moderationLog)
		})
		r.Route("/scripture", func(r chi.Router) {
			r.Post("/context", s.scriptureContext)
			r.Get("/health", s.scriptureHealth)
		})
		r.Route("/tools", func(r chi.Router) {
			r.Get("/list", s.listTools)
			r.Get("/health", s.toolsHealth)
			r.Post("/register", s.registerTool)
			r.Post("/execute", s.executeTool)
			r.Get("/{toolID}", s.getTool)
			r.With(requireUser).Post("/{toolID}/approve", s.approveTool)
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.signUp)
			r.Post("/login", s.signIn)
		})
		r.Route("/community", s.communityRoutes)
	})
	return r
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"version": Version,
		"mission": "Building Christian community that supports and spreads the Gospel through technology",
		"endpoints": map[string]string{
			"moderation":      "/api/v1/moderation",
			"scripture":       "/api/v1/scripture",
			"community_tools": "/api/v1/tools",
			"community":       "/api/v1/community",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
	})
}

func (s *Server) statusReport(w http.ResponseWriter, r *http.Request) {
	if s.svc.Status == nil {
		writeError(w, http.StatusServiceUnavailable, "Status checks are not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Status.Check(r.Context()))
}

// withLogging logs one line per request
func withLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withCORS allows the web frontend to call the API from another origin
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
