package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/practice-engine/internal/config"
	"github.com/terra-clan/practice-engine/internal/models"
	"github.com/terra-clan/practice-engine/internal/practice"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	manager        practice.Manager
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, auth config.AuthConfig, manager practice.Manager) *Server {
	s := &Server{
		config:         cfg,
		manager:        manager,
		authMiddleware: NewAuthMiddleware(auth.Clients),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	perm := s.authMiddleware.RequirePermission
	timeout := middleware.Timeout(60 * time.Second)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		r.Route("/scenarios", func(r chi.Router) {
			r.Use(timeout, perm(models.PermCatalogRead))
			r.Get("/", s.handleListScenarios)
			r.Get("/voices", s.handleVoiceMapping)
			r.Get("/{scenario}/persona", s.handleGetPersona)
		})

		r.Route("/interviewers", func(r chi.Router) {
			r.Use(timeout, perm(models.PermCatalogRead))
			r.Get("/", s.handleListInterviewers)
			r.Get("/{name}", s.handleGetInterviewer)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.With(timeout, perm(models.PermRoomsRead)).Get("/", s.handleListRooms)
			r.With(timeout, perm(models.PermRoomsWrite)).Post("/", s.handleCreateRoom)
			r.With(timeout, perm(models.PermRoomsWrite)).Post("/metadata", s.handleRoomMetadata)

			r.Route("/{name}", func(r chi.Router) {
				// long-lived event stream, no request timeout
				r.With(perm(models.PermSessionsRead)).Get("/events", s.handleRoomEvents)

				r.Group(func(r chi.Router) {
					r.Use(timeout)

					r.With(perm(models.PermRoomsRead)).Get("/", s.handleGetRoom)
					r.With(perm(models.PermRoomsWrite)).Delete("/", s.handleDeleteRoom)
					r.With(perm(models.PermRoomsRead)).Get("/welcome", s.handleGetWelcome)
					r.With(perm(models.PermRoomsRead)).Get("/voice", s.handleGetVoice)
					r.With(perm(models.PermRoomsRead)).Get("/instructions", s.handleGetInstructions)

					r.With(perm(models.PermSessionsWrite)).Post("/session", s.handleCreateSession)
					r.With(perm(models.PermSessionsRead)).Get("/session", s.handleGetSession)
					r.With(perm(models.PermSessionsRead)).Get("/summary", s.handleGetSummary)
					r.With(perm(models.PermSessionsRead)).Get("/status", s.handleSessionStatus)
				})

				r.Group(func(r chi.Router) {
					r.Use(timeout, perm(models.PermSessionsWrite))
					r.Post("/feedback", s.handleRecordFeedback)
					r.Post("/turns", s.handleRecordTurn)
					r.Post("/starters", s.handleSuggestStarters)
					r.Post("/tips", s.handleShareTip)
					r.Post("/interview/questions", s.handleAskQuestion)
					r.Post("/interview/feedback", s.handleInterviewFeedback)
				})
			})
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(timeout)
			r.With(perm(models.PermRoomsWrite)).Delete("/rooms", s.handleCleanupUser)
			r.With(perm(models.PermSessionsRead)).Get("/history", s.handleHistory)
		})

		r.With(timeout, perm(models.PermAdminStats)).Get("/stats", s.handleStats)
	})

	s.router = r
}
