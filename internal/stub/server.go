// Package stub hosts an in-memory NextRead backend for local development
// and end-to-end tests. It speaks the same wire contract as the real API
// but keeps everything in process: argon2id password hashes, HS256 access
// tokens, and a static catalog for recommendations.
package stub

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	domainerrors "github.com/nextreadapp/nextread-client/internal/errors"
)

// Server is an in-memory NextRead API.
type Server struct {
	router *chi.Mux
	state  *state
	key    []byte
	logger *slog.Logger
}

// New creates a stub server with an empty user table and a fresh signing key.
func New(logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		state:  newState(),
		key:    newSigningKey(),
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/verify", s.handleVerify)
		r.Post("/login", s.handleLogin)
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/me", s.handleMe)
		r.Put("/nickname", s.handleUpdateNickname)
		r.Put("/avatar", s.handleUpdateAvatar)
		r.Post("/books", s.handleAddBook)
		r.Get("/books", s.handleListBooks)
		r.Put("/books/{id}/status", s.handleMoveBook)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/survey", s.handleGetSurvey)
		r.Put("/survey", s.handleUpdateSurvey)
		r.Get("/recommendations", s.handleRecommendations)
	})

	s.router.Get("/genres", s.handleGenres)
}

// ServeHTTP implements http.Handler so the stub can sit behind httptest
// or a real listener alike.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, code domainerrors.Code, message string) {
	s.writeJSON(w, code.HTTPStatus(), errorBody{Code: string(code), Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
