// Package server provides the HTTP server for the Mudra sign classifier demo.
package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/web"
)

// Config holds the server configuration.
type Config struct {
	// StaticDir overrides the embedded page when set.
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config Config
	router *mux.Router
	feed   *FeedHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/labels", api.Labels).Methods(http.MethodGet)

	// Session, display surface and feed need the application
	if s.config.App != nil {
		sessionHandler := api.NewSessionHandler(s.config.App)
		r.HandleFunc("/api/session", sessionHandler.Get).Methods(http.MethodGet)
		r.HandleFunc("/api/session/start", sessionHandler.Start).Methods(http.MethodPost)
		r.HandleFunc("/api/session/stop", sessionHandler.Stop).Methods(http.MethodPost)
		r.HandleFunc("/api/session/toggle", sessionHandler.Toggle).Methods(http.MethodPost)

		controller := s.config.App.Controller()
		streamHandler := NewStreamHandler(s.config.App.Camera(), func() bool {
			return controller.State().Active
		})
		r.Handle("/api/stream", streamHandler).Methods(http.MethodGet)

		s.feed = NewFeedHandler(s.config.App)
		r.Handle("/api/feed", s.feed).Methods(http.MethodGet)
	}

	// Register settings API if Store is configured
	if s.config.Store != nil {
		settingsHandler := api.NewSettingsHandler(s.config.Store)
		r.HandleFunc("/api/settings", settingsHandler.List).Methods(http.MethodGet)
		r.HandleFunc("/api/settings/{key}", settingsHandler.Put).Methods(http.MethodPut)
		r.HandleFunc("/api/settings/{key}", settingsHandler.Delete).Methods(http.MethodDelete)
	}

	r.PathPrefix("/").Handler(s.staticHandler()).Methods(http.MethodGet, http.MethodHead)
}

// staticHandler serves StaticDir if configured, otherwise the embedded page.
func (s *Server) staticHandler() http.Handler {
	if s.config.StaticDir != "" {
		return http.FileServer(http.Dir(s.config.StaticDir))
	}
	var files fs.FS = web.Files
	return http.FileServer(http.FS(files))
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close disconnects feed clients.
func (s *Server) Close() {
	if s.feed != nil {
		s.feed.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
