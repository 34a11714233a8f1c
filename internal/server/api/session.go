package api

import (
	"context"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
)

// SessionService is the part of app.App the session endpoints drive.
type SessionService interface {
	Start(ctx context.Context) app.Snapshot
	Stop() app.Snapshot
	Toggle(ctx context.Context) app.Snapshot
	Snapshot() app.Snapshot
}

// SessionHandler handles the camera session endpoints.
type SessionHandler struct {
	service SessionService
}

// NewSessionHandler creates a new SessionHandler for the given service.
func NewSessionHandler(s SessionService) *SessionHandler {
	return &SessionHandler{service: s}
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

// Start handles POST /api/session/start. A denied camera is reported in
// the snapshot, not as an HTTP error.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Start(r.Context()))
}

// Stop handles POST /api/session/stop.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Stop())
}

// Toggle handles POST /api/session/toggle.
func (h *SessionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Toggle(r.Context()))
}
