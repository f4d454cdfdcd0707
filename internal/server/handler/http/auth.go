// Package http provides the HTTP handlers of the local API: session
// management, patient roster, per-module records, backup transfer and
// roster reports.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tcordeiro/pediatria/internal/auth"
	"github.com/tcordeiro/pediatria/internal/models"
)

// SessionManager defines the session operations required by the handlers.
type SessionManager interface {
	// Login authenticates against the static credential table.
	Login(username, secret string) (*models.SessionUser, error)
	// Logout destroys the active session.
	Logout()
	// CurrentUser returns the active session user, or nil.
	CurrentUser() *models.SessionUser
}

// AuthHandler handles login, logout and session inspection.
type AuthHandler struct {
	Sessions SessionManager
}

// LoginRequest is the JSON payload of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the user and returns the session snapshot. Invalid
// credentials yield 401 with no hint whether the username exists.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.Sessions.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout destroys the active session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the active session user.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := h.Sessions.CurrentUser()
	if user == nil {
		http.Error(w, "no active session", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
