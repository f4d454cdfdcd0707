package middleware

import (
	"net/http"

	"github.com/tcordeiro/pediatria/internal/models"
)

// SessionProvider exposes the active per-process session.
type SessionProvider interface {
	CurrentUser() *models.SessionUser
}

// SessionGuard rejects requests while no session is active. The login
// endpoint is excluded so a session can be established in the first place.
func SessionGuard(sessions SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/login" {
				next.ServeHTTP(w, r)
				return
			}
			if sessions.CurrentUser() == nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
