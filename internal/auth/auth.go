// Package auth authenticates users against the static credential table and
// manages the single per-process session, persisting it so it survives a
// restart within its time-to-live.
package auth

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tcordeiro/pediatria/internal/kv"
	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/rbac"
)

// SessionTTL is how long a session stays valid after login. Expiry is
// evaluated lazily on restore, there is no running timer.
const SessionTTL = 8 * time.Hour

// sessionKey is the reserved medium key the session record is persisted
// under.
const sessionKey = "pediatria\x1fauth"

// ErrInvalidCredentials is returned on any login failure. Unknown username
// and wrong secret are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Manager holds the static credential table and the active session.
// Exactly one session is active per process instance.
type Manager struct {
	medium kv.Medium
	users  []models.User
	now    func() time.Time
	log    *zap.Logger

	mu      sync.Mutex
	current *models.SessionUser
}

// NewManager builds a Manager over the given medium and credential table.
// now is injectable for tests; nil means time.Now. A nil log means no-op
// logging.
func NewManager(medium kv.Medium, users []models.User, now func() time.Time, log *zap.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{medium: medium, users: users, now: now, log: log}
}

// DefaultUsers is the deployment credential table used when the config file
// does not supply one.
func DefaultUsers() []models.User {
	return []models.User{
		{
			Username:    "medica",
			DisplayName: "Médica Responsável",
			Role:        rbac.Clinician,
			Secret:      "MED2024",
			License:     "CRM 00000-0",
			Specialty:   "Pediatria",
		},
		{
			Username:    "secretaria",
			DisplayName: "Secretária",
			Role:        rbac.FrontDesk,
			Secret:      "SEC2024",
		},
	}
}

// Login matches username and secret exactly against the credential table.
// On success it issues a session with issuedAt = now and persists it.
func (m *Manager) Login(username, secret string) (*models.SessionUser, error) {
	for _, u := range m.users {
		if u.Username == username && u.Secret == secret {
			su := u.Public()
			m.mu.Lock()
			m.current = &su
			m.mu.Unlock()
			m.persist(su, m.now())
			return &su, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Logout destroys the active session in memory and on the medium.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if err := m.medium.Delete(sessionKey); err != nil {
		m.log.Warn("persisted session record not removed", zap.Error(err))
	}
}

// RestoreSession loads the persisted session at process start. An expired
// or unreadable record is discarded and treated as logged out.
func (m *Manager) RestoreSession() *models.SessionUser {
	raw, ok := m.medium.Get(sessionKey)
	if !ok {
		return nil
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || !rbac.Valid(sess.User.Role) {
		m.discard()
		return nil
	}
	issued := time.UnixMilli(sess.IssuedAt)
	if m.now().Sub(issued) >= SessionTTL {
		m.discard()
		return nil
	}
	m.mu.Lock()
	m.current = &sess.User
	m.mu.Unlock()
	return &sess.User
}

// CurrentUser returns the active session user, or nil when logged out.
func (m *Manager) CurrentUser() *models.SessionUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) discard() {
	if err := m.medium.Delete(sessionKey); err != nil {
		m.log.Warn("stale session record not removed", zap.Error(err))
	}
}

// persist writes the session record. A failed persist only costs session
// restore after a restart; the in-memory session stays valid, so the
// failure is logged rather than failing the login.
func (m *Manager) persist(user models.SessionUser, issued time.Time) {
	raw, err := json.Marshal(models.Session{User: user, IssuedAt: issued.UnixMilli()})
	if err != nil {
		m.log.Warn("session record not persisted", zap.Error(err))
		return
	}
	if err := m.medium.Set(sessionKey, string(raw)); err != nil {
		m.log.Warn("session record not persisted", zap.Error(err))
	}
}
