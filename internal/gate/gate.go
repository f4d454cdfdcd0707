// Package gate is the single place where record store mutation is allowed
// to happen. Every write is wrapped with a permission check derived from
// the target namespace and the operation kind; on denial nothing is
// performed and the caller is told which token was missing.
package gate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/rbac"
	"github.com/tcordeiro/pediatria/internal/records"
	"github.com/tcordeiro/pediatria/internal/store"
)

// ErrNotAuthenticated is returned when no session is active.
var ErrNotAuthenticated = fmt.Errorf("gate: not authenticated")

// ErrUnknownNamespace is returned for namespaces no module owns.
var ErrUnknownNamespace = fmt.Errorf("gate: unknown namespace")

// PermissionError reports a denied operation and the missing token, so the
// UI can react instead of silently dropping the save.
type PermissionError struct {
	Token rbac.Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("gate: permission denied: %s", e.Token)
}

// Sessions is the slice of the session manager the gate needs.
type Sessions interface {
	CurrentUser() *models.SessionUser
}

// Gate mediates all access to the record store.
type Gate struct {
	store    *store.RecordStore
	sessions Sessions
	now      func() time.Time
	newID    func() string
}

// New builds a Gate. now and newID are injectable for tests; nil means
// time.Now and uuid.NewString.
func New(s *store.RecordStore, sessions Sessions, now func() time.Time, newID func() string) *Gate {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Gate{store: s, sessions: sessions, now: now, newID: newID}
}

// check resolves the active role and verifies it holds the token required
// for op on namespace ns.
func (g *Gate) check(ns string, op records.Op) error {
	user := g.sessions.CurrentUser()
	if user == nil {
		return ErrNotAuthenticated
	}
	token, ok := records.PermissionFor(ns, op)
	if !ok {
		return ErrUnknownNamespace
	}
	if !rbac.Allows(user.Role, token) {
		return &PermissionError{Token: token}
	}
	return nil
}

// GetRecord reads the raw record at (ns, patientID) after a read check.
func (g *Gate) GetRecord(ns, patientID string) (json.RawMessage, bool, error) {
	if err := g.check(ns, records.OpRead); err != nil {
		return nil, false, err
	}
	raw, ok := g.store.GetRaw(ns, patientID)
	return raw, ok, nil
}

// PutRecord validates raw against the namespace's document type and writes
// it. On denial or validation failure nothing is stored.
func (g *Gate) PutRecord(ns, patientID string, raw json.RawMessage) error {
	if err := g.check(ns, records.OpWrite); err != nil {
		return err
	}
	if _, err := records.Decode(ns, raw); err != nil {
		return err
	}
	return g.store.PutRaw(ns, patientID, raw)
}

// DeleteRecord removes the record at (ns, patientID).
func (g *Gate) DeleteRecord(ns, patientID string) error {
	if err := g.check(ns, records.OpDelete); err != nil {
		return err
	}
	return g.store.Delete(ns, patientID)
}

// Patients lists the roster after a registration read check.
func (g *Gate) Patients() ([]models.Patient, error) {
	if err := g.checkToken(rbac.CadastroRead); err != nil {
		return nil, err
	}
	return g.store.Patients()
}

// Patient looks up one roster entry.
func (g *Gate) Patient(id string) (models.Patient, bool, error) {
	if err := g.checkToken(rbac.CadastroRead); err != nil {
		return models.Patient{}, false, err
	}
	return g.store.Patient(id)
}

// CreatePatient assigns a fresh opaque ID and registration timestamp and
// adds the patient to the roster.
func (g *Gate) CreatePatient(p models.Patient) (models.Patient, error) {
	if err := g.checkToken(rbac.CadastroCreate); err != nil {
		return models.Patient{}, err
	}
	p.ID = g.newID()
	p.RegisteredAt = g.now().UTC().Format(time.RFC3339)
	if err := g.store.AddPatient(p); err != nil {
		return models.Patient{}, err
	}
	return p, nil
}

// UpdatePatient replaces the roster entry with the same ID.
func (g *Gate) UpdatePatient(p models.Patient) error {
	if err := g.checkToken(rbac.CadastroUpdate); err != nil {
		return err
	}
	return g.store.UpdatePatient(p)
}

// DeletePatient cascades over the roster entry and every namespaced record.
// Beyond registration write access it requires the distinct delete token.
func (g *Gate) DeletePatient(id string) error {
	if err := g.checkToken(rbac.CadastroUpdate); err != nil {
		return err
	}
	if err := g.checkToken(rbac.CadastroDelete); err != nil {
		return err
	}
	return g.store.DeletePatientCascade(id)
}

func (g *Gate) checkToken(token rbac.Permission) error {
	user := g.sessions.CurrentUser()
	if user == nil {
		return ErrNotAuthenticated
	}
	if !rbac.Allows(user.Role, token) {
		return &PermissionError{Token: token}
	}
	return nil
}
