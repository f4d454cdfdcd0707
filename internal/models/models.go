// Package models defines the core data structures of the record keeper:
// users, sessions, patients and the backup document.
package models

import (
	"encoding/json"
	"time"

	"github.com/tcordeiro/pediatria/internal/rbac"
)

// User is one entry of the static credential table. Users are defined at
// deployment and never created or edited at runtime.
type User struct {
	// Username is the login name.
	Username string `json:"username"`
	// DisplayName is shown in the UI header and on generated documents.
	DisplayName string `json:"displayName"`
	// Role determines the permission set.
	Role rbac.Role `json:"role"`
	// Secret is the login credential. Compared by exact match.
	Secret string `json:"secret"`
	// License is the professional license number, clinicians only.
	License string `json:"license,omitempty"`
	// Specialty is the clinical specialty, clinicians only.
	Specialty string `json:"specialty,omitempty"`
}

// SessionUser is the public snapshot of a logged-in user. It never carries
// the credential.
type SessionUser struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Role        rbac.Role `json:"role"`
	License     string    `json:"license,omitempty"`
	Specialty   string    `json:"specialty,omitempty"`
}

// Public returns the session snapshot of u.
func (u User) Public() SessionUser {
	return SessionUser{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		License:     u.License,
		Specialty:   u.Specialty,
	}
}

// Session is the persisted session record: the user snapshot plus the issue
// instant in Unix milliseconds.
type Session struct {
	User     SessionUser `json:"user"`
	IssuedAt int64       `json:"issuedAt"`
}

// Patient is one roster entry. The ID is opaque, globally unique and
// assigned once, when the patient is created.
type Patient struct {
	ID           string `json:"id"`
	Name         string `json:"nome"`
	BirthDate    string `json:"dataNascimento"`
	Sex          string `json:"sexo"`
	RegisteredAt string `json:"dataCadastro"`

	// Free-form contact and insurance fields.
	MotherName string `json:"nomeMae,omitempty"`
	FatherName string `json:"nomePai,omitempty"`
	Phone      string `json:"telefone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"endereco,omitempty"`
	Insurance  string `json:"convenio,omitempty"`
}

// BackupFormatVersion is the only backup document version ever produced.
const BackupFormatVersion = "1.0"

// BackupDocument is the portable export artifact. It is created only by the
// exporter, consumed only by the importer, and never persisted inside the
// live store. Record values are kept as raw JSON so the round trip is
// byte-for-byte.
type BackupDocument struct {
	FormatVersion    string                                `json:"formatVersion"`
	ExportedAt       time.Time                             `json:"exportedAt"`
	Patients         []Patient                             `json:"patients"`
	RecordsByPatient map[string]map[string]json.RawMessage `json:"recordsByPatient"`
}

// ImportSummary reports what a merge import actually did.
type ImportSummary struct {
	// PatientsAdded counts roster entries that were new to this store.
	PatientsAdded int `json:"patientsAdded"`
	// PatientsSkipped counts roster entries whose ID was already present;
	// those are left untouched, first writer wins.
	PatientsSkipped int `json:"patientsSkipped"`
	// RecordsWritten counts namespace entries written into the store.
	RecordsWritten int `json:"recordsWritten"`
}
