// Package store implements the namespaced key-value record store shared by
// every data module. It owns addressing and durability only; record values
// stay opaque JSON owned by the module that wrote them.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tcordeiro/pediatria/internal/kv"
	"github.com/tcordeiro/pediatria/internal/models"
)

// keySep separates the key parts. The unit separator never occurs in
// namespaces or patient IDs, which makes recordKey injective and
// prefix-disjoint across distinct patients: enumerating one patient's keys
// can never pick up another patient whose ID is a textual prefix or
// substring of the first.
const keySep = "\x1f"

// recordPrefix marks namespaced record keys; reserved keys (roster,
// session) live outside it.
const recordPrefix = "rec" + keySep

// rosterKey is the reserved key holding the patient roster.
const rosterKey = "pediatria" + keySep + "pacientes"

// ErrPatientExists is returned when adding a roster entry whose ID is
// already present.
var ErrPatientExists = errors.New("store: patient already exists")

// ErrPatientNotFound is returned when updating a roster entry that does not
// exist.
var ErrPatientNotFound = errors.New("store: patient not found")

// ErrInvalidKeyPart rejects namespaces or patient IDs containing the key
// separator.
var ErrInvalidKeyPart = errors.New("store: namespace or patient id contains reserved separator")

// ErrorKind classifies store failures.
type ErrorKind int

const (
	// SerializationFailure: the value could not be JSON-serialized.
	SerializationFailure ErrorKind = iota
	// WriteFailure: the backing medium rejected the write (e.g. quota).
	WriteFailure
)

// Error is a store operation failure. It wraps the underlying cause.
type Error struct {
	Kind      ErrorKind
	Namespace string
	PatientID string
	Err       error
}

func (e *Error) Error() string {
	kind := "serialization failure"
	if e.Kind == WriteFailure {
		kind = "write failure"
	}
	return fmt.Sprintf("store: %s for (%s, %s): %v", kind, e.Namespace, e.PatientID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Key addresses one namespace entry.
type Key struct {
	Namespace string
	PatientID string
}

// recordKey builds the textual medium key for (namespace, patientID).
// Pure, injective, prefix-disjoint across distinct patient IDs.
func recordKey(namespace, patientID string) string {
	return recordPrefix + namespace + keySep + patientID
}

// splitRecordKey is the inverse of recordKey. ok is false for reserved keys
// and anything else outside the record key space.
func splitRecordKey(key string) (Key, bool) {
	rest, found := strings.CutPrefix(key, recordPrefix)
	if !found {
		return Key{}, false
	}
	ns, id, found := strings.Cut(rest, keySep)
	if !found || ns == "" || id == "" {
		return Key{}, false
	}
	return Key{Namespace: ns, PatientID: id}, true
}

// RecordStore is the persistence layer shared by all modules. All
// operations are synchronous; mutation goes through the authorization gate,
// never through a RecordStore held directly by presentation code.
type RecordStore struct {
	m kv.Medium
}

// New returns a RecordStore over the given backing medium.
func New(m kv.Medium) *RecordStore {
	return &RecordStore{m: m}
}

func checkParts(namespace, patientID string) error {
	if strings.Contains(namespace, keySep) || strings.Contains(patientID, keySep) {
		return ErrInvalidKeyPart
	}
	if namespace == "" || patientID == "" {
		return fmt.Errorf("store: empty namespace or patient id")
	}
	return nil
}

// Put serializes value and stores it under (namespace, patientID).
func (s *RecordStore) Put(namespace, patientID string, value any) error {
	if err := checkParts(namespace, patientID); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return &Error{Kind: SerializationFailure, Namespace: namespace, PatientID: patientID, Err: err}
	}
	return s.PutRaw(namespace, patientID, raw)
}

// PutRaw stores an already-serialized value verbatim. Used by the importer
// to guarantee byte-for-byte reconstruction.
func (s *RecordStore) PutRaw(namespace, patientID string, raw json.RawMessage) error {
	if err := checkParts(namespace, patientID); err != nil {
		return err
	}
	if !json.Valid(raw) {
		return &Error{
			Kind: SerializationFailure, Namespace: namespace, PatientID: patientID,
			Err: errors.New("value is not valid JSON"),
		}
	}
	if err := s.m.Set(recordKey(namespace, patientID), string(raw)); err != nil {
		return &Error{Kind: WriteFailure, Namespace: namespace, PatientID: patientID, Err: err}
	}
	return nil
}

// Get unmarshals the entry at (namespace, patientID) into out. The boolean
// reports presence; absence is not an error.
func (s *RecordStore) Get(namespace, patientID string, out any) (bool, error) {
	raw, ok := s.GetRaw(namespace, patientID)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, &Error{Kind: SerializationFailure, Namespace: namespace, PatientID: patientID, Err: err}
	}
	return true, nil
}

// GetRaw returns the stored bytes for (namespace, patientID) verbatim.
func (s *RecordStore) GetRaw(namespace, patientID string) (json.RawMessage, bool) {
	v, ok := s.m.Get(recordKey(namespace, patientID))
	if !ok {
		return nil, false
	}
	return json.RawMessage(v), true
}

// Delete removes the entry at (namespace, patientID). A backing-medium
// failure is reported; the entry then still exists.
func (s *RecordStore) Delete(namespace, patientID string) error {
	if err := checkParts(namespace, patientID); err != nil {
		return err
	}
	if err := s.m.Delete(recordKey(namespace, patientID)); err != nil {
		return &Error{Kind: WriteFailure, Namespace: namespace, PatientID: patientID, Err: err}
	}
	return nil
}

// KeysForPatient enumerates every namespace entry belonging to patientID.
// Matching is by exact key decomposition, never substring containment.
func (s *RecordStore) KeysForPatient(patientID string) []Key {
	var keys []Key
	for _, k := range s.m.Keys() {
		rk, ok := splitRecordKey(k)
		if ok && rk.PatientID == patientID {
			keys = append(keys, rk)
		}
	}
	return keys
}

// Patients returns the roster. An absent roster is an empty one.
func (s *RecordStore) Patients() ([]models.Patient, error) {
	v, ok := s.m.Get(rosterKey)
	if !ok {
		return nil, nil
	}
	var roster []models.Patient
	if err := json.Unmarshal([]byte(v), &roster); err != nil {
		return nil, &Error{Kind: SerializationFailure, Namespace: "roster", Err: err}
	}
	return roster, nil
}

// Patient looks up one roster entry by ID.
func (s *RecordStore) Patient(id string) (models.Patient, bool, error) {
	roster, err := s.Patients()
	if err != nil {
		return models.Patient{}, false, err
	}
	for _, p := range roster {
		if p.ID == id {
			return p, true, nil
		}
	}
	return models.Patient{}, false, nil
}

// AddPatient appends a new roster entry. The ID must be set by the caller
// and must not collide with an existing entry.
func (s *RecordStore) AddPatient(p models.Patient) error {
	if err := checkParts("cadastro", p.ID); err != nil {
		return err
	}
	roster, err := s.Patients()
	if err != nil {
		return err
	}
	for _, existing := range roster {
		if existing.ID == p.ID {
			return ErrPatientExists
		}
	}
	return s.writeRoster(append(roster, p))
}

// UpdatePatient replaces the roster entry with the same ID.
func (s *RecordStore) UpdatePatient(p models.Patient) error {
	roster, err := s.Patients()
	if err != nil {
		return err
	}
	for i, existing := range roster {
		if existing.ID == p.ID {
			roster[i] = p
			return s.writeRoster(roster)
		}
	}
	return ErrPatientNotFound
}

// DeletePatientCascade removes every namespace entry for the given patient
// and then the roster entry. Records go first: a failure mid-cascade leaves
// the patient on the roster and is reported, never a roster-less set of
// orphan records.
func (s *RecordStore) DeletePatientCascade(patientID string) error {
	roster, err := s.Patients()
	if err != nil {
		return err
	}
	kept := roster[:0]
	found := false
	for _, p := range roster {
		if p.ID == patientID {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrPatientNotFound
	}
	for _, k := range s.KeysForPatient(patientID) {
		if err := s.m.Delete(recordKey(k.Namespace, k.PatientID)); err != nil {
			return &Error{Kind: WriteFailure, Namespace: k.Namespace, PatientID: patientID, Err: err}
		}
	}
	return s.writeRoster(kept)
}

func (s *RecordStore) writeRoster(roster []models.Patient) error {
	raw, err := json.Marshal(roster)
	if err != nil {
		return &Error{Kind: SerializationFailure, Namespace: "roster", Err: err}
	}
	if err := s.m.Set(rosterKey, string(raw)); err != nil {
		return &Error{Kind: WriteFailure, Namespace: "roster", Err: err}
	}
	return nil
}
