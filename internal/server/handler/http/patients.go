package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tcordeiro/pediatria/internal/gate"
	"github.com/tcordeiro/pediatria/internal/kv"
	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/store"
)

// PatientGate defines the roster operations required by the handlers; the
// authorization gate implements it.
type PatientGate interface {
	Patients() ([]models.Patient, error)
	Patient(id string) (models.Patient, bool, error)
	CreatePatient(p models.Patient) (models.Patient, error)
	UpdatePatient(p models.Patient) error
	DeletePatient(id string) error
}

// PatientHandler serves the patient roster endpoints.
type PatientHandler struct {
	Gate PatientGate
}

// List returns the full roster.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.Gate.Patients()
	if err != nil {
		writeGateError(w, err)
		return
	}
	if patients == nil {
		patients = []models.Patient{}
	}
	writeJSON(w, http.StatusOK, patients)
}

// Create registers a new patient; the ID and registration timestamp are
// assigned server-side.
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p models.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if p.Name == "" {
		http.Error(w, "patient name is required", http.StatusBadRequest)
		return
	}
	created, err := h.Gate.CreatePatient(p)
	if err != nil {
		writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns one roster entry.
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok, err := h.Gate.Patient(chi.URLParam(r, "id"))
	if err != nil {
		writeGateError(w, err)
		return
	}
	if !ok {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update replaces the roster entry; the ID in the path wins over the body.
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p models.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := h.Gate.UpdatePatient(p); err != nil {
		writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete removes the patient and cascades over every namespaced record.
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Gate.DeletePatient(chi.URLParam(r, "id")); err != nil {
		writeGateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeGateError maps gate and store failures onto HTTP statuses. Every
// failure is surfaced to the caller; none are swallowed.
func writeGateError(w http.ResponseWriter, err error) {
	var perr *gate.PermissionError
	switch {
	case errors.As(err, &perr):
		http.Error(w, perr.Error(), http.StatusForbidden)
	case errors.Is(err, gate.ErrNotAuthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, gate.ErrUnknownNamespace):
		http.Error(w, "unknown record namespace", http.StatusNotFound)
	case errors.Is(err, store.ErrPatientNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	case errors.Is(err, store.ErrPatientExists):
		http.Error(w, "patient already exists", http.StatusConflict)
	case errors.Is(err, kv.ErrQuotaExceeded):
		http.Error(w, "storage quota exceeded", http.StatusInsufficientStorage)
	default:
		var serr *store.Error
		if errors.As(err, &serr) {
			http.Error(w, serr.Error(), http.StatusInternalServerError)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	}
}
