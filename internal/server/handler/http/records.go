package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tcordeiro/pediatria/internal/records"
)

// RecordGate defines the namespaced record operations required by the
// handlers; the authorization gate implements it.
type RecordGate interface {
	GetRecord(namespace, patientID string) (json.RawMessage, bool, error)
	PutRecord(namespace, patientID string, raw json.RawMessage) error
	DeleteRecord(namespace, patientID string) error
}

// RecordHandler serves the per-module record endpoints under
// /api/patients/{id}/records/{namespace}.
type RecordHandler struct {
	Gate RecordGate
}

// Get returns the stored document for the namespace, verbatim.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")
	if !records.Known(ns) {
		http.Error(w, "unknown record namespace", http.StatusNotFound)
		return
	}
	raw, ok, err := h.Gate.GetRecord(ns, chi.URLParam(r, "id"))
	if err != nil {
		writeGateError(w, err)
		return
	}
	if !ok {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

// Put validates the document against the namespace's schema and stores it.
// A denied or invalid save stores nothing.
func (h *RecordHandler) Put(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")
	if !records.Known(ns) {
		http.Error(w, "unknown record namespace", http.StatusNotFound)
		return
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Gate.PutRecord(ns, chi.URLParam(r, "id"), raw); err != nil {
		writeGateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the namespace document of the patient.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")
	if !records.Known(ns) {
		http.Error(w, "unknown record namespace", http.StatusNotFound)
		return
	}
	if err := h.Gate.DeleteRecord(ns, chi.URLParam(r, "id")); err != nil {
		writeGateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
