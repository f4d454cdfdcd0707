// Package backup implements the export and merge-import engine that moves a
// full record set between devices as a single JSON document. It operates on
// the record store directly: export/import is a coarse administrative
// operation gated only by session membership, not by field-level tokens.
package backup

import (
	"encoding/json"
	"time"

	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/store"
)

// Exporter serializes the roster plus every namespaced record into a
// portable backup document.
type Exporter struct {
	store *store.RecordStore
	now   func() time.Time
}

// NewExporter builds an Exporter. now is injectable for tests; nil means
// time.Now.
func NewExporter(s *store.RecordStore, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{store: s, now: now}
}

// Export enumerates every key under each roster patient's namespace and
// copies each value verbatim. Two exports of the same store state differ
// only in ExportedAt.
func (e *Exporter) Export() (*models.BackupDocument, error) {
	patients, err := e.store.Patients()
	if err != nil {
		return nil, err
	}

	doc := &models.BackupDocument{
		FormatVersion:    models.BackupFormatVersion,
		ExportedAt:       e.now().UTC(),
		Patients:         patients,
		RecordsByPatient: make(map[string]map[string]json.RawMessage, len(patients)),
	}
	for _, p := range patients {
		entries := make(map[string]json.RawMessage)
		for _, k := range e.store.KeysForPatient(p.ID) {
			if raw, ok := e.store.GetRaw(k.Namespace, k.PatientID); ok {
				entries[k.Namespace] = raw
			}
		}
		doc.RecordsByPatient[p.ID] = entries
	}
	return doc, nil
}
