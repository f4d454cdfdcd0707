package backup

import (
	"errors"
	"fmt"

	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/store"
)

// ErrInvalidFormat rejects a document whose required parts are missing or
// malformed. Validation runs before any mutation, so a rejected import
// leaves the store exactly as it was.
var ErrInvalidFormat = errors.New("backup: invalid backup document")

// ErrUserAborted is the declined-confirmation outcome. The importer itself
// never runs unconfirmed; the presentation boundary returns this when the
// user declines the merge.
var ErrUserAborted = errors.New("backup: import aborted by user")

// Importer merges an external backup document into the live store.
// Merge is the only supported mode; nothing is replaced wholesale.
type Importer struct {
	store *store.RecordStore
}

// NewImporter builds an Importer over the live store.
func NewImporter(s *store.RecordStore) *Importer {
	return &Importer{store: s}
}

// Validate checks the structural requirements of doc without mutating
// anything.
func (im *Importer) Validate(doc *models.BackupDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}
	if doc.FormatVersion == "" {
		return fmt.Errorf("%w: missing formatVersion", ErrInvalidFormat)
	}
	if doc.FormatVersion != models.BackupFormatVersion {
		return fmt.Errorf("%w: unsupported formatVersion %q", ErrInvalidFormat, doc.FormatVersion)
	}
	if doc.Patients == nil {
		return fmt.Errorf("%w: missing patients", ErrInvalidFormat)
	}
	if doc.RecordsByPatient == nil {
		return fmt.Errorf("%w: missing recordsByPatient", ErrInvalidFormat)
	}
	for i, p := range doc.Patients {
		if p.ID == "" {
			return fmt.Errorf("%w: patient %d has no id", ErrInvalidFormat, i)
		}
	}
	return nil
}

// Import merges doc into the store and reports what it did.
//
// Roster policy: a patient is added only if its ID is absent; present IDs
// are left untouched with no field-level merge (first writer wins). Record
// policy: every namespace entry belonging to an imported patient ID is
// written unconditionally at its exact key, overwriting any existing value
// ("last import wins per record"). Importing the same document twice leaves
// the store identical to importing it once.
func (im *Importer) Import(doc *models.BackupDocument) (*models.ImportSummary, error) {
	if err := im.Validate(doc); err != nil {
		return nil, err
	}

	summary := &models.ImportSummary{}
	imported := make(map[string]bool, len(doc.Patients))
	for _, p := range doc.Patients {
		imported[p.ID] = true
		err := im.store.AddPatient(p)
		switch {
		case err == nil:
			summary.PatientsAdded++
		case errors.Is(err, store.ErrPatientExists):
			summary.PatientsSkipped++
		default:
			return nil, err
		}
	}

	for patientID, entries := range doc.RecordsByPatient {
		// Scope the merge to the named patient set of the document.
		if !imported[patientID] {
			continue
		}
		for namespace, raw := range entries {
			if err := im.store.PutRaw(namespace, patientID, raw); err != nil {
				return nil, err
			}
			summary.RecordsWritten++
		}
	}
	return summary, nil
}
