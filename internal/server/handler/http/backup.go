package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tcordeiro/pediatria/internal/backup"
	"github.com/tcordeiro/pediatria/internal/models"
)

// Exporter produces the portable backup document.
type Exporter interface {
	Export() (*models.BackupDocument, error)
}

// Importer validates and merges an external backup document.
type Importer interface {
	Validate(doc *models.BackupDocument) error
	Import(doc *models.BackupDocument) (*models.ImportSummary, error)
}

// BackupHandler serves export and merge-import. Both are bulk operations
// available to any authenticated session holder; the session guard
// upstream is the only gate.
type BackupHandler struct {
	Exporter Exporter
	Importer Importer
}

// Export streams the backup document as a JSON download.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Exporter.Export()
	if err != nil {
		writeGateError(w, err)
		return
	}
	filename := fmt.Sprintf("backup-pediatria-%s.json", doc.ExportedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_ = json.NewEncoder(w).Encode(doc)
}

// ImportPreview is returned when the confirm parameter is absent: the
// caller is shown what the document contains and must re-post with
// confirm=true. Nothing is mutated.
type ImportPreview struct {
	PatientCount    int       `json:"patientCount"`
	ExportedAt      time.Time `json:"exportedAt"`
	ConfirmRequired bool      `json:"confirmRequired"`
}

// Import merges a posted backup document. The merge is irreversible, so it
// runs only with explicit confirmation: without ?confirm the handler
// answers with a preview, and confirm=false aborts with no store mutation.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	var doc models.BackupDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid backup document", http.StatusBadRequest)
		return
	}
	if err := h.Importer.Validate(&doc); err != nil {
		if errors.Is(err, backup.ErrInvalidFormat) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeGateError(w, err)
		return
	}

	switch r.URL.Query().Get("confirm") {
	case "true":
		summary, err := h.Importer.Import(&doc)
		if err != nil {
			writeGateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	case "false":
		http.Error(w, backup.ErrUserAborted.Error(), http.StatusConflict)
	default:
		writeJSON(w, http.StatusOK, ImportPreview{
			PatientCount:    len(doc.Patients),
			ExportedAt:      doc.ExportedAt,
			ConfirmRequired: true,
		})
	}
}
