package http

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/rbac"
)

// Roster lists the patients for report generation.
type Roster interface {
	Patients() ([]models.Patient, error)
}

// ReportHandler serves spreadsheet exports of the roster. Report export is
// gated by the relatorios.export token, not by registration permissions.
type ReportHandler struct {
	Roster   Roster
	Sessions SessionManager
}

// RosterXLSX writes the roster as an Excel workbook.
func (h *ReportHandler) RosterXLSX(w http.ResponseWriter, r *http.Request) {
	user := h.Sessions.CurrentUser()
	if user == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if !rbac.Allows(user.Role, rbac.RelatoriosExport) {
		http.Error(w, "permission denied: "+string(rbac.RelatoriosExport), http.StatusForbidden)
		return
	}

	patients, err := h.Roster.Patients()
	if err != nil {
		writeGateError(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Pacientes"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Nome", "Nascimento", "Sexo", "Cadastro", "Convênio"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for row, p := range patients {
		values := []string{p.ID, p.Name, p.BirthDate, p.Sex, p.RegisteredAt, p.Insurance}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pacientes.xlsx"`)
	if err := f.Write(w); err != nil {
		http.Error(w, fmt.Sprintf("write workbook: %v", err), http.StatusInternalServerError)
	}
}
