package gate

import (
	"errors"
	"testing"
	"time"

	"github.com/tcordeiro/pediatria/internal/kv"
	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/rbac"
	"github.com/tcordeiro/pediatria/internal/records"
	"github.com/tcordeiro/pediatria/internal/store"
)

type fakeSessions struct {
	user *models.SessionUser
}

func (f *fakeSessions) CurrentUser() *models.SessionUser { return f.user }

func clinician() *models.SessionUser {
	return &models.SessionUser{Username: "medica", Role: rbac.Clinician}
}

func frontDesk() *models.SessionUser {
	return &models.SessionUser{Username: "secretaria", Role: rbac.FrontDesk}
}

func newGate(user *models.SessionUser) (*Gate, *store.RecordStore) {
	s := store.New(kv.NewMemory(0))
	ids := 0
	newID := func() string { ids++; return string(rune('a' + ids - 1)) }
	now := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return New(s, &fakeSessions{user: user}, now, newID), s
}

func TestPutRecord_Allowed(t *testing.T) {
	g, s := newGate(clinician())
	raw := []byte(`[{"data":"2024-03-01","peso":6.4}]`)
	if err := g.PutRecord(records.NSCrescimento, "p1", raw); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}
	got, ok := s.GetRaw(records.NSCrescimento, "p1")
	if !ok || string(got) != string(raw) {
		t.Errorf("stored = %q, %v", got, ok)
	}
}

func TestPutRecord_DeniedLeavesStoreUntouched(t *testing.T) {
	g, s := newGate(frontDesk())
	err := g.PutRecord(records.NSVacinas, "p1", []byte(`[{"nome":"BCG","data":"2024-03-01"}]`))
	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("PutRecord = %v; want PermissionError", err)
	}
	if perr.Token != rbac.VacinacaoWrite {
		t.Errorf("denied token = %q; want vacinacao.write", perr.Token)
	}
	if _, ok := s.GetRaw(records.NSVacinas, "p1"); ok {
		t.Error("denied write reached the store")
	}
}

func TestPutRecord_InvalidDocumentNotStored(t *testing.T) {
	g, s := newGate(clinician())
	err := g.PutRecord(records.NSCrescimento, "p1", []byte(`[{"peso":6.4}]`))
	if err == nil {
		t.Fatal("invalid document accepted")
	}
	if _, ok := s.GetRaw(records.NSCrescimento, "p1"); ok {
		t.Error("invalid document reached the store")
	}
}

func TestPutRecord_NoSession(t *testing.T) {
	g, _ := newGate(nil)
	err := g.PutRecord(records.NSCrescimento, "p1", []byte(`[]`))
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("PutRecord = %v; want ErrNotAuthenticated", err)
	}
}

func TestPutRecord_UnknownNamespace(t *testing.T) {
	g, _ := newGate(clinician())
	if err := g.PutRecord("financeiro", "p1", []byte(`{}`)); !errors.Is(err, ErrUnknownNamespace) {
		t.Fatalf("PutRecord = %v; want ErrUnknownNamespace", err)
	}
}

func TestGetRecord_FrontDeskClinicalDenied(t *testing.T) {
	g, _ := newGate(frontDesk())
	_, _, err := g.GetRecord(records.NSCrescimento, "p1")
	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("GetRecord = %v; want PermissionError", err)
	}
}

func TestFrontDesk_RegistrationAndScheduling(t *testing.T) {
	g, _ := newGate(frontDesk())

	p, err := g.CreatePatient(models.Patient{Name: "Ana", BirthDate: "2023-06-10", Sex: "F"})
	if err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	if p.ID == "" || p.RegisteredAt == "" {
		t.Errorf("created patient missing ID or timestamp: %+v", p)
	}

	p.Name = "Ana Clara"
	if err := g.UpdatePatient(p); err != nil {
		t.Fatalf("UpdatePatient failed: %v", err)
	}

	sched := []byte(`[{"data":"2024-06-01","hora":"10:00","status":"agendada"}]`)
	if err := g.PutRecord(records.NSAgendamento, p.ID, sched); err != nil {
		t.Fatalf("scheduling write denied: %v", err)
	}

	// Deletion requires the distinct delete token the front desk lacks.
	err = g.DeletePatient(p.ID)
	var perr *PermissionError
	if !errors.As(err, &perr) || perr.Token != rbac.CadastroDelete {
		t.Fatalf("DeletePatient = %v; want denial on cadastro.delete", err)
	}
	if _, ok, _ := g.Patient(p.ID); !ok {
		t.Error("denied deletion removed the patient")
	}
}

func TestDeletePatient_CascadesForClinician(t *testing.T) {
	g, s := newGate(clinician())
	p, err := g.CreatePatient(models.Patient{Name: "Bruno"})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.PutRecord(records.NSVacinas, p.ID, []byte(`[{"nome":"BCG","data":"2024-03-01"}]`)); err != nil {
		t.Fatal(err)
	}
	if err := g.DeletePatient(p.ID); err != nil {
		t.Fatalf("DeletePatient failed: %v", err)
	}
	if got := s.KeysForPatient(p.ID); len(got) != 0 {
		t.Errorf("records survived patient deletion: %v", got)
	}
}

func TestDeleteRecord(t *testing.T) {
	g, s := newGate(clinician())
	if err := g.PutRecord(records.NSAlergias, "p1", []byte(`[{"substancia":"dipirona"}]`)); err != nil {
		t.Fatal(err)
	}
	if err := g.DeleteRecord(records.NSAlergias, "p1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, ok := s.GetRaw(records.NSAlergias, "p1"); ok {
		t.Error("record survived deletion")
	}
}
