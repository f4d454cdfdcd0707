package backup

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tcordeiro/pediatria/internal/kv"
	"github.com/tcordeiro/pediatria/internal/models"
	"github.com/tcordeiro/pediatria/internal/store"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
}

func seededStore(t *testing.T) *store.RecordStore {
	t.Helper()
	s := store.New(kv.NewMemory(0))
	patients := []models.Patient{
		{ID: "a1", Name: "Ana", BirthDate: "2023-06-10", Sex: "F", RegisteredAt: "2023-06-15T09:00:00Z"},
		{ID: "b2", Name: "Bruno", BirthDate: "2022-01-05", Sex: "M", RegisteredAt: "2022-01-10T09:00:00Z"},
	}
	for _, p := range patients {
		if err := s.AddPatient(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.PutRaw("crescimento", "a1", []byte(`[{"data":"2024-03-01","peso":6.4}]`)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutRaw("vacinas", "a1", []byte(`[{"nome":"BCG","data":"2023-06-11"}]`)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutRaw("neonatal", "b2", []byte(`{"pesoNascimento":3200}`)); err != nil {
		t.Fatal(err)
	}
	return s
}

// snapshot captures the full observable state of a store for comparison.
func snapshot(t *testing.T, s *store.RecordStore) map[string]string {
	t.Helper()
	out := map[string]string{}
	patients, err := s.Patients()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range patients {
		raw, _ := json.Marshal(p)
		out["roster/"+p.ID] = string(raw)
		for _, k := range s.KeysForPatient(p.ID) {
			v, _ := s.GetRaw(k.Namespace, k.PatientID)
			out[k.Namespace+"/"+k.PatientID] = string(v)
		}
	}
	return out
}

func TestExport_ContentsAndDeterminism(t *testing.T) {
	s := seededStore(t)
	e := NewExporter(s, fixedNow)

	doc, err := e.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if doc.FormatVersion != "1.0" {
		t.Errorf("FormatVersion = %q", doc.FormatVersion)
	}
	if len(doc.Patients) != 2 {
		t.Fatalf("Patients = %d; want 2", len(doc.Patients))
	}
	if got := string(doc.RecordsByPatient["a1"]["crescimento"]); got != `[{"data":"2024-03-01","peso":6.4}]` {
		t.Errorf("a1 crescimento = %s", got)
	}
	if len(doc.RecordsByPatient["a1"]) != 2 || len(doc.RecordsByPatient["b2"]) != 1 {
		t.Errorf("RecordsByPatient shape = %v", doc.RecordsByPatient)
	}

	// Identical store state, identical export (ExportedAt is pinned here).
	doc2, err := e.Export()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(doc, doc2) {
		t.Error("two exports of the same state differ")
	}
}

func TestRoundTrip_EmptyTarget(t *testing.T) {
	src := seededStore(t)
	doc, err := NewExporter(src, fixedNow).Export()
	if err != nil {
		t.Fatal(err)
	}

	dst := store.New(kv.NewMemory(0))
	summary, err := NewImporter(dst).Import(doc)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if summary.PatientsAdded != 2 || summary.PatientsSkipped != 0 || summary.RecordsWritten != 3 {
		t.Errorf("summary = %+v", summary)
	}

	if got, want := snapshot(t, dst), snapshot(t, src); !reflect.DeepEqual(got, want) {
		t.Errorf("import is not lossless:\n got %v\nwant %v", got, want)
	}
}

func TestImport_Idempotent(t *testing.T) {
	src := seededStore(t)
	doc, err := NewExporter(src, fixedNow).Export()
	if err != nil {
		t.Fatal(err)
	}

	dst := store.New(kv.NewMemory(0))
	im := NewImporter(dst)
	if _, err := im.Import(doc); err != nil {
		t.Fatal(err)
	}
	once := snapshot(t, dst)

	summary, err := im.Import(doc)
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if summary.PatientsAdded != 0 || summary.PatientsSkipped != 2 {
		t.Errorf("second import summary = %+v", summary)
	}
	if twice := snapshot(t, dst); !reflect.DeepEqual(once, twice) {
		t.Error("importing twice changed the store")
	}
}

func TestImport_MergeDoesNotClobberRoster(t *testing.T) {
	src := seededStore(t)
	doc, err := NewExporter(src, fixedNow).Export()
	if err != nil {
		t.Fatal(err)
	}

	dst := store.New(kv.NewMemory(0))
	local := models.Patient{ID: "a1", Name: "Ana (local edits)", BirthDate: "2023-06-10"}
	if err := dst.AddPatient(local); err != nil {
		t.Fatal(err)
	}
	if err := dst.AddPatient(models.Patient{ID: "z9", Name: "Zeca"}); err != nil {
		t.Fatal(err)
	}

	summary, err := NewImporter(dst).Import(doc)
	if err != nil {
		t.Fatal(err)
	}
	if summary.PatientsAdded != 1 || summary.PatientsSkipped != 1 {
		t.Errorf("summary = %+v", summary)
	}

	// First writer wins on the roster.
	got, ok, _ := dst.Patient("a1")
	if !ok || got.Name != "Ana (local edits)" {
		t.Errorf("roster entry clobbered: %+v", got)
	}
	// Pre-existing unrelated patients survive.
	if _, ok, _ := dst.Patient("z9"); !ok {
		t.Error("unrelated local patient lost")
	}
	// Records for the already-present patient are still written
	// (last import wins per record).
	raw, ok := dst.GetRaw("crescimento", "a1")
	if !ok || string(raw) != `[{"data":"2024-03-01","peso":6.4}]` {
		t.Errorf("record for present patient not written: %q, %v", raw, ok)
	}
}

func TestImport_InvalidFormat(t *testing.T) {
	dst := seededStore(t)
	before := snapshot(t, dst)
	im := NewImporter(dst)

	docs := []*models.BackupDocument{
		nil,
		{Patients: []models.Patient{}, RecordsByPatient: map[string]map[string]json.RawMessage{}},
		{FormatVersion: "2.0", Patients: []models.Patient{}, RecordsByPatient: map[string]map[string]json.RawMessage{}},
		{FormatVersion: "1.0", RecordsByPatient: map[string]map[string]json.RawMessage{}},
		{FormatVersion: "1.0", Patients: []models.Patient{}},
		{FormatVersion: "1.0", Patients: []models.Patient{{Name: "sem id"}}, RecordsByPatient: map[string]map[string]json.RawMessage{}},
	}
	for i, doc := range docs {
		if _, err := im.Import(doc); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("doc %d: Import = %v; want ErrInvalidFormat", i, err)
		}
	}
	if after := snapshot(t, dst); !reflect.DeepEqual(before, after) {
		t.Error("rejected import mutated the store")
	}
}

func TestImport_IgnoresRecordsOutsidePatientSet(t *testing.T) {
	dst := store.New(kv.NewMemory(0))
	doc := &models.BackupDocument{
		FormatVersion: "1.0",
		ExportedAt:    fixedNow(),
		Patients:      []models.Patient{{ID: "a1", Name: "Ana"}},
		RecordsByPatient: map[string]map[string]json.RawMessage{
			"a1":       {"vacinas": json.RawMessage(`[]`)},
			"stranger": {"vacinas": json.RawMessage(`[]`)},
		},
	}
	summary, err := NewImporter(dst).Import(doc)
	if err != nil {
		t.Fatal(err)
	}
	if summary.RecordsWritten != 1 {
		t.Errorf("RecordsWritten = %d; want 1", summary.RecordsWritten)
	}
	if got := dst.KeysForPatient("stranger"); len(got) != 0 {
		t.Errorf("records outside the named patient set were written: %v", got)
	}
}

// Scenario from the field: patient Ana with a growth record, exported on
// one device, imported on a second empty device, byte-identical afterwards.
func TestScenario_SingleDeviceTransfer(t *testing.T) {
	src := store.New(kv.NewMemory(0))
	ana := models.Patient{ID: "A1", Name: "Ana", BirthDate: "2023-06-10", Sex: "F"}
	if err := src.AddPatient(ana); err != nil {
		t.Fatal(err)
	}
	growth := []byte(`[{"data":"2024-03-01","peso":6.4,"altura":62.5}]`)
	if err := src.PutRaw("crescimento", "A1", growth); err != nil {
		t.Fatal(err)
	}

	doc, err := NewExporter(src, fixedNow).Export()
	if err != nil {
		t.Fatal(err)
	}
	// The document survives serialization unchanged, as it would on disk.
	wire, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var decoded models.BackupDocument
	if err := json.Unmarshal(wire, &decoded); err != nil {
		t.Fatal(err)
	}

	dst := store.New(kv.NewMemory(0))
	if _, err := NewImporter(dst).Import(&decoded); err != nil {
		t.Fatal(err)
	}
	got, ok, _ := dst.Patient("A1")
	if !ok || got != ana {
		t.Errorf("patient after transfer = %+v, %v", got, ok)
	}
	raw, ok := dst.GetRaw("crescimento", "A1")
	if !ok || string(raw) != string(growth) {
		t.Errorf("growth record after transfer = %q", raw)
	}
}
