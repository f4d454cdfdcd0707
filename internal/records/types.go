package records

import (
	"fmt"
	"time"
)

// historyPeriodMax caps each medical-history period narrative.
const historyPeriodMax = 300

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Registration holds the free-form registration details of a patient,
// complementing the roster entry.
type Registration struct {
	GuardianMother string `json:"nomeMae,omitempty"`
	GuardianFather string `json:"nomePai,omitempty"`
	Phone          string `json:"telefone,omitempty"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"endereco,omitempty"`
	Insurance      string `json:"convenio,omitempty"`
	InsuranceID    string `json:"numeroConvenio,omitempty"`
	Notes          string `json:"observacoes,omitempty"`
}

// Validate implements Document. Registration fields are free-form.
func (r *Registration) Validate() error { return nil }

// Neonatal is the birth data record.
type Neonatal struct {
	BirthWeightGrams  float64 `json:"pesoNascimento,omitempty"`
	BirthLengthCM     float64 `json:"comprimento,omitempty"`
	HeadCircumCM      float64 `json:"perimetroCefalico,omitempty"`
	GestationalWeeks  float64 `json:"idadeGestacional,omitempty"`
	DeliveryType      string  `json:"tipoParto,omitempty"`
	Apgar1            int     `json:"apgar1,omitempty"`
	Apgar5            int     `json:"apgar5,omitempty"`
	HeelPrickDone     bool    `json:"testePezinho,omitempty"`
	HearingTestDone   bool    `json:"testeOrelhinha,omitempty"`
	RedReflexTestDone bool    `json:"testeOlhinho,omitempty"`
	Notes             string  `json:"observacoes,omitempty"`
}

// Validate implements Document.
func (n *Neonatal) Validate() error {
	if n.BirthWeightGrams < 0 || n.BirthLengthCM < 0 || n.HeadCircumCM < 0 {
		return fmt.Errorf("records: neonatal measurements must not be negative")
	}
	for _, apgar := range []int{n.Apgar1, n.Apgar5} {
		if apgar < 0 || apgar > 10 {
			return fmt.Errorf("records: apgar score %d out of range 0-10", apgar)
		}
	}
	return nil
}

// Measurement is one growth measurement row.
type Measurement struct {
	Date         string  `json:"data"`
	WeightKG     float64 `json:"peso,omitempty"`
	HeightCM     float64 `json:"altura,omitempty"`
	HeadCircumCM float64 `json:"perimetroCefalico,omitempty"`
	BMI          float64 `json:"imc,omitempty"`
}

// GrowthLog is the full measurement history of a patient.
type GrowthLog []Measurement

// Validate implements Document.
func (g *GrowthLog) Validate() error {
	for i, m := range *g {
		if m.Date == "" || !validDate(m.Date) {
			return fmt.Errorf("records: growth row %d: invalid date %q", i, m.Date)
		}
		if m.WeightKG < 0 || m.HeightCM < 0 || m.HeadCircumCM < 0 {
			return fmt.Errorf("records: growth row %d: negative measurement", i)
		}
	}
	return nil
}

// Milestone is one developmental milestone observation.
type Milestone struct {
	AgeKey      string `json:"idade"`
	Description string `json:"descricao"`
	Achieved    bool   `json:"atingido"`
	Date        string `json:"data,omitempty"`
}

// MilestoneLog is the milestone checklist of a patient.
type MilestoneLog []Milestone

// Validate implements Document.
func (l *MilestoneLog) Validate() error {
	for i, m := range *l {
		if m.Description == "" {
			return fmt.Errorf("records: milestone %d: empty description", i)
		}
		if !validDate(m.Date) {
			return fmt.Errorf("records: milestone %d: invalid date %q", i, m.Date)
		}
	}
	return nil
}

// History holds the per-period medical history narratives.
type History struct {
	Period0to12  string `json:"periodo_0_12"`
	Period12to24 string `json:"periodo_12_24"`
	Period24to36 string `json:"periodo_24_36"`
}

// Validate implements Document.
func (h *History) Validate() error {
	for _, p := range []string{h.Period0to12, h.Period12to24, h.Period24to36} {
		if len([]rune(p)) > historyPeriodMax {
			return fmt.Errorf("records: history period exceeds %d characters", historyPeriodMax)
		}
	}
	return nil
}

// VaccineDose is one applied vaccine dose.
type VaccineDose struct {
	Name  string `json:"nome"`
	Dose  string `json:"dose,omitempty"`
	Date  string `json:"data"`
	Lot   string `json:"lote,omitempty"`
	Notes string `json:"observacoes,omitempty"`
}

// VaccineLog is the vaccination record of a patient.
type VaccineLog []VaccineDose

// Validate implements Document.
func (l *VaccineLog) Validate() error {
	for i, d := range *l {
		if d.Name == "" {
			return fmt.Errorf("records: vaccine dose %d: empty name", i)
		}
		if d.Date == "" || !validDate(d.Date) {
			return fmt.Errorf("records: vaccine dose %d: invalid date %q", i, d.Date)
		}
	}
	return nil
}

// Breastfeeding is the breastfeeding record of a patient.
type Breastfeeding struct {
	ExclusiveMonths  float64 `json:"mesesExclusivo,omitempty"`
	TotalMonths      float64 `json:"mesesTotal,omitempty"`
	WeaningDate      string  `json:"dataDesmame,omitempty"`
	FormulaIntroDate string  `json:"dataFormulaInicio,omitempty"`
	Difficulties     string  `json:"dificuldades,omitempty"`
	Notes            string  `json:"observacoes,omitempty"`
}

// Validate implements Document.
func (b *Breastfeeding) Validate() error {
	if b.ExclusiveMonths < 0 || b.TotalMonths < 0 {
		return fmt.Errorf("records: breastfeeding months must not be negative")
	}
	for _, d := range []string{b.WeaningDate, b.FormulaIntroDate} {
		if !validDate(d) {
			return fmt.Errorf("records: breastfeeding: invalid date %q", d)
		}
	}
	return nil
}

// WellChildVisit is one well-child (puericultura) visit row.
type WellChildVisit struct {
	Date     string `json:"data"`
	AgeLabel string `json:"idade,omitempty"`
	Summary  string `json:"resumo,omitempty"`
	Guidance string `json:"orientacoes,omitempty"`
}

// WellChildLog is the well-child visit history.
type WellChildLog []WellChildVisit

// Validate implements Document.
func (l *WellChildLog) Validate() error {
	for i, v := range *l {
		if v.Date == "" || !validDate(v.Date) {
			return fmt.Errorf("records: well-child visit %d: invalid date %q", i, v.Date)
		}
	}
	return nil
}

// Incident is one illness or intercurrence row.
type Incident struct {
	Date        string `json:"data"`
	Description string `json:"descricao"`
	Treatment   string `json:"conduta,omitempty"`
	Resolved    bool   `json:"resolvido,omitempty"`
}

// IncidentLog is the intercurrence history.
type IncidentLog []Incident

// Validate implements Document.
func (l *IncidentLog) Validate() error {
	for i, in := range *l {
		if in.Description == "" {
			return fmt.Errorf("records: incident %d: empty description", i)
		}
		if in.Date == "" || !validDate(in.Date) {
			return fmt.Errorf("records: incident %d: invalid date %q", i, in.Date)
		}
	}
	return nil
}

// Allergy is one known allergy.
type Allergy struct {
	Substance string `json:"substancia"`
	Reaction  string `json:"reacao,omitempty"`
	Severity  string `json:"gravidade,omitempty"`
}

// allergySeverities is the accepted severity scale.
var allergySeverities = map[string]bool{"": true, "leve": true, "moderada": true, "grave": true}

// AllergyLog is the allergy list of a patient.
type AllergyLog []Allergy

// Validate implements Document.
func (l *AllergyLog) Validate() error {
	for i, a := range *l {
		if a.Substance == "" {
			return fmt.Errorf("records: allergy %d: empty substance", i)
		}
		if !allergySeverities[a.Severity] {
			return fmt.Errorf("records: allergy %d: unknown severity %q", i, a.Severity)
		}
	}
	return nil
}

// PrescriptionItem is one medication line of a prescription.
type PrescriptionItem struct {
	Medication   string `json:"medicamento"`
	Dosage       string `json:"posologia,omitempty"`
	Instructions string `json:"orientacoes,omitempty"`
}

// Prescription is one issued prescription document.
type Prescription struct {
	Date  string             `json:"data"`
	Items []PrescriptionItem `json:"itens"`
}

// PrescriptionLog is the prescription history.
type PrescriptionLog []Prescription

// Validate implements Document.
func (l *PrescriptionLog) Validate() error {
	for i, p := range *l {
		if p.Date == "" || !validDate(p.Date) {
			return fmt.Errorf("records: prescription %d: invalid date %q", i, p.Date)
		}
		if len(p.Items) == 0 {
			return fmt.Errorf("records: prescription %d: no items", i)
		}
		for j, item := range p.Items {
			if item.Medication == "" {
				return fmt.Errorf("records: prescription %d item %d: empty medication", i, j)
			}
		}
	}
	return nil
}

// Certificate is one issued medical certificate record.
type Certificate struct {
	Date    string `json:"data"`
	Kind    string `json:"tipo"`
	DaysOff int    `json:"diasAfastamento,omitempty"`
	Note    string `json:"observacao,omitempty"`
}

// CertificateLog is the certificate history.
type CertificateLog []Certificate

// Validate implements Document.
func (l *CertificateLog) Validate() error {
	for i, c := range *l {
		if c.Date == "" || !validDate(c.Date) {
			return fmt.Errorf("records: certificate %d: invalid date %q", i, c.Date)
		}
		if c.Kind == "" {
			return fmt.Errorf("records: certificate %d: empty kind", i)
		}
		if c.DaysOff < 0 {
			return fmt.Errorf("records: certificate %d: negative days off", i)
		}
	}
	return nil
}

// Appointment is one scheduled appointment row.
type Appointment struct {
	Date   string `json:"data"`
	Time   string `json:"hora,omitempty"`
	Reason string `json:"motivo,omitempty"`
	Status string `json:"status,omitempty"`
}

// appointmentStatuses is the accepted appointment status set.
var appointmentStatuses = map[string]bool{
	"": true, "agendada": true, "confirmada": true, "realizada": true, "cancelada": true,
}

// AppointmentLog is the appointment list of a patient.
type AppointmentLog []Appointment

// Validate implements Document.
func (l *AppointmentLog) Validate() error {
	for i, a := range *l {
		if a.Date == "" || !validDate(a.Date) {
			return fmt.Errorf("records: appointment %d: invalid date %q", i, a.Date)
		}
		if !appointmentStatuses[a.Status] {
			return fmt.Errorf("records: appointment %d: unknown status %q", i, a.Status)
		}
	}
	return nil
}
