// Package records defines the per-module clinical document types and the
// mapping from record namespaces to permission tokens. Each namespace owns
// its own schema and validation; the record store underneath stays opaque.
package records

import (
	"encoding/json"
	"fmt"

	"github.com/tcordeiro/pediatria/internal/rbac"
)

// Record namespaces. These are the stable addressing names of every data
// module; the backup document and the record store key space are built from
// them.
const (
	NSCadastro        = "paciente"
	NSNeonatal        = "neonatal"
	NSCrescimento     = "crescimento"
	NSMarcos          = "marcos"
	NSHistoricoMedico = "historico-medico"
	NSVacinas         = "vacinas"
	NSAleitamento     = "aleitamento"
	NSPuericultura    = "puericultura"
	NSIntercorrencias = "intercorrencias"
	NSAlergias        = "alergias"
	NSReceitas        = "receitas"
	NSAtestados       = "atestados"
	NSAgendamento     = "agendamento"
)

// Op is the kind of store access a caller wants.
type Op int

const (
	OpRead Op = iota
	OpWrite
	OpDelete
)

// namespacePerms maps each namespace to its read and write tokens. Clinical
// namespaces have no dedicated delete token; removing their data is a write.
var namespacePerms = map[string]struct{ read, write rbac.Permission }{
	NSCadastro:        {rbac.CadastroRead, rbac.CadastroUpdate},
	NSNeonatal:        {rbac.NeonatalRead, rbac.NeonatalWrite},
	NSCrescimento:     {rbac.CrescimentoRead, rbac.CrescimentoWrite},
	NSMarcos:          {rbac.CrescimentoRead, rbac.CrescimentoWrite},
	NSHistoricoMedico: {rbac.CrescimentoRead, rbac.CrescimentoWrite},
	NSVacinas:         {rbac.VacinacaoRead, rbac.VacinacaoWrite},
	NSAleitamento:     {rbac.AleitamentoRead, rbac.AleitamentoWrite},
	NSPuericultura:    {rbac.PuericulturaRead, rbac.PuericulturaWrite},
	NSIntercorrencias: {rbac.IntercorrenciasRead, rbac.IntercorrenciasWrite},
	NSAlergias:        {rbac.IntercorrenciasRead, rbac.IntercorrenciasWrite},
	NSReceitas:        {rbac.ReceituarioRead, rbac.ReceituarioWrite},
	NSAtestados:       {rbac.AtestadoRead, rbac.AtestadoWrite},
	NSAgendamento:     {rbac.AgendamentoRead, rbac.AgendamentoUpdate},
}

// Namespaces returns every known record namespace.
func Namespaces() []string {
	out := make([]string, 0, len(namespacePerms))
	for ns := range namespacePerms {
		out = append(out, ns)
	}
	return out
}

// Known reports whether ns is a defined record namespace.
func Known(ns string) bool {
	_, ok := namespacePerms[ns]
	return ok
}

// PermissionFor returns the token required to perform op on namespace ns.
func PermissionFor(ns string, op Op) (rbac.Permission, bool) {
	perms, ok := namespacePerms[ns]
	if !ok {
		return "", false
	}
	if op == OpRead {
		return perms.read, true
	}
	return perms.write, true
}

// Document is a module-owned record value that can validate itself.
type Document interface {
	Validate() error
}

// Decode unmarshals raw into the typed document for namespace ns and
// validates it. Unknown namespaces are rejected.
func Decode(ns string, raw []byte) (Document, error) {
	var doc Document
	switch ns {
	case NSCadastro:
		doc = &Registration{}
	case NSNeonatal:
		doc = &Neonatal{}
	case NSCrescimento:
		doc = &GrowthLog{}
	case NSMarcos:
		doc = &MilestoneLog{}
	case NSHistoricoMedico:
		doc = &History{}
	case NSVacinas:
		doc = &VaccineLog{}
	case NSAleitamento:
		doc = &Breastfeeding{}
	case NSPuericultura:
		doc = &WellChildLog{}
	case NSIntercorrencias:
		doc = &IncidentLog{}
	case NSAlergias:
		doc = &AllergyLog{}
	case NSReceitas:
		doc = &PrescriptionLog{}
	case NSAtestados:
		doc = &CertificateLog{}
	case NSAgendamento:
		doc = &AppointmentLog{}
	default:
		return nil, fmt.Errorf("records: unknown namespace %q", ns)
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("records: decode %s: %w", ns, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
