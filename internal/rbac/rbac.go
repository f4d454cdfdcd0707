// Package rbac maps the two practice roles to their static permission sets
// and answers allow/deny questions. It is a pure function of static data:
// no side effects, no I/O.
package rbac

// Role identifies one of the two practice roles.
type Role string

const (
	// Clinician holds the full permission universe.
	Clinician Role = "medico"
	// FrontDesk handles patient registration and scheduling only.
	FrontDesk Role = "secretaria"
)

// Permission is a module-scoped permission token, e.g. "cadastro.update".
type Permission string

// The permission universe. Token strings are load-bearing: they appear in
// stored sessions and in the per-namespace permission mapping.
const (
	CadastroCreate Permission = "cadastro.create"
	CadastroRead   Permission = "cadastro.read"
	CadastroUpdate Permission = "cadastro.update"
	CadastroDelete Permission = "cadastro.delete"

	AgendamentoCreate Permission = "agendamento.create"
	AgendamentoRead   Permission = "agendamento.read"
	AgendamentoUpdate Permission = "agendamento.update"
	AgendamentoDelete Permission = "agendamento.delete"

	ProntuarioRead  Permission = "prontuario.read"
	ProntuarioWrite Permission = "prontuario.write"

	NeonatalRead  Permission = "neonatal.read"
	NeonatalWrite Permission = "neonatal.write"

	CrescimentoRead  Permission = "crescimento.read"
	CrescimentoWrite Permission = "crescimento.write"

	VacinacaoRead  Permission = "vacinacao.read"
	VacinacaoWrite Permission = "vacinacao.write"

	AleitamentoRead  Permission = "aleitamento.read"
	AleitamentoWrite Permission = "aleitamento.write"

	PuericulturaRead  Permission = "puericultura.read"
	PuericulturaWrite Permission = "puericultura.write"

	IntercorrenciasRead  Permission = "intercorrencias.read"
	IntercorrenciasWrite Permission = "intercorrencias.write"

	ReceituarioRead  Permission = "receituario.read"
	ReceituarioWrite Permission = "receituario.write"

	AtestadoRead  Permission = "atestado.read"
	AtestadoWrite Permission = "atestado.write"

	FinanceiroRead  Permission = "financeiro.read"
	FinanceiroWrite Permission = "financeiro.write"

	RelatoriosRead   Permission = "relatorios.read"
	RelatoriosExport Permission = "relatorios.export"

	ConfigRead  Permission = "config.read"
	ConfigWrite Permission = "config.write"
)

// all lists every defined permission. Clinician is granted exactly this set.
var all = []Permission{
	CadastroCreate, CadastroRead, CadastroUpdate, CadastroDelete,
	AgendamentoCreate, AgendamentoRead, AgendamentoUpdate, AgendamentoDelete,
	ProntuarioRead, ProntuarioWrite,
	NeonatalRead, NeonatalWrite,
	CrescimentoRead, CrescimentoWrite,
	VacinacaoRead, VacinacaoWrite,
	AleitamentoRead, AleitamentoWrite,
	PuericulturaRead, PuericulturaWrite,
	IntercorrenciasRead, IntercorrenciasWrite,
	ReceituarioRead, ReceituarioWrite,
	AtestadoRead, AtestadoWrite,
	FinanceiroRead, FinanceiroWrite,
	RelatoriosRead, RelatoriosExport,
	ConfigRead, ConfigWrite,
}

// frontDesk is the fixed FrontDesk subset: full registration minus deletion,
// plus full scheduling. No clinical-module access.
var frontDesk = []Permission{
	CadastroCreate, CadastroRead, CadastroUpdate,
	AgendamentoCreate, AgendamentoRead, AgendamentoUpdate, AgendamentoDelete,
}

var rolePermissions = map[Role]map[Permission]bool{
	Clinician: toSet(all),
	FrontDesk: toSet(frontDesk),
}

func toSet(perms []Permission) map[Permission]bool {
	s := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		s[p] = true
	}
	return s
}

// All returns the full permission universe.
func All() []Permission {
	out := make([]Permission, len(all))
	copy(out, all)
	return out
}

// Valid reports whether role is one of the defined roles.
func Valid(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

// Allows reports whether role holds the given permission token.
func Allows(role Role, p Permission) bool {
	return rolePermissions[role][p]
}

// AllowsAll reports whether role holds every one of the given tokens.
func AllowsAll(role Role, perms []Permission) bool {
	for _, p := range perms {
		if !Allows(role, p) {
			return false
		}
	}
	return true
}

// AllowsAny reports whether role holds at least one of the given tokens.
func AllowsAny(role Role, perms []Permission) bool {
	for _, p := range perms {
		if Allows(role, p) {
			return true
		}
	}
	return false
}
