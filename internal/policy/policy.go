// Package policy concentra as decisões de autorização da aplicação.
// É lógica pura: nenhuma dependência de transporte ou armazenamento,
// o que permite testar as regras isoladamente.
package policy

import "errors"

var (
	// ErrMissingToken indica requisição sem identidade verificada.
	ErrMissingToken = errors.New("token ausente")
	// ErrForbidden indica identidade autenticada sem permissão.
	ErrForbidden = errors.New("acesso negado")
	// ErrInvalidRole indica papel fora do conjunto permitido.
	ErrInvalidRole = errors.New("papel inválido")
)

// Identity é o identifiant verificado extraído do token. É a única
// chave de propriedade das declarações.
type Identity struct {
	Username string
}

// Role é o papel do usuário. Conjunto fechado.
type Role string

const (
	// RoleVisuel é o papel padrão, somente leitura no painel.
	RoleVisuel Role = "visuel"
	// RoleEditeur pode editar as próprias declarações.
	RoleEditeur Role = "editeur"
	// RoleAdmin administra usuários e a configuração global.
	RoleAdmin Role = "admin"
)

// ValidRole verifica pertencimento ao conjunto fechado de papéis.
func ValidRole(value string) bool {
	switch Role(value) {
	case RoleVisuel, RoleEditeur, RoleAdmin:
		return true
	}
	return false
}

// NormalizeRole aplica o padrão visuel para papel vazio (registros antigos).
func NormalizeRole(value string) Role {
	if value == "" {
		return RoleVisuel
	}
	return Role(value)
}

// ActionKind enumera as operações mediadas pela política.
type ActionKind int

const (
	ActionEntryList ActionKind = iota
	ActionEntryRead
	ActionEntryWrite
	ActionEntryDelete
	ActionConfigRead
	ActionConfigWrite
	ActionUserList
	ActionUserSetRole
)

// Action descreve o recurso e a operação pretendida.
type Action struct {
	Kind ActionKind
	// TargetUsername é o dono do recurso nas ações sobre declarações
	// e o alvo nas trocas de papel.
	TargetUsername string
	// NewRole é o papel solicitado em ActionUserSetRole.
	NewRole string
}

// rule é uma regra declarativa: um predicado de recurso e uma decisão.
// A lista é avaliada de cima para baixo e a primeira que casa decide.
type rule struct {
	matches func(Action) bool
	decide  func(Identity, Role, Action) error
}

var rules = []rule{
	// Declarações: acesso exclusivo do dono. Nenhum papel, nem admin,
	// sobrepõe a propriedade.
	{matches: isEntryAction, decide: ownerOnly},

	// Leitura da configuração: qualquer identidade autenticada, o
	// front-end precisa dela para montar os formulários dinâmicos.
	{matches: kindIs(ActionConfigRead), decide: allowAuthenticated},

	// Troca de papel: admin, e o papel solicitado deve pertencer ao
	// conjunto fechado antes mesmo de se olhar o alvo.
	{matches: kindIs(ActionUserSetRole), decide: adminWithValidRole},

	// Demais operações administrativas: escrita de configuração e
	// listagem de usuários.
	{matches: kindIs(ActionConfigWrite, ActionUserList), decide: adminOnly},
}

// Decide avalia (identidade, papel, ação) e devolve nil para permitir ou
// um erro de negação. Não tem efeitos colaterais: é chamada pelos serviços
// de acesso antes de qualquer operação de armazenamento.
func Decide(identity *Identity, role Role, action Action) error {
	if identity == nil || identity.Username == "" {
		return ErrMissingToken
	}
	for _, r := range rules {
		if r.matches(action) {
			return r.decide(*identity, role, action)
		}
	}
	return ErrForbidden
}

func isEntryAction(a Action) bool {
	switch a.Kind {
	case ActionEntryList, ActionEntryRead, ActionEntryWrite, ActionEntryDelete:
		return true
	}
	return false
}

func kindIs(kinds ...ActionKind) func(Action) bool {
	return func(a Action) bool {
		for _, k := range kinds {
			if a.Kind == k {
				return true
			}
		}
		return false
	}
}

func ownerOnly(id Identity, _ Role, a Action) error {
	if id.Username != a.TargetUsername {
		return ErrForbidden
	}
	return nil
}

func allowAuthenticated(Identity, Role, Action) error {
	return nil
}

func adminOnly(_ Identity, role Role, _ Action) error {
	if role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func adminWithValidRole(id Identity, role Role, a Action) error {
	if err := adminOnly(id, role, a); err != nil {
		return err
	}
	if !ValidRole(a.NewRole) {
		return ErrInvalidRole
	}
	return nil
}
