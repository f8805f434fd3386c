package service

import (
	"context"

	"github.com/declafisc/declarations/internal/policy"
)

// UserService opera a administração de contas: listagem e troca de papel.
// Toda operação passa pela política antes de tocar o Credential Store.
type UserService struct {
	users UserStore
}

// NewUserService cria novo serviço.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// List devolve as contas visíveis ao admin, sem hash de senha.
func (s *UserService) List(ctx context.Context, caller *policy.Identity, role policy.Role) ([]Profile, error) {
	if err := policy.Decide(caller, role, policy.Action{Kind: policy.ActionUserList}); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, Profile{
			Username: u.Username,
			Fullname: u.Fullname,
			Role:     string(policy.NormalizeRole(u.Role)),
		})
	}
	return profiles, nil
}

// SetRole troca o papel da conta alvo. O papel solicitado é validado pela
// política antes de se consultar a existência do alvo.
func (s *UserService) SetRole(ctx context.Context, caller *policy.Identity, role policy.Role, target, newRole string) (*Profile, error) {
	action := policy.Action{Kind: policy.ActionUserSetRole, TargetUsername: target, NewRole: newRole}
	if err := policy.Decide(caller, role, action); err != nil {
		return nil, err
	}

	u, err := s.users.GetUser(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateUserRole(ctx, target, newRole); err != nil {
		return nil, err
	}

	return &Profile{Username: u.Username, Fullname: u.Fullname, Role: newRole}, nil
}
