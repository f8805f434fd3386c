package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/declafisc/declarations/internal/auth"
	"github.com/declafisc/declarations/internal/policy"
	"github.com/declafisc/declarations/internal/user"
	"github.com/declafisc/declarations/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação. Propositalmente
	// não distingue usuário desconhecido de senha errada.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrConflict indica identifiant já registrado.
	ErrConflict = errors.New("identifiant já registrado")
)

// UserStore abstrai o Credential Store (Postgres ou arquivos JSON).
type UserStore interface {
	GetUser(ctx context.Context, username string) (user.User, error)
	CreateUser(ctx context.Context, u user.User) error
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUserRole(ctx context.Context, username, role string) error
	UpdateUserFullname(ctx context.Context, username, fullname string) error
}

// AuthService concentra registro, login e resolução de identidade/papel.
type AuthService struct {
	users UserStore
	jwt   *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(users UserStore, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtMgr}
}

// JWT expõe o gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Session representa o retorno de registro e login.
type Session struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// Register cria a conta com papel padrão visuel e emite token na hora,
// sem etapa de ativação.
func (s *AuthService) Register(ctx context.Context, username, fullname, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if err := util.ValidateUsername(username); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, username); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := user.User{
		Username: username,
		Fullname: fullname,
		Password: hash,
		Role:     string(policy.RoleVisuel),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, user.ErrExists) {
			return nil, ErrConflict
		}
		return nil, err
	}

	token, _, err := s.jwt.GenerateAccessToken(username)
	if err != nil {
		return nil, err
	}

	return &Session{Username: u.Username, Fullname: u.Fullname, Role: u.Role, Token: token}, nil
}

// Login autentica por identifiant e senha.
func (s *AuthService) Login(ctx context.Context, login, password string) (*Session, error) {
	u, err := s.users.GetUser(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, u.Password)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.jwt.GenerateAccessToken(u.Username)
	if err != nil {
		return nil, err
	}

	return &Session{
		Username: u.Username,
		Fullname: u.Fullname,
		Role:     string(policy.NormalizeRole(u.Role)),
		Token:    token,
	}, nil
}

// Profile é o retorno de Me.
type Profile struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
}

// Me devolve o perfil do subject autenticado.
func (s *AuthService) Me(ctx context.Context, username string) (*Profile, error) {
	u, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Username: u.Username,
		Fullname: u.Fullname,
		Role:     string(policy.NormalizeRole(u.Role)),
	}, nil
}

// UpdateFullname troca o nome exibido da própria conta.
func (s *AuthService) UpdateFullname(ctx context.Context, username, fullname string) error {
	return s.users.UpdateUserFullname(ctx, username, fullname)
}

// ResolveRole busca o papel vivo do subject no Credential Store. O papel
// sai do storage, não do token, para que trocas de papel valham já na
// requisição seguinte.
func (s *AuthService) ResolveRole(ctx context.Context, username string) (policy.Role, error) {
	u, err := s.users.GetUser(ctx, username)
	if err != nil {
		return "", err
	}
	return policy.NormalizeRole(u.Role), nil
}
