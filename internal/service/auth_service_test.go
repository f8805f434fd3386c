package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/declafisc/declarations/internal/auth"
	"github.com/declafisc/declarations/internal/user"
)

type stubUserStore struct {
	users map[string]user.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]user.User)}
}

func (s *stubUserStore) GetUser(ctx context.Context, username string) (user.User, error) {
	u, ok := s.users[username]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *stubUserStore) CreateUser(ctx context.Context, u user.User) error {
	if _, ok := s.users[u.Username]; ok {
		return user.ErrExists
	}
	s.users[u.Username] = u
	return nil
}

func (s *stubUserStore) ListUsers(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUserStore) UpdateUserRole(ctx context.Context, username, role string) error {
	u, ok := s.users[username]
	if !ok {
		return user.ErrNotFound
	}
	u.Role = role
	s.users[username] = u
	return nil
}

func (s *stubUserStore) UpdateUserFullname(ctx context.Context, username, fullname string) error {
	u, ok := s.users[username]
	if !ok {
		return user.ErrNotFound
	}
	u.Fullname = fullname
	s.users[username] = u
	return nil
}

func newAuthService(store UserStore) *AuthService {
	jwtMgr := auth.NewJWTManager(strings.Repeat("a", 32), 2*time.Hour)
	return NewAuthService(store, jwtMgr)
}

func TestRegisterStoresHashAndIssuesToken(t *testing.T) {
	store := newStubUserStore()
	svc := newAuthService(store)

	session, err := svc.Register(context.Background(), "alice", "Alice Test", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Role != "visuel" {
		t.Fatalf("expected default role visuel, got %s", session.Role)
	}
	if session.Token == "" {
		t.Fatal("expected immediate token")
	}

	stored := store.users["alice"]
	if stored.Password == "secret123" {
		t.Fatal("password stored in plaintext")
	}
	ok, err := auth.VerifyPassword("secret123", stored.Password)
	if err != nil || !ok {
		t.Fatalf("stored hash must verify against plaintext, ok=%v err=%v", ok, err)
	}

	claims, err := svc.JWT().ParseAndValidate(session.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %s", claims.Subject)
	}
}

func TestRegisterConflict(t *testing.T) {
	store := newStubUserStore()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "Alice", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "Imposteur", "autre"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegisterRejectsBadUsername(t *testing.T) {
	svc := newAuthService(newStubUserStore())

	for _, bad := range []string{"", "a", "has space", "slash/y"} {
		if _, err := svc.Register(context.Background(), bad, "X", "secret123"); err == nil {
			t.Fatalf("expected error for username %q", bad)
		}
	}
}

func TestLoginUndifferentiatedFailures(t *testing.T) {
	store := newStubUserStore()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "Alice", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// usuário desconhecido e senha errada devolvem o mesmo erro
	if _, err := svc.Login(ctx, "nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	session, err := svc.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || session.Username != "alice" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestMeAndResolveRole(t *testing.T) {
	store := newStubUserStore()
	svc := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "Alice", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.Me(ctx, "alice")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if profile.Role != "visuel" {
		t.Fatalf("expected visuel, got %s", profile.Role)
	}

	// papel vazio em registro legado normaliza para visuel
	legacy := store.users["alice"]
	legacy.Role = ""
	store.users["alice"] = legacy

	role, err := svc.ResolveRole(ctx, "alice")
	if err != nil {
		t.Fatalf("resolve role: %v", err)
	}
	if role != "visuel" {
		t.Fatalf("expected normalized visuel, got %s", role)
	}

	if _, err := svc.Me(ctx, "ghost"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
