package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("a", 32), 2*time.Hour)

	token, jti, err := mgr.GenerateAccessToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if jti == "" {
		t.Fatal("expected non-empty jti")
	}

	claims, err := mgr.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time) != 2*time.Hour {
		t.Fatalf("expected 2h lifetime, got %s", claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time))
	}
}

func TestParseAndValidateRejectsExpired(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("b", 32), -time.Minute)

	token, _, err := mgr.GenerateAccessToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := mgr.ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseAndValidateRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("c", 32), time.Hour)
	other := NewJWTManager(strings.Repeat("d", 32), time.Hour)

	token, _, err := mgr.GenerateAccessToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := other.ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseAndValidateRejectsGarbage(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("e", 32), time.Hour)

	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := mgr.ParseAndValidate(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must differ from plaintext")
	}

	ok, err := VerifyPassword("secret123", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not match")
	}
}
