package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/declafisc/declarations/internal/auth"
	"github.com/declafisc/declarations/internal/policy"
)

type contextKey string

const contextKeySubject contextKey = "subject"

// Auth valida o JWT de acesso e injeta o subject (identifiant) no contexto.
// O papel NÃO sai do token: é resolvido no Credential Store a cada decisão.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeySubject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera o identifiant autenticado do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(contextKeySubject).(string)
	return val
}

// GetIdentity devolve a identidade para a política, ou nil sem subject.
func GetIdentity(ctx context.Context) *policy.Identity {
	subject := GetSubject(ctx)
	if subject == "" {
		return nil
	}
	return &policy.Identity{Username: subject}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
