package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/declafisc/declarations/internal/auth"
	"github.com/declafisc/declarations/internal/entry"
	"github.com/declafisc/declarations/internal/policy"
	"github.com/declafisc/declarations/internal/service"
	"github.com/declafisc/declarations/internal/user"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// writeDomainError mapeia a taxonomia de erros dos serviços para HTTP.
// Falhas de armazenamento não mapeadas viram INTERNAL, distintas das
// negações de autorização.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, policy.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "AUTH", "token ausente ou inválido", nil)
	case errors.Is(err, policy.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
	case errors.Is(err, policy.ErrInvalidRole):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "papel inválido", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas", nil)
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusConflict, "CONFLICT", "identifiant já registrado", nil)
	case errors.Is(err, entry.ErrUnknownCategory):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "categoria desconhecida", nil)
	case errors.Is(err, entry.ErrInvalidYear):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "ano inválido", nil)
	case errors.Is(err, user.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "falha de armazenamento", nil)
	}
}
