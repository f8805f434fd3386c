package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/declafisc/declarations/internal/auth"
	"github.com/declafisc/declarations/internal/http/middleware"
	"github.com/declafisc/declarations/internal/policy"
	"github.com/declafisc/declarations/internal/user"
	"github.com/declafisc/declarations/internal/util"
)

type registerRequest struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
}

// Register cria a conta e devolve sessão com token imediato.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if err := util.RequireString(req.Username, "username"); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if err := util.RequireString(req.Password, "password"); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if err := util.ValidateUsername(req.Username); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	session, err := h.authService.Register(r.Context(), req.Username, req.Fullname, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, session)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login autentica por identifiant e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "username e password são obrigatórios", nil)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

// Me devolve o perfil do subject autenticado. Conta removida após a
// emissão do token responde 404.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject := middleware.GetSubject(r.Context())
	profile, err := h.authService.Me(r.Context(), subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// callerRole resolve o papel vivo do subject. Token válido para conta
// inexistente equivale a token inválido.
func (h *Handler) callerRole(r *http.Request) (policy.Role, error) {
	subject := middleware.GetSubject(r.Context())
	role, err := h.authService.ResolveRole(r.Context(), subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", auth.ErrInvalidToken
		}
		return "", err
	}
	return role, nil
}
