package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/declafisc/declarations/internal/http/middleware"
)

// ListUsers devolve todas as contas; exclusivo de admin.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	role, err := h.callerRole(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	profiles, err := h.users.List(r.Context(), middleware.GetIdentity(r.Context()), role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, profiles)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole troca o papel da conta alvo; exclusivo de admin.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.callerRole(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	target := chi.URLParam(r, "username")
	profile, err := h.users.SetRole(r.Context(), middleware.GetIdentity(r.Context()), role, target, req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// ReadConfig devolve o documento de configuração a qualquer autenticado.
func (h *Handler) ReadConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := h.settings.Read(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// WriteConfig aplica merge raso do parcial enviado; exclusivo de admin.
func (h *Handler) WriteConfig(w http.ResponseWriter, r *http.Request) {
	role, err := h.callerRole(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil || partial == nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "corpo deve ser objeto JSON", nil)
		return
	}

	merged, err := h.settings.Write(r.Context(), middleware.GetIdentity(r.Context()), role, partial)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, merged)
}
