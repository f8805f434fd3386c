package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/declafisc/declarations/internal/http/middleware"
)

// ListEntries devolve as declarações do dono, ano decrescente, paginadas.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	username := chi.URLParam(r, "username")

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)

	result, err := h.entries.List(r.Context(), middleware.GetIdentity(r.Context()), category, username, page, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// GetEntry devolve o payload do ano; objeto vazio quando ausente.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	username := chi.URLParam(r, "username")
	year := chi.URLParam(r, "year")

	values, err := h.entries.Get(r.Context(), middleware.GetIdentity(r.Context()), category, username, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, values)
}

// PutEntry substitui o payload do ano por inteiro.
func (h *Handler) PutEntry(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	username := chi.URLParam(r, "username")
	year := chi.URLParam(r, "year")

	var values map[string]any
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "corpo deve ser objeto JSON", nil)
		return
	}

	saved, err := h.entries.Put(r.Context(), middleware.GetIdentity(r.Context()), category, username, year, values)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, saved)
}

// DeleteEntry remove a declaração do ano; idempotente.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	username := chi.URLParam(r, "username")
	year := chi.URLParam(r, "year")

	if err := h.entries.Delete(r.Context(), middleware.GetIdentity(r.Context()), category, username, year); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
